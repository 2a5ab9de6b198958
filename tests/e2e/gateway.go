//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"sync/atomic"

	"hotel-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

// StubGateway issues order ids locally. Ids carry a per-process prefix so
// payment locks in a shared Redis never collide between test binaries.
type StubGateway struct {
	prefix string
	seq    atomic.Int64
}

func NewStubGateway() *StubGateway {
	return &StubGateway{prefix: uuid.NewString()[:8]}
}

func (g *StubGateway) CreateOrder(_ context.Context, req commands.GatewayOrderRequest) (*commands.GatewayOrder, error) {
	n := g.seq.Add(1)
	return &commands.GatewayOrder{
		ID:       fmt.Sprintf("order_%s_%06d", g.prefix, n),
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}
