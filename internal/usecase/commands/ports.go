package commands

import (
	"context"
	"time"
)

// GatewayOrderRequest describes a remote payment order. Amount is in minor units.
type GatewayOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// PaymentGateway creates remote orders. Implementations own timeouts and mark
// every failure with ErrGatewayUnavailable.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
}

type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

// PaymentLocker serializes callbacks for one gateway order across instances.
// Acquire hands back a token; Release only drops the lock while that token
// still owns it.
type PaymentLocker interface {
	Acquire(ctx context.Context, orderID string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, orderID, token string) error
}

// InventoryCache is dropped after every committed inventory change.
type InventoryCache interface {
	Invalidate(ctx context.Context) error
}

// EventMessage is one outbox row on its way to the broker.
type EventMessage struct {
	ID      int64
	Key     string
	Type    string
	Payload []byte
}

// EventPublisher delivers a batch and reports a per-message result; the
// returned slice is aligned with msgs and a nil entry means delivered. A
// non-nil error means nothing is known to be delivered.
type EventPublisher interface {
	PublishBatch(ctx context.Context, msgs []EventMessage) ([]error, error)
}
