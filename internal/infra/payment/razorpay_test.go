//go:build unit

package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/commands"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	got   map[string]interface{}
	body  map[string]interface{}
	err   error
	delay time.Duration
}

func (s *stubOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	s.got = data
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.body, s.err
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	req := commands.GatewayOrderRequest{
		AmountMinor: 450000,
		Currency:    "INR",
		Receipt:     "BK0123456789",
		Notes:       map[string]string{"bookingId": "BK0123456789", "guestEmail": "a@example.com"},
	}

	t.Run("成功: レスポンスを注文に変換する", func(t *testing.T) {
		stub := &stubOrders{body: map[string]interface{}{
			"id":       "order_123",
			"amount":   float64(450000),
			"currency": "INR",
			"receipt":  "BK0123456789",
			"status":   "created",
		}}
		gw := newGateway(stub, time.Second, nil)

		order, err := gw.CreateOrder(context.Background(), req)
		require.NoError(t, err)

		want := &commands.GatewayOrder{ID: "order_123", Amount: 450000, Currency: "INR", Receipt: "BK0123456789", Status: "created"}
		if diff := cmp.Diff(want, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, int64(450000), stub.got["amount"])
		assert.Equal(t, "BK0123456789", stub.got["receipt"])
		notes, ok := stub.got["notes"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "a@example.com", notes["guestEmail"])
	})

	tests := []struct {
		name string
		stub *stubOrders
	}{
		{name: "SDK error", stub: &stubOrders{err: errors.New("401 unauthorized")}},
		{name: "missing order id", stub: &stubOrders{body: map[string]interface{}{"amount": float64(1)}}},
		{name: "timeout", stub: &stubOrders{delay: 200 * time.Millisecond, body: map[string]interface{}{"id": "late"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newGateway(tt.stub, 20*time.Millisecond, nil)

			order, err := gw.CreateOrder(context.Background(), req)
			assert.Nil(t, order)
			require.Error(t, err)
			assert.True(t, errs.Is(err, commands.ErrGatewayUnavailable))
		})
	}
}
