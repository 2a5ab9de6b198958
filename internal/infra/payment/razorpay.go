package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/commands"

	razorpay "github.com/razorpay/razorpay-go"
)

// orderCreator is the subset of the Razorpay client used here.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayGateway struct {
	orders  orderCreator
	timeout time.Duration
	logger  *slog.Logger
}

func NewRazorpayGateway(cfg config.Config, logger *slog.Logger) *RazorpayGateway {
	client := razorpay.NewClient(cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	return newGateway(client.Order, cfg.Gateway.Timeout, logger)
}

func newGateway(orders orderCreator, timeout time.Duration, logger *slog.Logger) *RazorpayGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &RazorpayGateway{orders: orders, timeout: timeout, logger: logger}
}

type orderResult struct {
	body map[string]interface{}
	err  error
}

// CreateOrder bounds the blocking SDK call with the configured timeout. A call
// that outlives the deadline is abandoned, not cancelled.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req commands.GatewayOrderRequest) (*commands.GatewayOrder, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	data := map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}

	done := make(chan orderResult, 1)
	go func() {
		body, err := g.orders.Create(data, nil)
		done <- orderResult{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.Warn("payment gateway call abandoned", "receipt", req.Receipt, "error", ctx.Err().Error())
		return nil, errs.Mark(errs.Wrap(ctx.Err(), "gateway order creation timed out"), commands.ErrGatewayUnavailable)
	case res := <-done:
		if res.err != nil {
			return nil, errs.Mark(errs.Wrap(res.err, "gateway order creation failed"), commands.ErrGatewayUnavailable)
		}
		order, err := parseOrder(res.body)
		if err != nil {
			return nil, errs.Mark(err, commands.ErrGatewayUnavailable)
		}
		return order, nil
	}
}

func parseOrder(body map[string]interface{}) (*commands.GatewayOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, errs.New("gateway response has no order id")
	}
	order := &commands.GatewayOrder{ID: id}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)

	// The SDK decodes JSON numbers as float64.
	switch amount := body["amount"].(type) {
	case float64:
		order.Amount = int64(amount)
	case int64:
		order.Amount = amount
	case int:
		order.Amount = int64(amount)
	case nil:
	default:
		return nil, errs.New(fmt.Sprintf("unexpected amount type %T in gateway response", amount))
	}
	return order, nil
}
