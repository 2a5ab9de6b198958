package bootstrap

import (
	"hotel-booking/internal/infra/payment"
	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/commands"

	"go.uber.org/fx"
)

var PaymentModule = fx.Module("payment",
	fx.Provide(
		fx.Annotate(
			payment.NewRazorpayGateway,
			fx.As(new(commands.PaymentGateway)),
		),
		fx.Annotate(
			NewSigner,
			fx.As(new(commands.SignatureVerifier)),
		),
	),
)

// NewSigner keys callback signatures with the gateway key secret. An empty
// secret would accept signatures anyone can compute.
func NewSigner(cfg config.Config) (*payment.Signer, error) {
	if cfg.Gateway.KeySecret == "" {
		return nil, errs.New("GATEWAY_KEY_SECRET must be set")
	}
	return payment.NewSigner(cfg.Gateway.KeySecret), nil
}
