package bootstrap

import (
	"context"

	"hotel-booking/internal/infra/messaging"
	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/usecase/commands"

	"go.uber.org/fx"
)

var MessagingModule = fx.Module("messaging",
	fx.Provide(
		fx.Annotate(
			NewProducer,
			fx.As(new(commands.EventPublisher)),
		),
	),
)

func NewProducer(lc fx.Lifecycle, cfg config.Config) *messaging.Producer {
	producer := messaging.NewProducer(cfg.Kafka)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return producer.Close()
		},
	})
	return producer
}
