package bootstrap

import (
	"context"
	"log/slog"

	"hotel-booking/internal/pkg/config"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Invoke(StartWorkers),
)

func StartWorkers(lc fx.Lifecycle, cfg config.Config, holds commands.HoldCommands, outbox commands.OutboxCommands) {
	if !cfg.Booking.WorkersEnabled {
		slog.Info("background workers disabled")
		return
	}

	runner := worker.NewRunner(
		worker.HoldSweeper(holds, cfg.Booking.SweepInterval, cfg.Booking.SweepBatchSize),
		worker.OutboxRelay(outbox, cfg.Booking.RelayInterval, cfg.Booking.RelayBatchSize),
	)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			runner.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return runner.Stop(ctx)
		},
	})
}
