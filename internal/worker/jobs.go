package worker

import (
	"context"
	"log/slog"
	"time"

	"hotel-booking/internal/usecase/commands"
)

const defaultBatchSize = 50

func HoldSweeper(holds commands.HoldCommands, interval time.Duration, batch int) Job {
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return Job{
		Name:     "hold-sweeper",
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := holds.ExpireHolds(ctx, batch)
			if n > 0 {
				slog.Info("released expired holds", "count", n)
			}
			return err
		},
	}
}

// OutboxRelay keeps relaying while full batches come back, so a backlog drains
// without waiting for the next tick.
func OutboxRelay(outbox commands.OutboxCommands, interval time.Duration, batch int) Job {
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return Job{
		Name:     "outbox-relay",
		Interval: interval,
		Run: func(ctx context.Context) error {
			for {
				n, err := outbox.RelayPending(ctx, batch)
				if n > 0 {
					slog.Debug("published booking events", "count", n)
				}
				if err != nil || n < batch || ctx.Err() != nil {
					return err
				}
			}
		},
	}
}
