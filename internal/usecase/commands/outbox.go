package commands

import (
	"context"

	"hotel-booking/internal/pkg/clock"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/shared"
)

const defaultMaxPublishAttempts = 10

// OutboxCommands moves committed booking events to the broker. Delivery is
// at-least-once: a rolled back transaction republishes its batch, so consumers
// dedupe on the event id header.
type OutboxCommands interface {
	RelayPending(ctx context.Context, limit int) (int, error)
}

type outboxCommandsImpl struct {
	uow         shared.UnitOfWork
	publisher   EventPublisher
	clock       clock.Clock
	maxAttempts int
}

func NewOutboxCommands(uow shared.UnitOfWork, publisher EventPublisher, clock clock.Clock) OutboxCommands {
	return &outboxCommandsImpl{
		uow:         uow,
		publisher:   publisher,
		clock:       clock,
		maxAttempts: defaultMaxPublishAttempts,
	}
}

// RelayPending claims up to limit pending rows (SKIP LOCKED, so relays on
// several instances split the work) and publishes them while the claim is held.
func (o *outboxCommandsImpl) RelayPending(ctx context.Context, limit int) (int, error) {
	var (
		published  int
		publishErr error
	)
	err := o.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		published, publishErr = 0, nil

		events, err := tx.Events().ClaimPending(ctx, tx.DB(), limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		msgs := make([]EventMessage, len(events))
		for i, ev := range events {
			msgs[i] = EventMessage{ID: ev.ID, Key: ev.Key, Type: string(ev.Type), Payload: ev.Payload}
		}

		results, err := o.publisher.PublishBatch(ctx, msgs)
		if err != nil {
			publishErr = err
			results = make([]error, len(msgs))
			for i := range results {
				results[i] = err
			}
		}

		var delivered []int64
		for i, ev := range events {
			if i < len(results) && results[i] != nil {
				if err := tx.Events().MarkFailed(ctx, tx.DB(), ev.ID, results[i].Error(), o.maxAttempts); err != nil {
					return err
				}
				continue
			}
			delivered = append(delivered, ev.ID)
		}
		if err := tx.Events().MarkPublished(ctx, tx.DB(), delivered, o.clock.Now()); err != nil {
			return err
		}
		published = len(delivered)
		return nil
	})
	if err != nil {
		return 0, errs.Mark(errs.Wrap(err, "failed to relay booking events"), ErrStoreUnavailable)
	}
	if publishErr != nil {
		return published, errs.Wrap(publishErr, "failed to publish booking events")
	}
	return published, nil
}
