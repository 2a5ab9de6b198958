package commands

import (
	"context"
	"log/slog"

	"hotel-booking/internal/pkg/clock"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// HoldCommands releases inventory held by pending bookings whose payment never
// arrived.
type HoldCommands interface {
	ExpireHolds(ctx context.Context, limit int) (int, error)
}

type holdCommandsImpl struct {
	uow   shared.UnitOfWork
	cache InventoryCache
	clock clock.Clock
}

func NewHoldCommands(uow shared.UnitOfWork, cache InventoryCache, clock clock.Clock) HoldCommands {
	return &holdCommandsImpl{uow: uow, cache: cache, clock: clock}
}

// ExpireHolds handles each booking in its own transaction so one failure does
// not roll back the rest of the batch.
func (h *holdCommandsImpl) ExpireHolds(ctx context.Context, limit int) (int, error) {
	now := h.clock.Now()

	var ids []uuid.UUID
	err := h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Bookings().ListExpiredHolds(ctx, tx.DB(), now, limit)
		return err
	})
	if err != nil {
		return 0, errs.Mark(errs.Wrap(err, "failed to list expired holds"), ErrStoreUnavailable)
	}

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		ok, err := h.expireOne(ctx, id)
		if err != nil {
			slog.Error("failed to expire booking hold", "booking_uuid", id.String(), "error", err.Error())
			continue
		}
		if ok {
			expired++
		}
	}

	if expired > 0 && h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate inventory cache", "error", err.Error())
		}
	}
	return expired, nil
}

func (h *holdCommandsImpl) expireOne(ctx context.Context, id uuid.UUID) (bool, error) {
	expired := false
	err := h.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		expired = false
		now := h.clock.Now()
		b, err := tx.Bookings().LockByID(ctx, tx.DB(), id)
		if err != nil {
			return err
		}
		// a callback may have confirmed it since the listing
		if !b.HoldExpired(now) {
			return nil
		}
		releasesUnit, err := b.Expire(now)
		if err != nil {
			return err
		}
		if releasesUnit {
			if _, err := tx.Inventory().Increment(ctx, tx.DB(), b.RoomType()); err != nil {
				return err
			}
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return err
		}
		if err := tx.Events().Enqueue(ctx, tx.DB(), shared.NewBookingEvent(shared.EventBookingExpired, b, now)); err != nil {
			return err
		}
		expired = true
		return nil
	})
	return expired, err
}
