package commands

import (
	"context"
	"log/slog"

	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/shared"
)

var ErrInvalidInventory = errs.New("invalid inventory")

// InventoryCommands covers deploy-time initialization and admin corrections.
// Booking flows never call it.
type InventoryCommands interface {
	SetAvailable(ctx context.Context, roomType string, available int) error
	// Initialize creates missing room types. Counts already in the store are kept.
	Initialize(ctx context.Context, counts inventory.Counts) ([]inventory.RoomType, error)
}

type inventoryCommandsImpl struct {
	uow   shared.UnitOfWork
	cache InventoryCache
}

func NewInventoryCommands(uow shared.UnitOfWork, cache InventoryCache) InventoryCommands {
	return &inventoryCommandsImpl{uow: uow, cache: cache}
}

func (c *inventoryCommandsImpl) SetAvailable(ctx context.Context, roomType string, available int) error {
	rt, err := inventory.ParseRoomType(roomType)
	if err != nil {
		return errs.Mark(err, ErrUnknownRoomType)
	}
	if available < 0 {
		return errs.Mark(inventory.ErrNegativeCount, ErrInvalidInventory)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Inventory().Set(ctx, tx.DB(), rt, available)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrUnknownRoomType)
		}
		return errs.Mark(errs.Wrap(err, "failed to set inventory"), ErrStoreUnavailable)
	}
	slog.Info("inventory adjusted", "room_type", rt.String(), "available", available)
	c.invalidate(ctx)
	return nil
}

func (c *inventoryCommandsImpl) Initialize(ctx context.Context, counts inventory.Counts) ([]inventory.RoomType, error) {
	if !counts.Complete() {
		return nil, errs.Mark(errs.New("every room type needs a count"), ErrInvalidInventory)
	}
	var created []inventory.RoomType
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		created, err = tx.Inventory().Initialize(ctx, tx.DB(), counts)
		return err
	})
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to initialize inventory"), ErrStoreUnavailable)
	}
	if len(created) > 0 {
		c.invalidate(ctx)
	}
	return created, nil
}

func (c *inventoryCommandsImpl) invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("failed to invalidate inventory cache", "error", err.Error())
	}
}
