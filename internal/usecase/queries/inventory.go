package queries

import (
	"context"

	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/pkg/errs"
)

var ErrInventoryNotFound = errs.New("inventory not initialized")

type InventoryQueries interface {
	List(ctx context.Context) ([]*InventoryView, error)
	Get(ctx context.Context, roomType string) (*InventoryView, error)
}

type InventoryReadStore interface {
	List(ctx context.Context) ([]*InventoryView, error)
	Get(ctx context.Context, roomType inventory.RoomType) (*InventoryView, error)
}

type inventoryQueriesImpl struct {
	store InventoryReadStore
}

func NewInventoryQueries(store InventoryReadStore) InventoryQueries {
	return &inventoryQueriesImpl{store: store}
}

func (q *inventoryQueriesImpl) List(ctx context.Context) ([]*InventoryView, error) {
	rows, err := q.store.List(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list inventory")
	}
	return rows, nil
}

func (q *inventoryQueriesImpl) Get(ctx context.Context, roomType string) (*InventoryView, error) {
	rt, err := inventory.ParseRoomType(roomType)
	if err != nil {
		return nil, err
	}
	view, err := q.store.Get(ctx, rt)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInventoryNotFound
		}
		return nil, errs.Wrap(err, "failed to load inventory")
	}
	return view, nil
}
