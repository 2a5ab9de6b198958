package readstore

import (
	"context"

	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/pkg/pgconv"
	"hotel-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
)

const listInventorySQL = `SELECT room_type, available, updated_at FROM room_inventory ORDER BY room_type`

const getInventorySQL = `SELECT room_type, available, updated_at FROM room_inventory WHERE room_type = $1`

type InventoryReadStore struct {
	db db.DBTX
}

func NewInventoryReadStore(db db.DBTX) *InventoryReadStore {
	return &InventoryReadStore{db: db}
}

func (r *InventoryReadStore) List(ctx context.Context) ([]*queries.InventoryView, error) {
	rows, err := r.db.Query(ctx, listInventorySQL)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list inventory", err)
	}
	views, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[queries.InventoryView])
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan inventory", err)
	}
	return views, nil
}

func (r *InventoryReadStore) Get(ctx context.Context, roomType inventory.RoomType) (*queries.InventoryView, error) {
	var v queries.InventoryView
	err := r.db.QueryRow(ctx, getInventorySQL, roomType.String()).Scan(&v.RoomType, &v.Available, &v.UpdatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("inventory not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get inventory", err)
	}
	return &v, nil
}
