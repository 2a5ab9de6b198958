package repository

import (
	"context"

	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/pkg/pgconv"
)

// The guard and the decrement happen in one statement, so two callers racing for
// the last unit cannot both succeed.
const decrementInventorySQL = `
UPDATE room_inventory
SET available = available - 1, updated_at = now()
WHERE room_type = $1 AND available > 0
RETURNING available`

const incrementInventorySQL = `
UPDATE room_inventory
SET available = available + 1, updated_at = now()
WHERE room_type = $1
RETURNING available`

const setInventorySQL = `
UPDATE room_inventory
SET available = $2, updated_at = now()
WHERE room_type = $1`

// Existing rows already carry held and sold units, so initialization never
// touches them; live corrections go through Set.
const initInventorySQL = `
INSERT INTO room_inventory (room_type, available, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (room_type) DO NOTHING`

const inventoryExistsSQL = `SELECT EXISTS (SELECT 1 FROM room_inventory WHERE room_type = $1)`

type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(db db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Decrement(ctx context.Context, tx db.DBTX, roomType inventory.RoomType) (int, error) {
	var available int
	err := tx.QueryRow(ctx, decrementInventorySQL, roomType.String()).Scan(&available)
	if err == nil {
		return available, nil
	}
	if !pgconv.IsNoRows(err) {
		return 0, infra.WrapRepoErr("failed to decrement inventory", err)
	}

	exists, err := r.exists(ctx, tx, roomType)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, infra.NewRepoErr(infra.KindNotFound, "inventory not initialized for room type "+roomType.String())
	}
	return 0, infra.NewRepoErr(infra.KindConditionFailed, "no rooms available for room type "+roomType.String())
}

func (r *InventoryRepository) Increment(ctx context.Context, tx db.DBTX, roomType inventory.RoomType) (int, error) {
	var available int
	err := tx.QueryRow(ctx, incrementInventorySQL, roomType.String()).Scan(&available)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, infra.NewRepoErr(infra.KindNotFound, "inventory not initialized for room type "+roomType.String())
		}
		return 0, infra.WrapRepoErr("failed to increment inventory", err)
	}
	return available, nil
}

func (r *InventoryRepository) Set(ctx context.Context, tx db.DBTX, roomType inventory.RoomType, available int) error {
	if available < 0 {
		return infra.NewRepoErr(infra.KindCheckViolated, inventory.ErrNegativeCount.Error())
	}
	tag, err := tx.Exec(ctx, setInventorySQL, roomType.String(), available)
	if err != nil {
		return infra.WrapRepoErr("failed to set inventory", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "inventory not initialized for room type "+roomType.String())
	}
	return nil
}

// Initialize inserts the room types that have no row yet and reports which
// ones it created.
func (r *InventoryRepository) Initialize(ctx context.Context, tx db.DBTX, counts inventory.Counts) ([]inventory.RoomType, error) {
	var created []inventory.RoomType
	for _, rt := range inventory.AllRoomTypes() {
		n, ok := counts[rt]
		if !ok {
			continue
		}
		tag, err := tx.Exec(ctx, initInventorySQL, rt.String(), n)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to initialize inventory", err)
		}
		if tag.RowsAffected() == 1 {
			created = append(created, rt)
		}
	}
	return created, nil
}

func (r *InventoryRepository) exists(ctx context.Context, tx db.DBTX, roomType inventory.RoomType) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, inventoryExistsSQL, roomType.String()).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check inventory row", err)
	}
	return exists, nil
}
