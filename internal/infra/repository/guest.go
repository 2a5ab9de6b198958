package repository

import (
	"context"
	"time"

	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"
)

const ensureGuestSQL = `
INSERT INTO guests (email, name, phone, bookings, created_at, updated_at)
VALUES ($1, $2, $3, 0, $4, $4)
ON CONFLICT (email) DO UPDATE
SET name = EXCLUDED.name,
    phone = CASE WHEN EXCLUDED.phone <> '' THEN EXCLUDED.phone ELSE guests.phone END,
    updated_at = EXCLUDED.updated_at`

const incrementOrCreateGuestSQL = `
INSERT INTO guests (email, name, phone, bookings, last_booking, created_at, updated_at)
VALUES ($1, $2, $3, 1, $4, $4, $4)
ON CONFLICT (email) DO UPDATE
SET bookings = guests.bookings + 1,
    last_booking = EXCLUDED.last_booking,
    name = EXCLUDED.name,
    phone = CASE WHEN EXCLUDED.phone <> '' THEN EXCLUDED.phone ELSE guests.phone END,
    updated_at = EXCLUDED.updated_at
RETURNING bookings`

type GuestRepository struct {
	db db.DBTX
}

func NewGuestRepository(db db.DBTX) *GuestRepository {
	return &GuestRepository{db: db}
}

func (r *GuestRepository) Ensure(ctx context.Context, tx db.DBTX, g *guest.Guest) error {
	_, err := tx.Exec(ctx, ensureGuestSQL, g.Email().Value(), g.Name(), g.Phone(), g.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to ensure guest", err)
	}
	return nil
}

// IncrementOrCreate is a single upsert, so concurrent confirmations for the same
// email serialize on the row instead of losing an increment.
func (r *GuestRepository) IncrementOrCreate(ctx context.Context, tx db.DBTX, g *guest.Guest, at time.Time) (int, error) {
	var bookings int
	err := tx.QueryRow(ctx, incrementOrCreateGuestSQL, g.Email().Value(), g.Name(), g.Phone(), at).Scan(&bookings)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to increment guest bookings", err)
	}
	return bookings, nil
}
