package readstore

import (
	"context"

	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/pkg/pgconv"
	"hotel-booking/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const guestViewColumns = `email, name, phone, bookings, last_booking, created_at`

const findGuestByEmailSQL = `SELECT ` + guestViewColumns + ` FROM guests WHERE email = $1`

const listGuestsSQL = `
SELECT ` + guestViewColumns + ` FROM guests
ORDER BY last_booking DESC NULLS LAST, created_at DESC
LIMIT $1`

type GuestReadStore struct {
	db db.DBTX
}

func NewGuestReadStore(db db.DBTX) *GuestReadStore {
	return &GuestReadStore{db: db}
}

// FindByEmail expects an already-normalized email; rows are stored lower-cased.
func (r *GuestReadStore) FindByEmail(ctx context.Context, email string) (*queries.GuestView, error) {
	rows, err := r.db.Query(ctx, findGuestByEmailSQL, email)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find guest", err)
	}
	view, err := pgx.CollectExactlyOneRow(rows, scanGuestView)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("guest not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan guest", err)
	}
	return view, nil
}

func (r *GuestReadStore) List(ctx context.Context, limit int) ([]*queries.GuestView, error) {
	rows, err := r.db.Query(ctx, listGuestsSQL, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list guests", err)
	}
	views, err := pgx.CollectRows(rows, scanGuestView)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan guests", err)
	}
	return views, nil
}

func scanGuestView(row pgx.CollectableRow) (*queries.GuestView, error) {
	var (
		v    queries.GuestView
		last pgtype.Timestamptz
	)
	if err := row.Scan(&v.Email, &v.Name, &v.Phone, &v.Bookings, &last, &v.CreatedAt); err != nil {
		return nil, err
	}
	v.LastBooking = pgconv.TimePtrFromPgtype(last)
	return &v, nil
}
