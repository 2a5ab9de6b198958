package readstore

import (
	"context"
	"fmt"
	"strings"

	"hotel-booking/internal/domain/booking"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/pkg/pgconv"
	"hotel-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingViewColumns = `
	id, booking_id, guest_name, guest_email, guest_phone, room_type,
	check_in, check_out, guests, nights, price_per_night, total_amount,
	status, payment_status, source, gateway_order_id, gateway_payment_id,
	hold_expires_at, created_at, updated_at, cancelled_at`

const findBookingByIDSQL = `SELECT ` + bookingViewColumns + ` FROM bookings WHERE id = $1`

const findBookingByBookingIDSQL = `SELECT ` + bookingViewColumns + ` FROM bookings WHERE booking_id = $1`

const listBookingsByGuestEmailSQL = `
SELECT ` + bookingViewColumns + ` FROM bookings
WHERE guest_email = $1
ORDER BY created_at DESC, id DESC`

// bookingStatsSQL is one statement so every figure comes from the same snapshot.
const bookingStatsSQL = `
SELECT
    (SELECT count(*) FROM bookings),
    (SELECT COALESCE(jsonb_object_agg(status, n), '{}'::jsonb)
       FROM (SELECT status, count(*) AS n FROM bookings GROUP BY status) s),
    (SELECT COALESCE(jsonb_object_agg(room_type, n), '{}'::jsonb)
       FROM (SELECT room_type, count(*) AS n FROM bookings GROUP BY room_type) r),
    (SELECT COALESCE(sum(total_amount), 0)::bigint FROM bookings WHERE status = 'confirmed'),
    (SELECT count(*) FROM guests)`

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(db db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: db}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	rows, err := r.db.Query(ctx, findBookingByIDSQL, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	view, err := pgx.CollectExactlyOneRow(rows, scanBookingView)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan booking", err)
	}
	return view, nil
}

func (r *BookingReadStore) FindByBookingID(ctx context.Context, bookingID string) (*queries.BookingView, error) {
	rows, err := r.db.Query(ctx, findBookingByBookingIDSQL, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find booking by booking id", err)
	}
	view, err := pgx.CollectExactlyOneRow(rows, scanBookingView)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan booking", err)
	}
	return view, nil
}

func (r *BookingReadStore) ListByGuestEmail(ctx context.Context, email string) ([]*queries.BookingView, error) {
	rows, err := r.db.Query(ctx, listBookingsByGuestEmailSQL, email)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings by guest email", err)
	}
	views, err := pgx.CollectRows(rows, scanBookingView)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan bookings", err)
	}
	return views, nil
}

// List pages with a (created_at, id) keyset so new bookings do not shift pages.
func (r *BookingReadStore) List(ctx context.Context, p queries.BookingListParams) ([]*queries.BookingView, error) {
	var (
		where []string
		args  []any
	)
	if p.Status != "" {
		args = append(args, p.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if p.RoomType != "" {
		args = append(args, p.RoomType)
		where = append(where, fmt.Sprintf("room_type = $%d", len(args)))
	}
	if p.AfterCreated != nil {
		args = append(args, *p.AfterCreated, p.AfterID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, p.Limit)

	var sb strings.Builder
	sb.WriteString(`SELECT ` + bookingViewColumns + ` FROM bookings`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	views, err := pgx.CollectRows(rows, scanBookingView)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan bookings", err)
	}
	return views, nil
}

func (r *BookingReadStore) Stats(ctx context.Context) (*queries.BookingStatsView, error) {
	var (
		stats   queries.BookingStatsView
		revenue int64
	)
	err := r.db.QueryRow(ctx, bookingStatsSQL).Scan(
		&stats.Total, &stats.ByStatus, &stats.ByRoomType, &revenue, &stats.Guests)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to aggregate bookings", err)
	}
	if stats.ByStatus == nil {
		stats.ByStatus = map[string]int64{}
	}
	if stats.ByRoomType == nil {
		stats.ByRoomType = map[string]int64{}
	}
	stats.ConfirmedRevenue = booking.MajorUnits(revenue)
	return &stats, nil
}

func scanBookingView(row pgx.CollectableRow) (*queries.BookingView, error) {
	var (
		v                     queries.BookingView
		price, total          int64
		checkIn, checkOut     pgtype.Date
		orderID, paymentID    pgtype.Text
		holdExpiresAt, cancel pgtype.Timestamptz
	)
	err := row.Scan(
		&v.ID, &v.BookingID, &v.GuestName, &v.GuestEmail, &v.GuestPhone, &v.RoomType,
		&checkIn, &checkOut, &v.Guests, &v.Nights, &price, &total,
		&v.Status, &v.PaymentStatus, &v.Source, &orderID, &paymentID,
		&holdExpiresAt, &v.CreatedAt, &v.UpdatedAt, &cancel,
	)
	if err != nil {
		return nil, err
	}
	v.PricePerNight = booking.MajorUnits(price)
	v.TotalAmount = booking.MajorUnits(total)
	v.CheckIn = pgconv.DateFromPgtype(checkIn)
	v.CheckOut = pgconv.DateFromPgtype(checkOut)
	v.GatewayOrderID = pgconv.StringFromPgtype(orderID)
	v.PaymentID = pgconv.StringFromPgtype(paymentID)
	v.HoldExpiresAt = pgconv.TimePtrFromPgtype(holdExpiresAt)
	v.CancelledAt = pgconv.TimePtrFromPgtype(cancel)
	return &v, nil
}
