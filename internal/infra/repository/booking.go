package repository

import (
	"context"
	"time"

	"hotel-booking/internal/domain/booking"
	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingColumns = `
	id, booking_id, guest_name, guest_email, guest_phone, room_type,
	check_in, check_out, guests, price_per_night, total_amount,
	status, payment_status, source, gateway_order_id, gateway_payment_id, gateway_signature,
	hold_expires_at, inventory_held, guest_counted, created_at, updated_at, cancelled_at`

const insertBookingSQL = `
INSERT INTO bookings (` + bookingColumns + `, nights)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

const updateBookingSQL = `
UPDATE bookings SET
	status = $2,
	payment_status = $3,
	gateway_order_id = $4,
	gateway_payment_id = $5,
	gateway_signature = $6,
	hold_expires_at = $7,
	inventory_held = $8,
	guest_counted = $9,
	updated_at = $10,
	cancelled_at = $11
WHERE id = $1`

const lockBookingByIDSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

const lockBookingByReferenceSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1 FOR UPDATE`

const listExpiredHoldsSQL = `
SELECT id FROM bookings
WHERE status = 'pending' AND inventory_held AND hold_expires_at <= $1
ORDER BY hold_expires_at
LIMIT $2`

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(db db.DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	d := b.Details()
	_, err := tx.Exec(ctx, insertBookingSQL,
		b.ID(),
		b.Reference().String(),
		d.GuestName,
		d.GuestEmail.Value(),
		d.GuestPhone,
		d.RoomType.String(),
		pgconv.DateToPgtype(d.Stay.CheckIn()),
		pgconv.DateToPgtype(d.Stay.CheckOut()),
		d.Guests,
		d.PricePerNight,
		d.TotalAmount,
		b.Status().String(),
		b.PaymentStatus().String(),
		string(b.Source()),
		pgconv.TextOrNull(b.GatewayOrderID()),
		pgconv.TextOrNull(b.PaymentID()),
		pgconv.TextOrNull(b.Signature()),
		pgconv.TimePtrToPgtype(b.HoldExpiresAt()),
		b.InventoryHeld(),
		b.GuestCounted(),
		b.CreatedAt(),
		b.UpdatedAt(),
		pgconv.TimePtrToPgtype(b.CancelledAt()),
		d.Stay.Nights(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert booking", err)
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	tag, err := tx.Exec(ctx, updateBookingSQL,
		b.ID(),
		b.Status().String(),
		b.PaymentStatus().String(),
		pgconv.TextOrNull(b.GatewayOrderID()),
		pgconv.TextOrNull(b.PaymentID()),
		pgconv.TextOrNull(b.Signature()),
		pgconv.TimePtrToPgtype(b.HoldExpiresAt()),
		b.InventoryHeld(),
		b.GuestCounted(),
		b.UpdatedAt(),
		pgconv.TimePtrToPgtype(b.CancelledAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "booking not found")
	}
	return nil
}

func (r *BookingRepository) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	b, err := scanBooking(tx.QueryRow(ctx, lockBookingByIDSQL, id))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock booking by id", err)
	}
	return b, nil
}

func (r *BookingRepository) LockByReference(ctx context.Context, tx db.DBTX, ref string) (*booking.Booking, error) {
	b, err := scanBooking(tx.QueryRow(ctx, lockBookingByReferenceSQL, ref))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock booking by booking id", err)
	}
	return b, nil
}

func (r *BookingRepository) ListExpiredHolds(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, listExpiredHoldsSQL, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired holds", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan expired holds", err)
	}
	return ids, nil
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		p                             booking.ReconstructParams
		reference, email, roomType    string
		checkIn, checkOut             pgtype.Date
		status, paymentStatus, source string
		orderID, paymentID, signature pgtype.Text
		holdExpiresAt, cancelledAt    pgtype.Timestamptz
	)
	err := row.Scan(
		&p.ID, &reference, &p.Details.GuestName, &email, &p.Details.GuestPhone, &roomType,
		&checkIn, &checkOut, &p.Details.Guests, &p.Details.PricePerNight, &p.Details.TotalAmount,
		&status, &paymentStatus, &source, &orderID, &paymentID, &signature,
		&holdExpiresAt, &p.InventoryHeld, &p.GuestCounted, &p.CreatedAt, &p.UpdatedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Details.Reference, err = booking.ParseReference(reference); err != nil {
		return nil, err
	}
	if p.Details.GuestEmail, err = guest.NewEmail(email); err != nil {
		return nil, err
	}
	if p.Details.RoomType, err = inventory.ParseRoomType(roomType); err != nil {
		return nil, err
	}
	if p.Details.Stay, err = booking.NewStay(pgconv.DateFromPgtype(checkIn), pgconv.DateFromPgtype(checkOut)); err != nil {
		return nil, err
	}
	if p.Status, err = booking.ParseStatus(status); err != nil {
		return nil, err
	}
	if p.PaymentStatus, err = booking.ParsePaymentStatus(paymentStatus); err != nil {
		return nil, err
	}
	p.Source = booking.Source(source)
	p.GatewayOrderID = pgconv.StringFromPgtype(orderID)
	p.PaymentID = pgconv.StringFromPgtype(paymentID)
	p.Signature = pgconv.StringFromPgtype(signature)
	p.HoldExpiresAt = pgconv.TimePtrFromPgtype(holdExpiresAt)
	p.CancelledAt = pgconv.TimePtrFromPgtype(cancelledAt)

	return booking.Reconstruct(p), nil
}
