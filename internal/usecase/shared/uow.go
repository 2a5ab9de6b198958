package shared

import (
	"context"
	"time"

	"hotel-booking/internal/domain/booking"
	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/domain/user"
	"hotel-booking/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
}

// Tx exposes the stores bound to one transaction. Only the booking
// orchestrator combines them.
type Tx interface {
	Bookings() BookingRepository
	Inventory() InventoryRepository
	Guests() GuestRepository
	Events() EventRepository
	Users() UserRepository
	DB() db.DBTX
}

type BookingRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	// Lock* read the row FOR UPDATE
	LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error)
	LockByReference(ctx context.Context, tx db.DBTX, ref string) (*booking.Booking, error)
	ListExpiredHolds(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]uuid.UUID, error)
}

type InventoryRepository interface {
	// Decrement fails with KindConditionFailed when no unit is left.
	Decrement(ctx context.Context, tx db.DBTX, roomType inventory.RoomType) (int, error)
	Increment(ctx context.Context, tx db.DBTX, roomType inventory.RoomType) (int, error)
	Set(ctx context.Context, tx db.DBTX, roomType inventory.RoomType, available int) error
	// Initialize only inserts missing room types and returns the ones it created.
	Initialize(ctx context.Context, tx db.DBTX, counts inventory.Counts) ([]inventory.RoomType, error)
}

type GuestRepository interface {
	// Ensure creates the guest with zero confirmed bookings if absent and
	// refreshes contact details otherwise.
	Ensure(ctx context.Context, tx db.DBTX, g *guest.Guest) error
	IncrementOrCreate(ctx context.Context, tx db.DBTX, g *guest.Guest, at time.Time) (int, error)
}

type EventRepository interface {
	Enqueue(ctx context.Context, tx db.DBTX, ev BookingEvent) error
	ClaimPending(ctx context.Context, tx db.DBTX, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, tx db.DBTX, ids []int64, at time.Time) error
	MarkFailed(ctx context.Context, tx db.DBTX, id int64, lastError string, maxAttempts int) error
}

type UserRepository interface {
	UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error
	// Upsert creates the account or resets its password and role.
	Upsert(ctx context.Context, tx db.DBTX, u *user.User) (uuid.UUID, error)
}
