//go:build unit || e2e

package dbtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123"
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

// DBLike is satisfied by both a pool and a transaction.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var resetTables = []string{"booking_events", "bookings", "guests", "room_inventory", "users"}

// DefaultInventory is what every reset starts from.
var DefaultInventory = map[string]int{
	"standard": 5,
	"deluxe":   2,
	"suite":    1,
}

// CreateTestUser upserts a back-office account whose password is
// "password123" and returns its id.
func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (id, email, password_hash, role, is_active)
		VALUES ($1, lower($2), $3, $4, true)
		ON CONFLICT (email) DO UPDATE SET role = EXCLUDED.role, password_hash = EXCLUDED.password_hash
		RETURNING id`,
		uuid.New(), email, testPasswordHash, role).Scan(&id)
	require.NoError(t, err)
	return id
}

func Available(t *testing.T, db DBLike, roomType string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT available FROM room_inventory WHERE room_type = $1", roomType).Scan(&n)
	require.NoError(t, err)
	return n
}

func GuestBookings(t *testing.T, db DBLike, email string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT COALESCE((SELECT bookings FROM guests WHERE email = $1), 0)", email).Scan(&n)
	require.NoError(t, err)
	return n
}

func EventTypes(t *testing.T, db DBLike, bookingRef string) []string {
	t.Helper()

	var types []string
	err := db.QueryRow(context.Background(), `
		SELECT COALESCE(array_agg(e.event_type ORDER BY e.id), '{}')
		FROM booking_events e JOIN bookings b ON b.id = e.booking_id
		WHERE b.booking_id = $1`, bookingRef).Scan(&types)
	require.NoError(t, err)
	return types
}

// ExpireHold moves a booking's hold deadline into the past.
func ExpireHold(t *testing.T, db DBLike, bookingRef string) {
	t.Helper()

	tag, err := db.Exec(context.Background(), "UPDATE bookings SET hold_expires_at = now() - interval '1 minute' WHERE booking_id = $1", bookingRef)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())
}

// SeedReferenceData writes DefaultInventory.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	for roomType, available := range DefaultInventory {
		_, err := pool.Exec(ctx, `
			INSERT INTO room_inventory (room_type, available) VALUES ($1, $2)
			ON CONFLICT (room_type) DO UPDATE SET available = EXCLUDED.available, updated_at = now()`,
			roomType, available)
		if err != nil {
			return err
		}
	}

	return nil
}

// ResetDB empties every table and restores DefaultInventory.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, "TRUNCATE "+strings.Join(resetTables, ", ")+" RESTART IDENTITY CASCADE"); err != nil {
		return err
	}
	return SeedReferenceData(pool)
}
