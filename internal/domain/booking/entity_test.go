//go:build unit

package booking_test

import (
	"testing"
	"time"

	"hotel-booking/internal/domain/booking"
	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/domain/inventory"
	"hotel-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.BookingBuilder)
	errIs  error
}

func TestNewPending(t *testing.T) {
	t.Run("基本成功ケース", func(t *testing.T) {
		bb := builder.NewBookingBuilder()
		b, err := bb.BuildDomain()
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, b.ID())
		assert.False(t, b.Reference().IsZero())
		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, booking.PaymentPending, b.PaymentStatus())
		assert.Equal(t, booking.SourceGateway, b.Source())
		assert.True(t, b.InventoryHeld())
		assert.False(t, b.GuestCounted())
		require.NotNil(t, b.HoldExpiresAt())
		assert.Equal(t, bb.Now.Add(bb.HoldTTL), *b.HoldExpiresAt())
		assert.Equal(t, 2, b.Details().Stay.Nights())
		assert.Equal(t, int64(500000), b.Details().TotalAmount)
	})

	t.Run("client booking id is kept", func(t *testing.T) {
		b, err := builder.NewBookingBuilder().WithBookingID("BK-WEB-42").BuildDomain()
		require.NoError(t, err)
		assert.Equal(t, "BK-WEB-42", b.Reference().String())
	})

	t.Run("入力検証", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "same-day stay", mutate: func(b *builder.BookingBuilder) { b.WithStay("2026-12-01", "2026-12-01") }, errIs: booking.ErrInvalidStay},
			{name: "reversed stay", mutate: func(b *builder.BookingBuilder) { b.WithStay("2026-12-03", "2026-12-01") }, errIs: booking.ErrInvalidStay},
			{name: "RFC 3339 dates OK", mutate: func(b *builder.BookingBuilder) { b.WithStay("2026-12-01T14:00:00Z", "2026-12-02T11:00:00Z") }},
			{name: "unknown room type", mutate: func(b *builder.BookingBuilder) { b.WithRoomType("penthouse") }, errIs: inventory.ErrUnknownRoomType},
			{name: "room type is case-insensitive", mutate: func(b *builder.BookingBuilder) { b.WithRoomType("SUITE") }},
			{name: "invalid email", mutate: func(b *builder.BookingBuilder) { b.WithEmail("guest-at-example") }, errIs: guest.ErrInvalidEmail},
			{name: "blank guest name", mutate: func(b *builder.BookingBuilder) { b.GuestName = "   " }, errIs: booking.ErrGuestNameRequired},
			{name: "zero guests", mutate: func(b *builder.BookingBuilder) { b.Guests = 0 }, errIs: booking.ErrInvalidGuestCount},
			{name: "bad booking id", mutate: func(b *builder.BookingBuilder) { b.WithBookingID("x") }, errIs: booking.ErrInvalidReference},
		})
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewBookingBuilder().With(c.mutate).BuildDomain()
			if c.errIs == nil {
				require.NoError(t, err)
				require.NotNil(t, actual)
				return
			}
			require.Nil(t, actual)
			require.ErrorIs(t, err, c.errIs)
		})
	}
}

func pending(t *testing.T) (*booking.Booking, time.Time) {
	t.Helper()
	bb := builder.NewBookingBuilder()
	b, err := bb.BuildDomain()
	require.NoError(t, err)
	return b, bb.Now
}

func TestBookingLifecycle(t *testing.T) {
	t.Run("confirm", func(t *testing.T) {
		b, now := pending(t)
		require.NoError(t, b.AttachGatewayOrder("order_1", now))
		assert.ErrorIs(t, b.AttachGatewayOrder("order_2", now), booking.ErrInvalidTransition)

		require.NoError(t, b.Confirm("pay_1", "sig", now.Add(time.Minute)))
		assert.Equal(t, booking.StatusConfirmed, b.Status())
		assert.Equal(t, booking.PaymentCompleted, b.PaymentStatus())
		assert.Nil(t, b.HoldExpiresAt())
		assert.True(t, b.InventoryHeld())
		assert.False(t, b.CanConfirm())
		assert.ErrorIs(t, b.Confirm("pay_1", "sig", now), booking.ErrPaymentAlreadyDone)
	})

	t.Run("hold expiry keeps the booking confirmable", func(t *testing.T) {
		b, now := pending(t)
		assert.False(t, b.HoldExpired(now.Add(14*time.Minute)))
		_, err := b.Expire(now.Add(14 * time.Minute))
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)

		at := now.Add(15 * time.Minute)
		assert.True(t, b.HoldExpired(at))
		releases, err := b.Expire(at)
		require.NoError(t, err)
		assert.True(t, releases)
		assert.Equal(t, booking.StatusCancelled, b.Status())
		assert.Equal(t, booking.PaymentFailed, b.PaymentStatus())
		assert.False(t, b.InventoryHeld())
		assert.Nil(t, b.CancelledAt())
		assert.True(t, b.CanConfirm())

		require.NoError(t, b.Confirm("pay_late", "sig", at.Add(time.Minute)))
		assert.Equal(t, booking.StatusConfirmed, b.Status())
	})

	t.Run("explicit cancel is final and idempotent", func(t *testing.T) {
		b, now := pending(t)
		changed, releases := b.Cancel(now)
		assert.True(t, changed)
		assert.True(t, releases)
		require.NotNil(t, b.CancelledAt())
		assert.False(t, b.CanConfirm())

		changed, releases = b.Cancel(now.Add(time.Hour))
		assert.False(t, changed)
		assert.False(t, releases)
		assert.Equal(t, now, *b.CancelledAt())
	})

	t.Run("failed payment only from pending", func(t *testing.T) {
		b, now := pending(t)
		releases, err := b.FailPayment(now)
		require.NoError(t, err)
		assert.True(t, releases)

		_, err = b.FailPayment(now)
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	})

	t.Run("unfulfilled payment is recorded for refund", func(t *testing.T) {
		b, now := pending(t)
		b.Cancel(now)
		require.NoError(t, b.RecordUnfulfilledPayment("pay_9", "sig", now))
		assert.Equal(t, booking.StatusCancelled, b.Status())
		assert.Equal(t, booking.PaymentCompleted, b.PaymentStatus())
		assert.Equal(t, "pay_9", b.PaymentID())
		assert.ErrorIs(t, b.RecordUnfulfilledPayment("pay_9", "sig", now), booking.ErrPaymentAlreadyDone)
	})

	t.Run("guest is counted once", func(t *testing.T) {
		b, _ := pending(t)
		assert.True(t, b.MarkGuestCounted())
		assert.False(t, b.MarkGuestCounted())
	})
}

func TestNewDirect(t *testing.T) {
	d, err := builder.NewBookingBuilder().BuildDetails()
	require.NoError(t, err)
	now := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		status        booking.Status
		paymentStatus booking.PaymentStatus
		wantHeld      bool
		errIs         error
	}{
		{name: "confirmed holds a unit", status: booking.StatusConfirmed, paymentStatus: booking.PaymentCompleted, wantHeld: true},
		{name: "pending holds nothing", status: booking.StatusPending, paymentStatus: booking.PaymentPending},
		{name: "cancelled", status: booking.StatusCancelled, paymentStatus: booking.PaymentPending},
		{name: "confirmed with failed payment", status: booking.StatusConfirmed, paymentStatus: booking.PaymentFailed, errIs: booking.ErrInvalidTransition},
		{name: "unknown status", status: "booked", paymentStatus: booking.PaymentPending, errIs: booking.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := booking.NewDirect(d, tt.status, tt.paymentStatus, now)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, booking.SourceDirect, b.Source())
			assert.Equal(t, tt.wantHeld, b.InventoryHeld())
			assert.Nil(t, b.HoldExpiresAt())
			assert.Equal(t, tt.status == booking.StatusCancelled, b.CancelledAt() != nil)
		})
	}
}

func TestMinorUnits(t *testing.T) {
	v, err := booking.MinorUnits(1234.56)
	require.NoError(t, err)
	assert.Equal(t, int64(123456), v)
	assert.InDelta(t, 1234.56, booking.MajorUnits(v), 0.0001)

	_, err = booking.MinorUnits(-1)
	assert.ErrorIs(t, err, booking.ErrInvalidAmount)
}
