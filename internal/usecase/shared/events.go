package shared

import (
	"encoding/json"
	"time"

	"hotel-booking/internal/domain/booking"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventPaymentFailed    EventType = "booking.payment_failed"
	EventRefundRequired   EventType = "booking.refund_required"
	EventBookingCancelled EventType = "booking.cancelled"
	EventBookingExpired   EventType = "booking.expired"
)

// BookingEvent is the payload written to the outbox and published to Kafka.
type BookingEvent struct {
	Type          EventType `json:"type"`
	ID            uuid.UUID `json:"id"`
	BookingID     string    `json:"booking_id"`
	GuestEmail    string    `json:"guest_email"`
	RoomType      string    `json:"room_type"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalAmount   int64     `json:"total_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(t EventType, b *booking.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:          t,
		ID:            b.ID(),
		BookingID:     b.Reference().String(),
		GuestEmail:    b.GuestEmail().Value(),
		RoomType:      b.RoomType().String(),
		Status:        b.Status().String(),
		PaymentStatus: b.PaymentStatus().String(),
		TotalAmount:   b.Details().TotalAmount,
		OccurredAt:    at,
	}
}

func (e BookingEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// OutboxEvent is a stored event awaiting publication.
type OutboxEvent struct {
	ID        int64
	BookingID uuid.UUID
	Type      EventType
	Key       string
	Payload   []byte
	Attempts  int
	CreatedAt time.Time
}
