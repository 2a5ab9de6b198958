package queries

import (
	"time"

	"hotel-booking/internal/domain/booking"

	"github.com/google/uuid"
)

// BookingView is the read model returned by every booking endpoint. Amounts
// are in major currency units, the same unit the booking requests use.
type BookingView struct {
	ID             uuid.UUID  `json:"id"`
	BookingID      string     `json:"bookingId"`
	GuestName      string     `json:"guestName"`
	GuestEmail     string     `json:"guestEmail"`
	GuestPhone     string     `json:"guestPhone"`
	RoomType       string     `json:"roomType"`
	CheckIn        time.Time  `json:"checkIn"`
	CheckOut       time.Time  `json:"checkOut"`
	Guests         int        `json:"guests"`
	Nights         int        `json:"nights"`
	PricePerNight  float64    `json:"pricePerNight"`
	TotalAmount    float64    `json:"totalAmount"`
	Status         string     `json:"status"`
	PaymentStatus  string     `json:"paymentStatus"`
	Source         string     `json:"source"`
	GatewayOrderID string     `json:"gatewayOrderId,omitempty"`
	PaymentID      string     `json:"gatewayPaymentId,omitempty"`
	HoldExpiresAt  *time.Time `json:"holdExpiresAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
}

func BookingViewFromDomain(b *booking.Booking) *BookingView {
	d := b.Details()
	return &BookingView{
		ID:             b.ID(),
		BookingID:      b.Reference().String(),
		GuestName:      d.GuestName,
		GuestEmail:     d.GuestEmail.Value(),
		GuestPhone:     d.GuestPhone,
		RoomType:       d.RoomType.String(),
		CheckIn:        d.Stay.CheckIn(),
		CheckOut:       d.Stay.CheckOut(),
		Guests:         d.Guests,
		Nights:         d.Stay.Nights(),
		PricePerNight:  booking.MajorUnits(d.PricePerNight),
		TotalAmount:    booking.MajorUnits(d.TotalAmount),
		Status:         b.Status().String(),
		PaymentStatus:  b.PaymentStatus().String(),
		Source:         string(b.Source()),
		GatewayOrderID: b.GatewayOrderID(),
		PaymentID:      b.PaymentID(),
		HoldExpiresAt:  b.HoldExpiresAt(),
		CreatedAt:      b.CreatedAt(),
		UpdatedAt:      b.UpdatedAt(),
		CancelledAt:    b.CancelledAt(),
	}
}

type InventoryView struct {
	RoomType  string    `json:"roomType"`
	Available int       `json:"available"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type GuestView struct {
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Bookings    int        `json:"bookings"`
	LastBooking *time.Time `json:"lastBooking,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type BookingStatsView struct {
	Total            int64            `json:"total"`
	ByStatus         map[string]int64 `json:"byStatus"`
	ByRoomType       map[string]int64 `json:"byRoomType"`
	ConfirmedRevenue float64          `json:"confirmedRevenue"`
	Guests           int64            `json:"guests"`
}

type AuthorizedUserView struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
