//go:build unit || e2e

package builder

import (
	"time"

	"hotel-booking/internal/domain/booking"
	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/domain/inventory"
	reqdto "hotel-booking/internal/handler/dto/request"
	"hotel-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

// BookingBuilder produces the same booking as a request DTO, a domain
// aggregate or a read model.
type BookingBuilder struct {
	BookingID     string
	GuestName     string
	GuestEmail    string
	GuestPhone    string
	RoomType      string
	CheckIn       string
	CheckOut      string
	Guests        int
	PricePerNight float64
	Amount        float64
	Now           time.Time
	HoldTTL       time.Duration
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		GuestName:     "Asha Rao",
		GuestEmail:    "asha@example.com",
		GuestPhone:    "+91 98450 00000",
		RoomType:      "standard",
		CheckIn:       "2026-12-01",
		CheckOut:      "2026-12-03",
		Guests:        2,
		PricePerNight: 2500,
		Amount:        5000,
		Now:           time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC),
		HoldTTL:       15 * time.Minute,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) WithRoomType(rt string) *BookingBuilder {
	b.RoomType = rt
	return b
}

func (b *BookingBuilder) WithEmail(email string) *BookingBuilder {
	b.GuestEmail = email
	return b
}

func (b *BookingBuilder) WithStay(checkIn, checkOut string) *BookingBuilder {
	b.CheckIn, b.CheckOut = checkIn, checkOut
	return b
}

func (b *BookingBuilder) WithBookingID(id string) *BookingBuilder {
	b.BookingID = id
	return b
}

func (b *BookingBuilder) BuildData() reqdto.BookingData {
	return reqdto.BookingData{
		BookingID:     b.BookingID,
		GuestName:     b.GuestName,
		GuestEmail:    b.GuestEmail,
		GuestPhone:    b.GuestPhone,
		RoomType:      b.RoomType,
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		Guests:        b.Guests,
		PricePerNight: b.PricePerNight,
		TotalAmount:   b.Amount,
	}
}

func (b *BookingBuilder) BuildOrderDTO() reqdto.CreateOrderRequest {
	return reqdto.CreateOrderRequest{Amount: b.Amount, BookingData: b.BuildData()}
}

func (b *BookingBuilder) BuildDirectDTO(status, paymentStatus string) reqdto.DirectBookingRequest {
	return reqdto.DirectBookingRequest{BookingData: b.BuildData(), Status: status, PaymentStatus: paymentStatus}
}

func (b *BookingBuilder) BuildDomain() (*booking.Booking, error) {
	d, err := b.BuildDetails()
	if err != nil {
		return nil, err
	}
	return booking.NewPending(d, b.Now, b.HoldTTL)
}

func (b *BookingBuilder) BuildDetails() (booking.Details, error) {
	var (
		d   booking.Details
		err error
	)
	if b.BookingID != "" {
		if d.Reference, err = booking.ParseReference(b.BookingID); err != nil {
			return d, err
		}
	}
	if d.GuestEmail, err = guest.NewEmail(b.GuestEmail); err != nil {
		return d, err
	}
	if d.RoomType, err = inventory.ParseRoomType(b.RoomType); err != nil {
		return d, err
	}
	if d.Stay, err = booking.ParseStay(b.CheckIn, b.CheckOut); err != nil {
		return d, err
	}
	d.GuestName = b.GuestName
	d.GuestPhone = b.GuestPhone
	d.Guests = b.Guests
	d.PricePerNight = int64(b.PricePerNight * 100)
	d.TotalAmount = int64(b.Amount * 100)
	return d, nil
}

func (b *BookingBuilder) BuildReadModel() *queries.BookingView {
	ref := b.BookingID
	if ref == "" {
		ref = "BK0000000001"
	}
	expires := b.Now.Add(b.HoldTTL)
	return &queries.BookingView{
		ID:             uuid.New(),
		BookingID:      ref,
		GuestName:      b.GuestName,
		GuestEmail:     b.GuestEmail,
		GuestPhone:     b.GuestPhone,
		RoomType:       b.RoomType,
		Guests:         b.Guests,
		Nights:         2,
		PricePerNight:  b.PricePerNight,
		TotalAmount:    b.Amount,
		Status:         "pending",
		PaymentStatus:  "pending",
		Source:         "gateway",
		GatewayOrderID: "order_test_1",
		HoldExpiresAt:  &expires,
		CreatedAt:      b.Now,
		UpdatedAt:      b.Now,
	}
}
