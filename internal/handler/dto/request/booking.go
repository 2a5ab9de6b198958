package request

import (
	"hotel-booking/internal/domain/booking"
	"hotel-booking/internal/domain/guest"
	"hotel-booking/internal/domain/inventory"
)

// BookingData is the guest-entered part of a booking. Amounts are in major
// currency units and converted to minor units here.
type BookingData struct {
	BookingID     string  `json:"bookingId"`
	GuestName     string  `json:"guestName" binding:"required"`
	GuestEmail    string  `json:"guestEmail" binding:"required,email"`
	GuestPhone    string  `json:"guestPhone"`
	RoomType      string  `json:"roomType" binding:"required"`
	CheckIn       string  `json:"checkIn" binding:"required"`
	CheckOut      string  `json:"checkOut" binding:"required"`
	Guests        int     `json:"guests" binding:"required,min=1"`
	PricePerNight float64 `json:"pricePerNight" binding:"min=0"`
	TotalAmount   float64 `json:"totalAmount" binding:"min=0"`
}

func (r BookingData) ToDetails() (booking.Details, error) {
	var (
		d   booking.Details
		err error
	)
	if r.BookingID != "" {
		if d.Reference, err = booking.ParseReference(r.BookingID); err != nil {
			return booking.Details{}, err
		}
	}
	if d.GuestEmail, err = guest.NewEmail(r.GuestEmail); err != nil {
		return booking.Details{}, err
	}
	if d.RoomType, err = inventory.ParseRoomType(r.RoomType); err != nil {
		return booking.Details{}, err
	}
	if d.Stay, err = booking.ParseStay(r.CheckIn, r.CheckOut); err != nil {
		return booking.Details{}, err
	}
	if d.PricePerNight, err = booking.MinorUnits(r.PricePerNight); err != nil {
		return booking.Details{}, err
	}
	if d.TotalAmount, err = booking.MinorUnits(r.TotalAmount); err != nil {
		return booking.Details{}, err
	}
	d.GuestName = r.GuestName
	d.GuestPhone = r.GuestPhone
	d.Guests = r.Guests
	return d, nil
}

type CreateOrderRequest struct {
	Amount      float64     `json:"amount" binding:"required,gt=0"`
	BookingData BookingData `json:"bookingData" binding:"required"`
}

// ToDetails charges exactly Amount: the booking total is the ordered amount.
func (r CreateOrderRequest) ToDetails() (booking.Details, int64, error) {
	amount, err := booking.MinorUnits(r.Amount)
	if err != nil {
		return booking.Details{}, 0, err
	}
	if amount <= 0 {
		return booking.Details{}, 0, booking.ErrInvalidAmount
	}
	d, err := r.BookingData.ToDetails()
	if err != nil {
		return booking.Details{}, 0, err
	}
	d.TotalAmount = amount
	return d, amount, nil
}

type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	GatewaySignature string `json:"gateway_signature" binding:"required"`
	BookingID        string `json:"bookingId" binding:"required"`
}

// DirectBookingRequest is the admin path that bypasses the gateway. Statuses
// default to pending.
type DirectBookingRequest struct {
	BookingData
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

func (r DirectBookingRequest) Statuses() (booking.Status, booking.PaymentStatus, error) {
	status := booking.StatusPending
	paymentStatus := booking.PaymentPending
	var err error
	if r.Status != "" {
		if status, err = booking.ParseStatus(r.Status); err != nil {
			return "", "", err
		}
	}
	if r.PaymentStatus != "" {
		if paymentStatus, err = booking.ParsePaymentStatus(r.PaymentStatus); err != nil {
			return "", "", err
		}
	}
	return status, paymentStatus, nil
}

type UpdateInventoryRequest struct {
	Available *int `json:"available" binding:"required,min=0"`
}
