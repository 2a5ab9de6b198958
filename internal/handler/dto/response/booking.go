package response

import (
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/internal/usecase/queries"
)

type CreateOrderResponse struct {
	Order     *commands.GatewayOrder `json:"order"`
	BookingID string                 `json:"bookingId"`
}

func FromCreateOrderResult(r *commands.CreateOrderResult) CreateOrderResponse {
	return CreateOrderResponse{Order: r.Order, BookingID: r.BookingID}
}

// VerifyPaymentResponse is sent with 200 for both a confirmed and a rejected
// payment; Success tells them apart.
type VerifyPaymentResponse struct {
	Success bool                 `json:"success"`
	Booking *queries.BookingView `json:"booking,omitempty"`
	Message string               `json:"message,omitempty"`
}

func FromVerificationResult(r *commands.VerificationResult) VerifyPaymentResponse {
	return VerifyPaymentResponse{
		Success: r.Success,
		Booking: r.Booking,
		Message: r.Message,
	}
}

type BookingResponse struct {
	Booking *queries.BookingView `json:"booking"`
}

type BookingListResponse struct {
	Bookings   []*queries.BookingView `json:"bookings"`
	NextCursor string                 `json:"nextCursor,omitempty"`
}

func FromBookingListPage(p *queries.BookingListPage) BookingListResponse {
	items := p.Items
	if items == nil {
		items = []*queries.BookingView{}
	}
	return BookingListResponse{Bookings: items, NextCursor: p.NextCursor}
}
