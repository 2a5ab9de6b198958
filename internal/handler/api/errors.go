package api

import (
	"net/http"

	"hotel-booking/internal/handler/httperr"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

// bookingErrors is checked in order; the first match wins.
var bookingErrors = []errorMapping{
	{commands.ErrUnknownRoomType, http.StatusBadRequest, "Unknown room type"},
	{commands.ErrInvalidBooking, http.StatusBadRequest, "Invalid booking data"},
	{commands.ErrOrderMismatch, http.StatusBadRequest, "Order does not belong to booking"},
	{commands.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
	{queries.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
	{commands.ErrRoomUnavailable, http.StatusConflict, "Room not available"},
	{commands.ErrNoRoomsAvailable, http.StatusConflict, "No rooms available"},
	{commands.ErrDuplicateBookingID, http.StatusConflict, "Booking id already exists"},
	{commands.ErrPaymentInProgress, http.StatusConflict, "Payment verification already in progress"},
	{commands.ErrBookingCancelled, http.StatusConflict, "Booking was cancelled"},
	{commands.ErrGatewayUnavailable, http.StatusBadGateway, "Payment gateway unavailable"},
	{commands.ErrStoreUnavailable, http.StatusServiceUnavailable, "Service temporarily unavailable"},
}

func abortWithMapped(c *gin.Context, err error, mappings []errorMapping) {
	for _, m := range mappings {
		if errs.Is(err, m.target) {
			httperr.AbortWithError(c, m.status, err, m.message, nil)
			return
		}
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
}
