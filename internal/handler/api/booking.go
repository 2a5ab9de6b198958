package api

import (
	"net/http"
	"strconv"

	reqdto "hotel-booking/internal/handler/dto/request"
	resdto "hotel-booking/internal/handler/dto/response"
	"hotel-booking/internal/handler/httperr"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Cancel booking
// @Description Cancel a booking by UUID or booking id. Cancelling twice is a no-op.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking UUID or booking id"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} httperr.Response
// @Router /bookings/cancel-booking/{id} [put]
func (h *BookingHandler) Cancel(c *gin.Context) {
	view, err := h.cmds.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithMapped(c, err, bookingErrors)
		return
	}
	c.JSON(http.StatusOK, resdto.BookingResponse{Booking: view})
}

// @Summary Create booking directly
// @Description Record an offline booking without the payment gateway
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.DirectBookingRequest true "Booking"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) DirectCreate(c *gin.Context) {
	var req reqdto.DirectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	view, err := h.cmds.DirectCreate(c.Request.Context(), req)
	if err != nil {
		abortWithMapped(c, err, bookingErrors)
		return
	}
	c.JSON(http.StatusCreated, resdto.BookingResponse{Booking: view})
}

// @Summary List bookings
// @Description List bookings, newest first, with keyset pagination
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, confirmed or cancelled"
// @Param roomType query string false "Room type"
// @Param limit query int false "Max items (default 50)"
// @Param after query string false "Cursor from a previous page"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := queries.BookingFilter{
		Status:   c.Query("status"),
		RoomType: c.Query("roomType"),
		After:    c.Query("after"),
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid limit", nil)
			return
		}
		filter.Limit = limit
	}
	page, err := h.q.List(c.Request.Context(), filter)
	if err != nil {
		abortWithMapped(c, err, listErrors)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingListPage(page))
}

var listErrors = []errorMapping{
	{queries.ErrInvalidFilter, http.StatusBadRequest, "Invalid filter"},
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking UUID or booking id"
// @Success 200 {object} resdto.BookingResponse
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	view, err := h.q.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithMapped(c, err, bookingErrors)
		return
	}
	c.JSON(http.StatusOK, resdto.BookingResponse{Booking: view})
}

// @Summary List bookings of a guest
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param email path string true "Guest email (case-insensitive)"
// @Success 200 {object} resdto.BookingListResponse
// @Router /bookings/guest/{email} [get]
func (h *BookingHandler) ListByGuest(c *gin.Context) {
	views, err := h.q.ListByGuestEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		abortWithMapped(c, err, listErrors)
		return
	}
	if views == nil {
		views = []*queries.BookingView{}
	}
	c.JSON(http.StatusOK, resdto.BookingListResponse{Bookings: views})
}

// @Summary Booking statistics
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} queries.BookingStatsView
// @Router /stats [get]
func (h *BookingHandler) Stats(c *gin.Context) {
	stats, err := h.q.Stats(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}
