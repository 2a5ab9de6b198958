package api

import (
	"net/http"
	"strconv"

	"hotel-booking/internal/domain/guest"
	resdto "hotel-booking/internal/handler/dto/response"
	"hotel-booking/internal/handler/httperr"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type GuestHandler struct {
	q queries.GuestQueries
}

func NewGuestHandler(q queries.GuestQueries) *GuestHandler {
	return &GuestHandler{q: q}
}

// @Summary List guests
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max items (default 50)"
// @Success 200 {object} resdto.GuestListResponse
// @Router /guests [get]
func (h *GuestHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = iv
		}
	}
	guests, err := h.q.List(c.Request.Context(), limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	if guests == nil {
		guests = []*queries.GuestView{}
	}
	c.JSON(http.StatusOK, resdto.GuestListResponse{Guests: guests})
}

// @Summary Get guest
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param email path string true "Guest email (case-insensitive)"
// @Success 200 {object} queries.GuestView
// @Failure 404 {object} httperr.Response
// @Router /guests/{email} [get]
func (h *GuestHandler) Get(c *gin.Context) {
	view, err := h.q.Get(c.Request.Context(), c.Param("email"))
	if err != nil {
		switch {
		case errs.Is(err, queries.ErrGuestNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Guest not found", nil)
		case errs.Is(err, guest.ErrInvalidEmail):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid guest email", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}
	c.JSON(http.StatusOK, view)
}
