package api

import (
	"net/http"

	reqdto "hotel-booking/internal/handler/dto/request"
	resdto "hotel-booking/internal/handler/dto/response"
	"hotel-booking/internal/handler/httperr"
	"hotel-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	cmds commands.BookingCommands
}

func NewPaymentHandler(cmds commands.BookingCommands) *PaymentHandler {
	return &PaymentHandler{cmds: cmds}
}

// @Summary Create payment order
// @Description Reserve a room and open a gateway order for it
// @Tags payment
// @Accept json
// @Produce json
// @Param request body reqdto.CreateOrderRequest true "Order request"
// @Success 201 {object} resdto.CreateOrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /payment/create-order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req reqdto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	result, err := h.cmds.CreateOrder(c.Request.Context(), req)
	if err != nil {
		abortWithMapped(c, err, bookingErrors)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCreateOrderResult(result))
}

// @Summary Verify payment
// @Description Verify the gateway callback signature and confirm the booking
// @Tags payment
// @Accept json
// @Produce json
// @Param request body reqdto.VerifyPaymentRequest true "Gateway callback"
// @Success 200 {object} resdto.VerifyPaymentResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /payment/verify-payment [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req reqdto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	result, err := h.cmds.VerifyPayment(c.Request.Context(), req)
	if err != nil {
		abortWithMapped(c, err, bookingErrors)
		return
	}
	c.JSON(http.StatusOK, resdto.FromVerificationResult(result))
}
