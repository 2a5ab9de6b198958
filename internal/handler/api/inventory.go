package api

import (
	"net/http"

	reqdto "hotel-booking/internal/handler/dto/request"
	resdto "hotel-booking/internal/handler/dto/response"
	"hotel-booking/internal/handler/httperr"
	"hotel-booking/internal/pkg/errs"
	"hotel-booking/internal/usecase/commands"
	"hotel-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	cmds commands.InventoryCommands
	q    queries.InventoryQueries
}

func NewInventoryHandler(cmds commands.InventoryCommands, q queries.InventoryQueries) *InventoryHandler {
	return &InventoryHandler{cmds: cmds, q: q}
}

// @Summary Room availability
// @Tags inventory
// @Produce json
// @Success 200 {object} resdto.InventoryResponse
// @Router /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	rows, err := h.q.List(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	if rows == nil {
		rows = []*queries.InventoryView{}
	}
	c.JSON(http.StatusOK, resdto.InventoryResponse{Inventory: rows})
}

// @Summary Adjust availability
// @Description Set the number of available rooms of one type
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomType path string true "Room type"
// @Param request body reqdto.UpdateInventoryRequest true "New count"
// @Success 200 {object} queries.InventoryView
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /inventory/{roomType} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	var req reqdto.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	roomType := c.Param("roomType")
	if err := h.cmds.SetAvailable(c.Request.Context(), roomType, *req.Available); err != nil {
		switch {
		case errs.Is(err, commands.ErrUnknownRoomType):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Unknown room type", nil)
		case errs.Is(err, commands.ErrInvalidInventory):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid inventory count", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}
	view, err := h.q.Get(c.Request.Context(), roomType)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load inventory", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}
