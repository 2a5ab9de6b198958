package components

import (
	"hotel-booking/internal/handler"
	"hotel-booking/internal/handler/api"
	"hotel-booking/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewPaymentHandler,
		api.NewBookingHandler,
		api.NewInventoryHandler,
		api.NewGuestHandler,
		NewHandlers,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	auth *api.AuthHandler,
	payment *api.PaymentHandler,
	booking *api.BookingHandler,
	inventory *api.InventoryHandler,
	guest *api.GuestHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:      auth,
		Payment:   payment,
		Booking:   booking,
		Inventory: inventory,
		Guest:     guest,
	}
}
