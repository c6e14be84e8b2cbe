package components

import (
	"tourbook/internal/handler"
	"tourbook/internal/handler/api"
	"tourbook/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewPaymentHandler,
		api.NewWebhookHandler,
		api.NewAvailabilityHandler,
		middleware.NewAuthMiddleware,
		func(
			booking *api.BookingHandler,
			payment *api.PaymentHandler,
			webhook *api.WebhookHandler,
			availability *api.AvailabilityHandler,
		) handler.Handlers {
			return handler.Handlers{
				Booking:      booking,
				Payment:      payment,
				Webhook:      webhook,
				Availability: availability,
			}
		},
	),
	fx.Invoke(handler.NewRouter),
)
