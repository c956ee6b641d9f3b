package components

import (
	"stock-hold-service/internal/handler"
	"stock-hold-service/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewProductHandler,
		api.NewHoldHandler,
		api.NewOrderHandler,
		api.NewPaymentHandler,
		func(p *api.ProductHandler, h *api.HoldHandler, o *api.OrderHandler, pay *api.PaymentHandler) handler.Handlers {
			return handler.Handlers{Product: p, Hold: h, Order: o, Payment: pay}
		},
	),
	fx.Invoke(handler.NewRouter),
)
