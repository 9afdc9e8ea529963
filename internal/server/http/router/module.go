package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderservice/internal/app"
	"github.com/polkiloo/orderservice/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Options(
	fx.Provide(func(f *app.OrderFacade) handlers.OrderFacade { return f }),
	fx.Provide(Setup),
)
