package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"

	"github.com/polkiloo/orderservice/internal/domain/repository"
	"github.com/polkiloo/orderservice/internal/metrics"
	"github.com/polkiloo/orderservice/internal/server/http/handlers"
	"github.com/polkiloo/orderservice/internal/server/http/middleware"
)

const serviceName = "order-service"

// Params groups router dependencies.
type Params struct {
	fx.In

	Facade  handlers.OrderFacade
	Health  repository.HealthChecker
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(serviceName))
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(p.Facade, p.Logger)
	healthHandler := handlers.NewHealthHandler(p.Health, p.Logger)

	orders := engine.Group("/orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.Drain)
	orders.GET("/:id", orderHandler.Get)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	return engine
}
