package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderservice/internal/adapter"
	"github.com/polkiloo/orderservice/internal/app"
	"github.com/polkiloo/orderservice/internal/config"
	"github.com/polkiloo/orderservice/internal/logger"
	"github.com/polkiloo/orderservice/internal/metrics"
	"github.com/polkiloo/orderservice/internal/server/http/router"
	"github.com/polkiloo/orderservice/internal/storage"
	"github.com/polkiloo/orderservice/internal/telemetry"
	"github.com/polkiloo/orderservice/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		telemetry.Module,
		storage.Module,
		adapter.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
