package telemetry

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/polkiloo/orderservice/internal/config"
)

// Module wires the tracer provider and flushes it on shutdown.
var Module = fx.Options(
	fx.Provide(newProvider),
	fx.Invoke(registerLifecycle),
)

type providerParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newProvider(p providerParams) (*sdktrace.TracerProvider, error) {
	return NewTracerProvider(p.Ctx, p.Config.OTelEndpoint, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, provider *sdktrace.TracerProvider) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})
}
