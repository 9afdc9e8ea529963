package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "order-service"

// NewTracerProvider installs a global tracer provider. Spans are exported over
// OTLP/HTTP only when endpoint is set.
func NewTracerProvider(ctx context.Context, endpoint string, logger *slog.Logger) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if endpoint != "" {
		target, err := parseEndpoint(endpoint)
		if err != nil {
			return nil, err
		}
		exporter, err := otlptracehttp.New(ctx, target.options()...)
		if err != nil {
			return nil, fmt.Errorf("otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		logger.Info("trace export enabled", slog.String("endpoint", endpoint))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return provider, nil
}

type exportTarget struct {
	host     string
	urlPath  string
	insecure bool
}

func (t exportTarget) options() []otlptracehttp.Option {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(t.host)}
	if t.urlPath != "" {
		opts = append(opts, otlptracehttp.WithURLPath(t.urlPath))
	}
	if t.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// parseEndpoint accepts either a collector base URL, as OTEL_EXPORTER_OTLP_ENDPOINT
// carries it, or a bare host:port which is dialed over plain HTTP.
func parseEndpoint(endpoint string) (exportTarget, error) {
	if !strings.Contains(endpoint, "://") {
		return exportTarget{host: endpoint, insecure: true}, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return exportTarget{}, fmt.Errorf("otlp endpoint: %w", err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return exportTarget{}, fmt.Errorf("otlp endpoint: unsupported %q", endpoint)
	}
	return exportTarget{
		host:     u.Host,
		urlPath:  path.Join("/", u.Path, "v1/traces"),
		insecure: u.Scheme == "http",
	}, nil
}
