package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/model"
	"github.com/polkiloo/orderservice/internal/domain/repository"
	"github.com/polkiloo/orderservice/internal/metrics"
)

// OrderProcessor computes totals and marks stored orders processed.
// Process is idempotent so queue redeliveries are harmless.
type OrderProcessor struct {
	orders  repository.OrderRepository
	metrics *metrics.Registry
	logger  *slog.Logger
}

// NewOrderProcessor constructs OrderProcessor.
func NewOrderProcessor(orders repository.OrderRepository, m *metrics.Registry, logger *slog.Logger) *OrderProcessor {
	return &OrderProcessor{orders: orders, metrics: m, logger: logger}
}

// Process computes the total from the amount and quantity carried by order and
// reconciles it into the stored record. A missing record is not an error.
func (p *OrderProcessor) Process(ctx context.Context, order model.Order) (model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderProcessor.Process")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", order.ID))

	result := order
	result.Total = order.ComputeTotal()
	result.Processed = true

	existing, err := p.orders.GetByID(ctx, order.ID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			p.metrics.OrdersMissing.Inc()
			p.logger.Warn("processed order not found in store", slog.Int64("order_id", order.ID))
			return result, nil
		}
		return result, fmt.Errorf("load order %d: %w", order.ID, err)
	}

	if existing.Processed && existing.Total == result.Total {
		p.logger.Info("order already processed", slog.Int64("order_id", order.ID))
		return result, nil
	}

	existing.Total = result.Total
	existing.Processed = true
	if err := p.orders.Update(ctx, *existing); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			p.metrics.OrdersMissing.Inc()
			p.logger.Warn("processed order vanished before update", slog.Int64("order_id", order.ID))
			return result, nil
		}
		return result, fmt.Errorf("update order %d: %w", order.ID, err)
	}

	p.logger.Info("processed order", slog.Int64("order_id", order.ID), slog.Float64("total", result.Total))
	return result, nil
}
