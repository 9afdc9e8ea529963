package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/messaging"
	"github.com/polkiloo/orderservice/internal/domain/model"
	"github.com/polkiloo/orderservice/internal/domain/repository"
	"github.com/polkiloo/orderservice/internal/metrics"
)

var tracer = otel.Tracer("github.com/polkiloo/orderservice/internal/usecase")

// OrderOptions carries destination and receive settings for OrderUseCase.
type OrderOptions struct {
	EventBus string
	Receive  messaging.ReceiveOptions
}

// OrderDeps lists collaborators required by OrderUseCase.
type OrderDeps struct {
	Orders    repository.OrderRepository
	Notifier  messaging.NotificationSink
	Events    messaging.EventSink
	Queue     messaging.InboundQueue
	Processor *OrderProcessor
	Metrics   *metrics.Registry
	Logger    *slog.Logger
}

// DrainReport summarizes a single drain call.
type DrainReport struct {
	Fetched   int
	Processed int
	Failed    int
}

// OrderUseCase encapsulates order intake and queue draining.
type OrderUseCase struct {
	orders    repository.OrderRepository
	notifier  messaging.NotificationSink
	events    messaging.EventSink
	queue     messaging.InboundQueue
	processor *OrderProcessor
	metrics   *metrics.Registry
	logger    *slog.Logger
	opts      OrderOptions
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(deps OrderDeps, opts OrderOptions) *OrderUseCase {
	return &OrderUseCase{
		orders:    deps.Orders,
		notifier:  deps.Notifier,
		events:    deps.Events,
		queue:     deps.Queue,
		processor: deps.Processor,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		opts:      opts,
	}
}

// Create persists the order, then publishes it to the notification topic and
// emits an OrderCreated event. The store write is never rolled back: when a
// delivery step fails the order stays persisted and the error is returned.
func (u *OrderUseCase) Create(ctx context.Context, input model.Order) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderUseCase.Create")
	defer span.End()

	if err := ValidateOrder(input); err != nil {
		return nil, err
	}

	order := model.Order{Product: input.Product, Quantity: input.Quantity, Amount: input.Amount}
	saved, err := u.orders.Create(ctx, order)
	if err != nil {
		u.metrics.CreateFailedAt("store")
		return nil, fmt.Errorf("store order: %w", err)
	}
	order.ID = saved.ID
	span.SetAttributes(attribute.Int64("order.id", order.ID))

	payload, err := EncodeOrder(order)
	if err != nil {
		u.metrics.CreateFailedAt("serialize")
		u.logger.Error("serialize order failed", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return &order, err
	}

	if err := u.notifier.Publish(ctx, payload); err != nil {
		u.metrics.CreateFailedAt("notify")
		u.logger.Error("publish order notification failed", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return &order, fmt.Errorf("%w: %w", domainErrors.ErrNotificationFailed, err)
	}

	event := model.Event{
		Source:     model.EventSourceOrderService,
		DetailType: model.EventTypeOrderCreated,
		Detail:     payload,
		EventBus:   u.opts.EventBus,
	}
	if err := u.events.Emit(ctx, event); err != nil {
		u.metrics.CreateFailedAt("emit")
		u.logger.Error("emit order event failed", slog.Int64("order_id", order.ID), slog.String("error", err.Error()))
		return &order, fmt.Errorf("%w: %w", domainErrors.ErrEventFailed, err)
	}

	u.metrics.OrdersCreated.Inc()
	u.logger.Info("order created", slog.Int64("order_id", order.ID), slog.String("product", order.Product))
	return &order, nil
}

// Get returns stored order by identifier.
func (u *OrderUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// Drain receives one batch from the inbound queue and processes every message
// independently. Messages that fail are left unacknowledged for redelivery.
func (u *OrderUseCase) Drain(ctx context.Context) (DrainReport, error) {
	ctx, span := tracer.Start(ctx, "OrderUseCase.Drain")
	defer span.End()

	start := time.Now()
	defer func() { u.metrics.DrainDuration.Observe(time.Since(start).Seconds()) }()

	messages, err := u.queue.Receive(ctx, u.opts.Receive)
	if err != nil {
		return DrainReport{}, fmt.Errorf("receive messages: %w", err)
	}

	report := DrainReport{Fetched: len(messages)}
	u.metrics.MessagesReceived.Add(float64(len(messages)))

	for _, msg := range messages {
		if err := u.handleMessage(ctx, msg); err != nil {
			report.Failed++
			u.metrics.MessagesFailed.Inc()
			u.logger.Error("queue message not processed",
				slog.String("message_id", msg.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		report.Processed++
		u.metrics.MessagesProcessed.Inc()
	}

	span.SetAttributes(
		attribute.Int("drain.fetched", report.Fetched),
		attribute.Int("drain.failed", report.Failed),
	)
	if report.Fetched > 0 {
		u.logger.Info("drained queue",
			slog.Int("fetched", report.Fetched),
			slog.Int("processed", report.Processed),
			slog.Int("failed", report.Failed),
		)
	}
	return report, nil
}

func (u *OrderUseCase) handleMessage(ctx context.Context, msg messaging.Message) error {
	payload, err := messaging.UnwrapNotification(msg.Body)
	if err != nil {
		return err
	}
	order, err := DecodeOrder(payload)
	if err != nil {
		return err
	}
	if _, err := u.processor.Process(ctx, order); err != nil {
		return err
	}
	if err := u.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
