package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderservice/internal/config"
	"github.com/polkiloo/orderservice/internal/domain/messaging"
	"github.com/polkiloo/orderservice/internal/domain/repository"
	"github.com/polkiloo/orderservice/internal/metrics"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewOrderProcessor,
	newOrderUseCase,
)

type orderUseCaseParams struct {
	fx.In

	Config    *config.Config
	Orders    repository.OrderRepository
	Notifier  messaging.NotificationSink
	Events    messaging.EventSink
	Queue     messaging.InboundQueue
	Processor *OrderProcessor
	Metrics   *metrics.Registry
	Logger    *slog.Logger
}

func newOrderUseCase(p orderUseCaseParams) *OrderUseCase {
	return NewOrderUseCase(OrderDeps{
		Orders:    p.Orders,
		Notifier:  p.Notifier,
		Events:    p.Events,
		Queue:     p.Queue,
		Processor: p.Processor,
		Metrics:   p.Metrics,
		Logger:    p.Logger,
	}, OrderOptions{
		EventBus: p.Config.EventBusName,
		Receive: messaging.ReceiveOptions{
			MaxMessages: p.Config.ReceiveMaxMessages,
			WaitTime:    p.Config.ReceiveWait,
		},
	})
}
