// Package adapter selects the messaging implementation named by MESSAGING_DRIVER.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	awsbus "github.com/polkiloo/orderservice/internal/adapter/aws"
	kafkabus "github.com/polkiloo/orderservice/internal/adapter/kafka"
	memorybus "github.com/polkiloo/orderservice/internal/adapter/memory"
	redisqueue "github.com/polkiloo/orderservice/internal/adapter/redis"
	"github.com/polkiloo/orderservice/internal/config"
	"github.com/polkiloo/orderservice/internal/domain/messaging"
	"github.com/polkiloo/orderservice/internal/relay"
)

// Module provides the notification sink, event sink and inbound queue.
var Module = fx.Provide(newMessaging)

type params struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

type ports struct {
	fx.Out

	Notifier messaging.NotificationSink
	Events   messaging.EventSink
	Queue    messaging.InboundQueue
}

func newMessaging(p params) (ports, error) {
	switch p.Config.MessagingDriver {
	case config.MessagingDriverMemory:
		return newMemory(p), nil
	case config.MessagingDriverKafka:
		return newKafka(p), nil
	case config.MessagingDriverAWS:
		adapters, err := awsbus.New(p.Ctx, p.Config, p.Logger)
		if err != nil {
			return ports{}, err
		}
		return ports{Notifier: adapters.Notifier, Events: adapters.Events, Queue: adapters.Queue}, nil
	default:
		return ports{}, fmt.Errorf("unknown messaging driver %q", p.Config.MessagingDriver)
	}
}

func newMemory(p params) ports {
	p.Logger.Info("using in-memory messaging", slog.String("topic", p.Config.NotificationTopic))
	broker := memorybus.NewBroker(p.Config.NotificationTopic)
	queue := memorybus.NewQueue(p.Config.VisibilityTimeout)
	broker.Subscribe(queue)
	return ports{Notifier: broker, Events: memorybus.NewEventLog(), Queue: queue}
}

func newKafka(p params) ports {
	cfg := p.Config
	brokers := cfg.Brokers()

	notifier := kafkabus.NewNotifier(kafkabus.NewWriter(brokers, cfg.NotificationTopic))
	events := kafkabus.NewEventSink(kafkabus.NewWriter(brokers, cfg.EventTopic))

	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	queue := redisqueue.NewQueue(rdb, cfg.QueueStream, cfg.QueueGroup, consumerName(), cfg.VisibilityTimeout, p.Logger)
	forwarder := relay.New(relay.NewReader(brokers, cfg.NotificationTopic, cfg.QueueGroup), queue, cfg.NotificationTopic, p.Logger)

	p.Logger.Info("using kafka messaging",
		slog.Any("brokers", brokers),
		slog.String("notification_topic", cfg.NotificationTopic),
		slog.String("event_topic", cfg.EventTopic),
		slog.String("redis_addr", cfg.RedisAddr),
		slog.String("queue_stream", cfg.QueueStream),
	)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := queue.EnsureGroup(ctx); err != nil {
				return err
			}
			forwarder.Start(p.Ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return errors.Join(
				forwarder.Stop(),
				notifier.Close(),
				events.Close(),
				rdb.Close(),
			)
		},
	})

	return ports{Notifier: notifier, Events: events, Queue: queue}
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "orderservice"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
