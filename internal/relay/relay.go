// Package relay forwards the Kafka notification topic into the inbound Redis stream.
package relay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/orderservice/internal/domain/messaging"
)

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// kafkaReader abstracts kafka.Reader for testability.
type kafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Enqueuer appends a message body to the inbound queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, body string) (string, error)
}

// NewReader creates a consumer group reader for topic.
func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

// Relay copies every topic message into the queue wrapped in a notification
// envelope. Offsets are committed only after the queue accepted the message.
type Relay struct {
	reader kafkaReader
	queue  Enqueuer
	topic  string
	logger *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// New constructs Relay.
func New(reader kafkaReader, queue Enqueuer, topic string, logger *slog.Logger) *Relay {
	return &Relay{reader: reader, queue: queue, topic: topic, logger: logger}
}

func newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoff
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(b, ctx)
}

// Start launches the relay loop in the background. A failed loop is restarted
// with backoff until ctx is cancelled or Stop is called; uncommitted messages
// are fetched again after a restart.
func (r *Relay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := backoff.RetryNotify(
			func() error { return r.Run(runCtx) },
			newBackOff(runCtx),
			func(err error, wait time.Duration) {
				r.logger.Error("relay failed, restarting",
					slog.Duration("backoff", wait),
					slog.String("error", err.Error()),
				)
			},
		)
		if err != nil && runCtx.Err() == nil {
			r.logger.Error("relay stopped", slog.String("error", err.Error()))
		}
	}()
}

// Stop cancels the loop, waits for it and closes the reader.
func (r *Relay) Stop() error {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
	return r.reader.Close()
}

// Run relays messages until ctx is cancelled or the reader fails.
func (r *Relay) Run(ctx context.Context) error {
	for {
		msg, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := r.forward(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := r.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (r *Relay) forward(ctx context.Context, msg kafka.Message) error {
	body, err := messaging.WrapNotification(r.topic, string(msg.Value))
	if err != nil {
		return err
	}

	id, err := backoff.RetryNotifyWithData(
		func() (string, error) { return r.queue.Enqueue(ctx, body) },
		newBackOff(ctx),
		func(err error, wait time.Duration) {
			r.logger.Warn("enqueue failed, retrying",
				slog.Int64("offset", msg.Offset),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		},
	)
	if err != nil {
		return err
	}
	r.logger.Debug("relayed notification", slog.Int64("offset", msg.Offset), slog.String("entry_id", id))
	return nil
}
