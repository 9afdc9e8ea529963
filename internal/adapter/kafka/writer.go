// Package kafka publishes order notifications and events to Kafka topics.
package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/orderservice/internal/domain/model"
)

const (
	HeaderSource     = "source"
	HeaderDetailType = "detail-type"
	HeaderEventBus   = "event-bus"
	HeaderTime       = "time"
)

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter creates a synchronous writer that waits for all replicas.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}
}

// Notifier publishes raw order payloads to the notification topic.
type Notifier struct {
	writer kafkaMessageWriter
}

// NewNotifier wraps w as a notification sink.
func NewNotifier(w kafkaMessageWriter) *Notifier {
	return &Notifier{writer: w}
}

// Publish writes payload as a single message value.
func (n *Notifier) Publish(ctx context.Context, payload string) error {
	if err := n.writer.WriteMessages(ctx, kafka.Message{Value: []byte(payload)}); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (n *Notifier) Close() error {
	return n.writer.Close()
}

// EventSink writes domain events to the event topic. Event metadata travels in headers
// and the detail is the message value.
type EventSink struct {
	writer kafkaMessageWriter
	now    func() time.Time
}

// NewEventSink wraps w as an event sink.
func NewEventSink(w kafkaMessageWriter) *EventSink {
	return &EventSink{writer: w, now: time.Now}
}

// Emit writes event keyed by its detail type.
func (s *EventSink) Emit(ctx context.Context, event model.Event) error {
	msg := kafka.Message{
		Key:   []byte(event.DetailType),
		Value: []byte(event.Detail),
		Headers: []kafka.Header{
			{Key: HeaderSource, Value: []byte(event.Source)},
			{Key: HeaderDetailType, Value: []byte(event.DetailType)},
			{Key: HeaderEventBus, Value: []byte(event.EventBus)},
			{Key: HeaderTime, Value: []byte(strconv.FormatInt(s.now().UnixMilli(), 10))},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka emit: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (s *EventSink) Close() error {
	return s.writer.Close()
}
