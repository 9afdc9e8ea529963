// Package messaging declares the broker capabilities the order service depends on.
package messaging

import (
	"context"
	"time"

	"github.com/polkiloo/orderservice/internal/domain/model"
)

// Message is a single delivery received from an InboundQueue.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// ReceiveOptions bounds a single receive call.
type ReceiveOptions struct {
	MaxMessages int
	WaitTime    time.Duration
}

// NotificationSink publishes serialized orders to a broadcast topic.
type NotificationSink interface {
	Publish(ctx context.Context, payload string) error
}

// EventSink emits structured domain events to an event bus.
type EventSink interface {
	Emit(ctx context.Context, event model.Event) error
}

// InboundQueue delivers messages at least once. A message must be deleted
// with its receipt handle once handled, otherwise it is redelivered.
type InboundQueue interface {
	Receive(ctx context.Context, opts ReceiveOptions) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}
