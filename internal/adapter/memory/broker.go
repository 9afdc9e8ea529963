// Package memory provides in-process messaging used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/messaging"
	"github.com/polkiloo/orderservice/internal/domain/model"
)

const defaultVisibilityTimeout = 30 * time.Second

// Broker is a topic that fans published payloads out to subscribed queues,
// wrapping each one in a notification envelope.
type Broker struct {
	topic string

	mu     sync.RWMutex
	queues []*Queue
}

// NewBroker creates a topic with the given name.
func NewBroker(topic string) *Broker {
	return &Broker{topic: topic}
}

// Subscribe attaches q to the topic.
func (b *Broker) Subscribe(q *Queue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queues = append(b.queues, q)
}

// Publish delivers payload to every subscribed queue.
func (b *Broker) Publish(ctx context.Context, payload string) error {
	body, err := messaging.WrapNotification(b.topic, payload)
	if err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, q := range b.queues {
		q.Enqueue(body)
	}
	return nil
}

type entry struct {
	id         string
	body       string
	receipt    string
	visibleAt  time.Time
	deliveries int
}

// Queue is an at-least-once queue with receipt handles and a visibility timeout.
type Queue struct {
	visibility time.Duration
	now        func() time.Time

	mu       sync.Mutex
	entries  []*entry
	receipts map[string]*entry
	signal   chan struct{}
}

// NewQueue creates a queue hiding received messages for visibility.
func NewQueue(visibility time.Duration) *Queue {
	if visibility <= 0 {
		visibility = defaultVisibilityTimeout
	}
	return &Queue{
		visibility: visibility,
		now:        time.Now,
		receipts:   make(map[string]*entry),
		signal:     make(chan struct{}),
	}
}

// Enqueue appends body and wakes up waiting receivers.
func (q *Queue) Enqueue(body string) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := &entry{id: uuid.NewString(), body: body}
	q.entries = append(q.entries, e)
	close(q.signal)
	q.signal = make(chan struct{})
	return e.id
}

// Receive returns up to opts.MaxMessages visible messages, waiting up to
// opts.WaitTime for at least one to arrive.
func (q *Queue) Receive(ctx context.Context, opts messaging.ReceiveOptions) ([]messaging.Message, error) {
	limit := opts.MaxMessages
	if limit <= 0 {
		limit = 1
	}
	deadline := q.now().Add(opts.WaitTime)

	for {
		q.mu.Lock()
		msgs, nextVisible := q.collect(limit)
		signal := q.signal
		q.mu.Unlock()

		if len(msgs) > 0 {
			return msgs, nil
		}
		now := q.now()
		wait := deadline.Sub(now)
		if wait <= 0 {
			return nil, nil
		}
		if !nextVisible.IsZero() && nextVisible.Sub(now) < wait {
			wait = nextVisible.Sub(now)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-signal:
		case <-timer.C:
		}
		timer.Stop()
	}
}

// collect must be called with q.mu held.
func (q *Queue) collect(limit int) ([]messaging.Message, time.Time) {
	now := q.now()
	var (
		msgs        []messaging.Message
		nextVisible time.Time
	)
	for _, e := range q.entries {
		if e.visibleAt.After(now) {
			if nextVisible.IsZero() || e.visibleAt.Before(nextVisible) {
				nextVisible = e.visibleAt
			}
			continue
		}
		if len(msgs) == limit {
			continue
		}
		if e.receipt != "" {
			delete(q.receipts, e.receipt)
		}
		e.receipt = uuid.NewString()
		e.visibleAt = now.Add(q.visibility)
		e.deliveries++
		q.receipts[e.receipt] = e
		msgs = append(msgs, messaging.Message{ID: e.id, Body: e.body, ReceiptHandle: e.receipt})
	}
	return msgs, nextVisible
}

// Delete acknowledges the message received with receiptHandle.
func (q *Queue) Delete(ctx context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.receipts[receiptHandle]
	if !ok {
		return fmt.Errorf("receipt %q: %w", receiptHandle, domainErrors.ErrNotFound)
	}
	delete(q.receipts, receiptHandle)
	for i, candidate := range q.entries {
		if candidate == e {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports messages not yet deleted, including in-flight ones.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// EventLog records emitted events in order.
type EventLog struct {
	mu     sync.Mutex
	events []model.Event
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Emit appends event to the log.
func (l *EventLog) Emit(ctx context.Context, event model.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a snapshot of recorded events.
func (l *EventLog) Events() []model.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Event, len(l.events))
	copy(out, l.events)
	return out
}
