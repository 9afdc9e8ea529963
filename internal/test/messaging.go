package test

import (
	"context"
	"sync"

	"github.com/polkiloo/orderservice/internal/domain/messaging"
	"github.com/polkiloo/orderservice/internal/domain/model"
)

// NotifierStub records published payloads.
type NotifierStub struct {
	Err error

	mu       sync.Mutex
	Payloads []string
}

// Publish records payload or returns configured error.
func (s *NotifierStub) Publish(ctx context.Context, payload string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Payloads = append(s.Payloads, payload)
	return nil
}

// EventSinkStub records emitted events.
type EventSinkStub struct {
	Err error

	mu     sync.Mutex
	Events []model.Event
}

// Emit records event or returns configured error.
func (s *EventSinkStub) Emit(ctx context.Context, event model.Event) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return nil
}

// QueueStub serves scripted batches and records deletions.
type QueueStub struct {
	Batches    [][]messaging.Message
	ReceiveErr error
	DeleteErr  error

	mu      sync.Mutex
	Options []messaging.ReceiveOptions
	Deleted []string
}

// Receive pops the next scripted batch.
func (s *QueueStub) Receive(ctx context.Context, opts messaging.ReceiveOptions) ([]messaging.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Options = append(s.Options, opts)
	if s.ReceiveErr != nil {
		return nil, s.ReceiveErr
	}
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	return batch, nil
}

// Delete records receipt handle or returns configured error.
func (s *QueueStub) Delete(ctx context.Context, receiptHandle string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, receiptHandle)
	return nil
}

// DeletedHandles returns a snapshot of deleted receipt handles.
func (s *QueueStub) DeletedHandles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Deleted...)
}
