package test

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/model"
)

// OrderRepositoryStub stores orders in-memory and lets tests override behaviour.
type OrderRepositoryStub struct {
	CreateFn  func(context.Context, model.Order) (*model.Order, error)
	GetByIDFn func(context.Context, int64) (*model.Order, error)
	UpdateFn  func(context.Context, model.Order) error

	mu          sync.Mutex
	Orders      map[int64]model.Order
	Next        int64
	UpdateCalls []model.Order
}

// NewOrderRepositoryStub constructs stub repository with initialized map.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[int64]model.Order), Next: 1}
}

// Create stores order under the next identifier unless overridden.
func (s *OrderRepositoryStub) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[int64]model.Order)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	order.ID = s.Next
	s.Next++
	s.Orders[order.ID] = order
	return &order, nil
}

// GetByID returns stored order or not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &order, nil
}

// Update records invocation and replaces stored order.
func (s *OrderRepositoryStub) Update(ctx context.Context, order model.Order) error {
	s.mu.Lock()
	s.UpdateCalls = append(s.UpdateCalls, order)
	s.mu.Unlock()
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Orders[order.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	s.Orders[order.ID] = order
	return nil
}

// Updates returns number of recorded update calls.
func (s *OrderRepositoryStub) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.UpdateCalls)
}
