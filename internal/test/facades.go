package test

import (
	"context"
	"sync"

	"github.com/polkiloo/orderservice/internal/domain/model"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn func(context.Context, model.Order) (*model.Order, error)
	DrainFn  func(context.Context) (int, error)
	GetFn    func(context.Context, int64) (*model.Order, error)
}

// Create delegates to provided function or echoes the order with ID 1.
func (s OrderFacadeStub) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	order.ID = 1
	return &order, nil
}

// Drain delegates to provided function or reports no messages.
func (s OrderFacadeStub) Drain(ctx context.Context) (int, error) {
	if s.DrainFn != nil {
		return s.DrainFn(ctx)
	}
	return 0, nil
}

// Get delegates to provided function or returns a stored-looking order.
func (s OrderFacadeStub) Get(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return &model.Order{ID: id, Product: "widget", Quantity: 1, Amount: 1}, nil
}

// DrainerStub counts background drain invocations.
type DrainerStub struct {
	Fetched int
	Err     error

	mu    sync.Mutex
	calls int
}

// Drain records the call and returns the configured result.
func (s *DrainerStub) Drain(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.Fetched, s.Err
}

// Calls reports how many times Drain ran.
func (s *DrainerStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// HealthCheckerStub returns a configured health result.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns Err.
func (s HealthCheckerStub) HealthCheck(ctx context.Context) error {
	return s.Err
}
