// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/model"
)

// Storage keeps orders in a map keyed by sequential identifiers.
type Storage struct {
	mu     sync.RWMutex
	orders map[int64]model.Order
	nextID int64
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{orders: make(map[int64]model.Order), nextID: 1}
}

// Create assigns the next identifier and stores a copy of order.
func (s *Storage) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = s.nextID
	s.nextID++
	s.orders[order.ID] = order
	return &order, nil
}

// GetByID returns a copy of the stored order.
func (s *Storage) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &order, nil
}

// Update replaces an existing order.
func (s *Storage) Update(ctx context.Context, order model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	s.orders[order.ID] = order
	return nil
}

// HealthCheck always succeeds.
func (s *Storage) HealthCheck(context.Context) error {
	return nil
}
