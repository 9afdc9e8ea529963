package repository

import (
	"context"

	"github.com/polkiloo/orderservice/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	Update(ctx context.Context, order model.Order) error
}
