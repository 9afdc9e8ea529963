package handlers

import (
	"context"

	"github.com/polkiloo/orderservice/internal/domain/model"
)

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	Create(ctx context.Context, order model.Order) (*model.Order, error)
	Drain(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (*model.Order, error)
}
