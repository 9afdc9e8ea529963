package app

import (
	"context"

	"github.com/polkiloo/orderservice/internal/domain/model"
	"github.com/polkiloo/orderservice/internal/usecase"
)

// OrderFacade is the single entry point used by transport and background workers.
type OrderFacade struct {
	orders *usecase.OrderUseCase
}

func NewOrderFacade(orders *usecase.OrderUseCase) *OrderFacade {
	return &OrderFacade{orders: orders}
}

func (f *OrderFacade) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	return f.orders.Create(ctx, order)
}

// Drain processes one batch from the inbound queue and returns how many messages were fetched.
func (f *OrderFacade) Drain(ctx context.Context) (int, error) {
	report, err := f.orders.Drain(ctx)
	if err != nil {
		return 0, err
	}
	return report.Fetched, nil
}

func (f *OrderFacade) Get(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, id)
}
