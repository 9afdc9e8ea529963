package usecase

import (
	"encoding/json"
	"fmt"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/model"
)

// EncodeOrder renders the canonical JSON form published for an order.
func EncodeOrder(order model.Order) (string, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrSerialization, err)
	}
	return string(data), nil
}

// DecodeOrder parses an order payload received from the queue.
func DecodeOrder(payload string) (model.Order, error) {
	var order model.Order
	if err := json.Unmarshal([]byte(payload), &order); err != nil {
		return model.Order{}, fmt.Errorf("%w: %v", domainErrors.ErrSerialization, err)
	}
	return order, nil
}
