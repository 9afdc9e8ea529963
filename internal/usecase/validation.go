package usecase

import (
	"fmt"
	"math"
	"strings"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/model"
)

// ValidateOrder checks client supplied order fields before persistence.
func ValidateOrder(order model.Order) error {
	if strings.TrimSpace(order.Product) == "" {
		return fmt.Errorf("%w: product is required", domainErrors.ErrInvalidOrder)
	}
	if order.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domainErrors.ErrInvalidOrder)
	}
	if order.Amount < 0 || math.IsNaN(order.Amount) || math.IsInf(order.Amount, 0) {
		return fmt.Errorf("%w: amount must be a non-negative number", domainErrors.ErrInvalidOrder)
	}
	return nil
}
