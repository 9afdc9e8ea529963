package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/model"
	"github.com/polkiloo/orderservice/internal/server/http/dto"
)

const (
	orderCreatedMessage = "Order created, Message Published to SNS and Event Emitted to EventBridge"
	orderFailedMessage  = "Failed to create order"
	invalidOrderMessage = "Invalid order"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
	logger *slog.Logger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{facade: facade, logger: logger}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, invalidOrderMessage)
		return
	}

	order, err := h.facade.Create(c.Request.Context(), model.Order{
		Product:  req.Product,
		Quantity: req.Quantity,
		Amount:   req.Amount,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidOrder) {
			c.String(http.StatusBadRequest, invalidOrderMessage)
			return
		}
		h.logger.Error("create order failed", slog.String("error", err.Error()))
		c.String(http.StatusInternalServerError, orderFailedMessage)
		return
	}

	h.logger.Info("order created", slog.Int64("order_id", order.ID))
	c.String(http.StatusOK, orderCreatedMessage)
}

// Drain handles GET /orders. A failed receive is reported as an empty batch.
func (h *OrderHandler) Drain(c *gin.Context) {
	fetched, err := h.facade.Drain(c.Request.Context())
	if err != nil {
		h.logger.Error("drain failed", slog.String("error", err.Error()))
		fetched = 0
	}
	c.String(http.StatusOK, fmt.Sprintf("%d Orders have been processed", fetched))
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		h.logger.Error("get order failed", slog.Int64("order_id", id), slog.String("error", err.Error()))
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:        order.ID,
		Product:   order.Product,
		Quantity:  order.Quantity,
		Amount:    order.Amount,
		Total:     order.Total,
		Processed: order.Processed,
	}
}
