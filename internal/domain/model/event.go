package model

const (
	EventSourceOrderService = "order.service"
	EventTypeOrderCreated   = "OrderCreated"
)

// Event is a structured domain event delivered to an event bus.
type Event struct {
	Source     string
	DetailType string
	Detail     string
	EventBus   string
}
