package dto

// CreateOrderRequest describes the order submission payload. Identifier, total
// and processed state are assigned by the service.
type CreateOrderRequest struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// OrderResponse represents a stored order.
type OrderResponse struct {
	ID        int64   `json:"id"`
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	Amount    float64 `json:"amount"`
	Total     float64 `json:"total"`
	Processed bool    `json:"processed"`
}
