package model

// Order describes a purchase accepted by the intake endpoint.
type Order struct {
	ID        int64   `json:"id"`
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	Amount    float64 `json:"amount"`
	Total     float64 `json:"total"`
	Processed bool    `json:"processed"`
}

// ComputeTotal returns amount multiplied by quantity.
func (o Order) ComputeTotal() float64 {
	return o.Amount * float64(o.Quantity)
}
