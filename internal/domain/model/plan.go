package model

import "encoding/json"

// PlanSpec is the input for creating a billing plan. Product creation is the
// provider's prerequisite and happens inside the gateway, synchronously,
// before the plan call.
type PlanSpec struct {
	Name          string
	Description   string
	Amount        string // decimal string, provider-side validation
	Currency      string
	Interval      string // DAY | WEEK | MONTH | YEAR
	IntervalCount int
}

// Plan is the subset of the provider's plan object the service returns.
type Plan struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status,omitempty"`
	Raw         json.RawMessage `json:"-"`
}
