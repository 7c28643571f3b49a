package model

// OrderStatus is the provider's order state after create or capture.
// Only StatusCompleted means funds were captured; every other value is a
// non-error "incomplete" result that callers must branch on.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusApproved  OrderStatus = "APPROVED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusDeclined  OrderStatus = "DECLINED"
	StatusPending   OrderStatus = "PENDING"
	StatusVoided    OrderStatus = "VOIDED"
)

func (s OrderStatus) Completed() bool { return s == StatusCompleted }

// Link is a provider HATEOAS link (approval URL etc).
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// Order is the subset of the provider's order object the service consumes.
type Order struct {
	ID     string      `json:"id"`
	Status OrderStatus `json:"status"`
	Links  []Link      `json:"links"`
}

// ApprovalLink returns the buyer-approval URL, empty if the provider sent none.
func (o Order) ApprovalLink() string {
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			return l.Href
		}
	}
	return ""
}

// CaptureResult is the outcome of an order capture call.
type CaptureResult struct {
	ID     string      `json:"id"`
	Status OrderStatus `json:"status"`
}
