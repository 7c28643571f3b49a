package model

import "encoding/json"

// EventKind is the closed set of webhook event types this service understands.
// Anything else parses to EventUnknown and is acknowledged without effect.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSaleCompleted
	EventSubscriptionCreated
	EventSubscriptionCancelled
	EventSubscriptionPaymentFailed
)

const (
	tagSaleCompleted    = "PAYMENT.SALE.COMPLETED"
	tagSubCreated       = "BILLING.SUBSCRIPTION.CREATED"
	tagSubCancelled     = "BILLING.SUBSCRIPTION.CANCELLED"
	tagSubPaymentFailed = "BILLING.SUBSCRIPTION.PAYMENT.FAILED"
)

func ParseEventKind(tag string) EventKind {
	switch tag {
	case tagSaleCompleted:
		return EventSaleCompleted
	case tagSubCreated:
		return EventSubscriptionCreated
	case tagSubCancelled:
		return EventSubscriptionCancelled
	case tagSubPaymentFailed:
		return EventSubscriptionPaymentFailed
	default:
		return EventUnknown
	}
}

func (k EventKind) String() string {
	switch k {
	case EventSaleCompleted:
		return tagSaleCompleted
	case EventSubscriptionCreated:
		return tagSubCreated
	case EventSubscriptionCancelled:
		return tagSubCancelled
	case EventSubscriptionPaymentFailed:
		return tagSubPaymentFailed
	default:
		return "UNKNOWN"
	}
}

// SignatureHeaders is the verification material PayPal sends alongside every
// webhook delivery. All five must be present for verification to be attempted.
type SignatureHeaders struct {
	AuthAlgo         string `json:"auth_algo"`
	CertURL          string `json:"cert_url"`
	TransmissionID   string `json:"transmission_id"`
	TransmissionSig  string `json:"transmission_sig"`
	TransmissionTime string `json:"transmission_time"`
}

func (s SignatureHeaders) Complete() bool {
	return s.AuthAlgo != "" && s.CertURL != "" && s.TransmissionID != "" &&
		s.TransmissionSig != "" && s.TransmissionTime != ""
}

// WebhookEvent is the parsed inbound notification. It is never persisted.
type WebhookEvent struct {
	ID         string    // provider event id
	Kind       EventKind // parsed from event_type
	RawKind    string    // original event_type tag, for logging unknowns
	ResourceID string    // order / sale / subscription id
	CustomID   string    // correlation id mapping back to a local user
	Signature  SignatureHeaders
	Raw        json.RawMessage // exact body, forwarded to signature verification
}

// webhookEnvelope matches the provider's wire shape.
type webhookEnvelope struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		CustomID string `json:"custom_id"`
		// Sale events nest the order custom id one level down.
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

// ParseWebhookEvent decodes the raw body. A malformed body yields an event of
// kind EventUnknown rather than an error: the provider must still receive an
// acknowledgment once the signature checks out.
func ParseWebhookEvent(raw json.RawMessage, sig SignatureHeaders) WebhookEvent {
	var env webhookEnvelope
	evt := WebhookEvent{Kind: EventUnknown, Signature: sig, Raw: raw}
	if err := json.Unmarshal(raw, &env); err != nil {
		return evt
	}
	evt.ID = env.ID
	evt.RawKind = env.EventType
	evt.Kind = ParseEventKind(env.EventType)
	evt.ResourceID = env.Resource.ID
	evt.CustomID = env.Resource.CustomID
	return evt
}
