package model

import "time"

// GrantSource identifies which boundary triggered an entitlement change.
// The same purchase may be reported by both; the mutation is idempotent.
type GrantSource string

const (
	SourceCapture GrantSource = "capture" // synchronous order-capture response
	SourceWebhook GrantSource = "webhook" // asynchronous provider notification
	SourceAdmin   GrantSource = "admin"   // explicit /api/user/subscription/update
)

// EntitlementEntry is one row of the append-only audit ledger. The ledger is
// observational: the premium flag on the user record stays the source of truth.
type EntitlementEntry struct {
	ID        string      // ulid, lexically ordered by time
	UserID    string
	Premium   bool
	Source    GrantSource
	EventID   string // provider event/order id when known
	CreatedAt time.Time
}
