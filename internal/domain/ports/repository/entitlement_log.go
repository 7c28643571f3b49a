package repository

import (
	"context"

	"paypal-premium-service/internal/domain/model"
)

// EntitlementLogRepository appends entitlement changes to an audit ledger.
// Optional infrastructure: a nil-safe no-op implementation is used when no
// database is configured, and append failures never fail the grant.
type EntitlementLogRepository interface {
	Append(ctx context.Context, e model.EntitlementEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.EntitlementEntry, error)
}

// EventDeduper remembers webhook transmission ids for a bounded window so
// duplicate deliveries can be skipped cheaply. Best effort only: the grant
// itself is idempotent, so correctness never depends on this.
type EventDeduper interface {
	// Seen marks the id and reports whether it had been marked before.
	Seen(ctx context.Context, transmissionID string) (bool, error)
	// Forget unmarks the id so a provider redelivery is processed fresh.
	// Called when handling failed after Seen marked the id.
	Forget(ctx context.Context, transmissionID string) error
}
