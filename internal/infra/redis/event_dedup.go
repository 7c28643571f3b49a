package redis

import (
	"context"
	"time"

	"paypal-premium-service/internal/domain/ports/repository"
)

const dedupTTL = 48 * time.Hour

// Compile-time check
var _ repository.EventDeduper = (*EventDeduper)(nil)

// EventDeduper remembers webhook transmission ids so duplicate deliveries can
// be skipped before re-running verification. Best effort: the entitlement
// grant is idempotent, so a cache miss on a duplicate is harmless.
type EventDeduper struct {
	client Client
}

func NewEventDeduper(client Client) *EventDeduper {
	return &EventDeduper{client: client}
}

func (d *EventDeduper) Seen(ctx context.Context, transmissionID string) (bool, error) {
	if d == nil || d.client == nil || transmissionID == "" {
		return false, nil
	}
	set, err := d.client.SetNX(ctx, "webhook:seen:"+transmissionID, 1, dedupTTL)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Forget drops the mark so the provider's redelivery of a failed event is not
// skipped as a duplicate.
func (d *EventDeduper) Forget(ctx context.Context, transmissionID string) error {
	if d == nil || d.client == nil || transmissionID == "" {
		return nil
	}
	return d.client.Del(ctx, "webhook:seen:"+transmissionID)
}
