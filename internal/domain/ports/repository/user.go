package repository

import (
	"context"

	"paypal-premium-service/internal/domain/model"
)

// UserRepository is the document-store access contract: key-value by opaque
// user id plus a single query-by-email path. Merge semantics: partial writes
// never clobber fields absent from the supplied map.
type UserRepository interface {
	// FindByID returns (nil, nil) when the id is unknown.
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByEmail returns (nil, nil) when no record matches.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Create inserts a new record; domain.ErrAlreadyExists on id collision.
	Create(ctx context.Context, u *model.User) error
	// Merge $set-updates only the supplied fields and bumps updatedAt.
	Merge(ctx context.Context, id string, fields map[string]any) error
	// SetPremium writes the entitlement flag and premiumUpdatedAt.
	// Unconditional set: concurrent writers converge rather than race.
	SetPremium(ctx context.Context, id string, premium bool) error
}
