package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the entitlement record mirrored into the document store.
// Premium is the single source of truth for feature access; there is no
// per-payment ledger on the record itself.
type User struct {
	ID               string    `bson:"_id"`
	Email            string    `bson:"email,omitempty"`
	PasswordHash     string    `bson:"passwordHash,omitempty"` // absent for users created via payment flow
	Premium          bool      `bson:"premium"`
	CreatedAt        time.Time `bson:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt"`
	PremiumUpdatedAt time.Time `bson:"premiumUpdatedAt,omitempty"`
}

func NewUser(id, email string, premium bool) *User {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	return &User{
		ID:        id,
		Email:     NormalizeEmail(email),
		Premium:   premium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// NormalizeEmail lowers and trims; the store has no case-insensitive index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail is intentionally loose; the provider validates the subscriber
// address on its side.
func ValidEmail(email string) bool {
	email = NormalizeEmail(email)
	return len(email) >= 3 && strings.Count(email, "@") == 1 &&
		!strings.HasPrefix(email, "@") && !strings.HasSuffix(email, "@")
}
