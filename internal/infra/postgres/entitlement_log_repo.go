package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.EntitlementLogRepository = (*EntitlementLogRepo)(nil)

// EntitlementLogRepo is the append-only audit ledger for premium changes.
// Rows are never updated or deleted; the premium flag on the user record
// stays the source of truth and this table is purely observational.
type EntitlementLogRepo struct{ pool *pgxpool.Pool }

func NewEntitlementLogRepo(pool *pgxpool.Pool) *EntitlementLogRepo {
	return &EntitlementLogRepo{pool: pool}
}

// EnsureSchema creates the ledger table when it does not exist yet.
func (r *EntitlementLogRepo) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS entitlement_log (
  id         TEXT PRIMARY KEY,
  user_id    TEXT NOT NULL,
  premium    BOOLEAN NOT NULL,
  source     TEXT NOT NULL,
  event_id   TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS entitlement_log_user_idx ON entitlement_log (user_id, id);`
	_, err := r.pool.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("ensure entitlement_log schema: %w", err)
	}
	return nil
}

func (r *EntitlementLogRepo) Append(ctx context.Context, e model.EntitlementEntry) error {
	const q = `
INSERT INTO entitlement_log (id, user_id, premium, source, event_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := r.pool.Exec(ctx, q, e.ID, e.UserID, e.Premium, string(e.Source), e.EventID, e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// The ulid was already recorded; appends are idempotent by id.
			return nil
		}
		return fmt.Errorf("append entitlement entry: %w", err)
	}
	return nil
}

func (r *EntitlementLogRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.EntitlementEntry, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT id, user_id, premium, source, event_id, created_at
FROM entitlement_log WHERE user_id=$1 ORDER BY id DESC LIMIT $2;`
	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list entitlement entries: %w", err)
	}
	defer rows.Close()

	var out []model.EntitlementEntry
	for rows.Next() {
		var e model.EntitlementEntry
		var src string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Premium, &src, &e.EventID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entitlement entry: %w", err)
		}
		e.Source = model.GrantSource(src)
		out = append(out, e)
	}
	return out, rows.Err()
}
