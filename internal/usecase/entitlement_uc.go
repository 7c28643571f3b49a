package usecase

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/adapter"
	"paypal-premium-service/internal/domain/ports/repository"
	"paypal-premium-service/internal/infra/logging"
	"paypal-premium-service/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// Outcome classifies what a webhook event did. Every outcome except
// OutcomeNotVerified is acknowledged with a 2xx so the provider stops
// redelivering.
type Outcome string

const (
	OutcomeGranted     Outcome = "granted"      // premium set (or re-set) on a user
	OutcomeNoUser      Outcome = "no_user"      // correlation id absent or unresolvable
	OutcomeIgnored     Outcome = "ignored"      // recognized-or-unknown kind with no mutation policy
	OutcomeDuplicate   Outcome = "duplicate"    // transmission id already processed
	OutcomeNotVerified Outcome = "not_verified" // signature did not verify
)

// EntitlementUseCase keeps the premium flag consistent with payment activity.
// Grant is the single mutation point: both the synchronous capture path and
// the asynchronous webhook path go through it, which is what makes the two
// paths idempotent and order-insensitive against each other.
type EntitlementUseCase interface {
	Grant(ctx context.Context, userID string, source model.GrantSource, eventID string) error
	Revoke(ctx context.Context, userID string, source model.GrantSource) error
	// HandleEvent applies the webhook algorithm to an already-verified (or
	// not) event. It mutates state at most once and never returns an error
	// for conditions the provider cannot fix by retrying.
	HandleEvent(ctx context.Context, evt model.WebhookEvent, verification adapter.VerificationStatus) (Outcome, error)
}

type entitlementUC struct {
	users  repository.UserRepository
	ledger repository.EntitlementLogRepository // optional
	dedup  repository.EventDeduper             // optional
	log    *zerolog.Logger
}

func NewEntitlementUseCase(users repository.UserRepository, ledger repository.EntitlementLogRepository, dedup repository.EventDeduper, logger *zerolog.Logger) *entitlementUC {
	return &entitlementUC{users: users, ledger: ledger, dedup: dedup, log: logger}
}

// Grant sets premium=true. Applying it twice leaves state unchanged after the
// first application: the write is an unconditional set, not an increment.
func (u *entitlementUC) Grant(ctx context.Context, userID string, source model.GrantSource, eventID string) error {
	defer logging.TraceDuration(u.log, "EntitlementUC.Grant")()

	if err := u.users.SetPremium(ctx, userID, true); err != nil {
		return err
	}
	metrics.IncEntitlementChange(string(source), true)
	u.appendLedger(ctx, userID, true, source, eventID)
	u.log.Info().Str("user_id", userID).Str("source", string(source)).Str("event_id", eventID).Msg("premium granted")
	return nil
}

// Revoke sets premium=false. Only the explicit admin update path calls this;
// provider cancellation/failure events never do.
func (u *entitlementUC) Revoke(ctx context.Context, userID string, source model.GrantSource) error {
	defer logging.TraceDuration(u.log, "EntitlementUC.Revoke")()

	if err := u.users.SetPremium(ctx, userID, false); err != nil {
		return err
	}
	metrics.IncEntitlementChange(string(source), false)
	u.appendLedger(ctx, userID, false, source, "")
	u.log.Info().Str("user_id", userID).Str("source", string(source)).Msg("premium revoked")
	return nil
}

func (u *entitlementUC) HandleEvent(ctx context.Context, evt model.WebhookEvent, verification adapter.VerificationStatus) (Outcome, error) {
	defer logging.TraceDuration(u.log, "EntitlementUC.HandleEvent")()

	if verification != adapter.VerificationSuccess {
		// FAILURE and ERROR are both "not verified" for authorization;
		// only ERROR is transient, and the caller already knows which it got.
		metrics.IncWebhookEvent(evt.RawKind, string(OutcomeNotVerified))
		return OutcomeNotVerified, nil
	}

	if u.dedup != nil {
		seen, err := u.dedup.Seen(ctx, evt.Signature.TransmissionID)
		if err != nil {
			// Dedup is a fast path only; fall through on cache trouble.
			u.log.Warn().Err(err).Msg("event dedup unavailable")
		} else if seen {
			metrics.IncWebhookEvent(evt.RawKind, string(OutcomeDuplicate))
			return OutcomeDuplicate, nil
		}
	}

	switch evt.Kind {
	case model.EventSaleCompleted:
		outcome, err := u.applyCompletion(ctx, evt)
		if err != nil {
			// Seen already marked the id. Unmark it, or the provider's
			// redelivery of this failed event would be skipped as a
			// duplicate and the grant would be lost for good.
			u.forget(ctx, evt.Signature.TransmissionID)
		}
		return outcome, err

	case model.EventSubscriptionCreated, model.EventSubscriptionCancelled, model.EventSubscriptionPaymentFailed:
		// Recognized but carries no mutation policy: revocation on cancel or
		// payment failure is an open product decision, so these are logged
		// and acknowledged only.
		u.log.Info().Str("event", evt.Kind.String()).Str("resource", evt.ResourceID).Msg("subscription event acknowledged without effect")
		metrics.IncWebhookEvent(evt.RawKind, string(OutcomeIgnored))
		return OutcomeIgnored, nil

	default:
		u.log.Warn().Str("event", evt.RawKind).Msg("unrecognized event acknowledged")
		metrics.IncWebhookEvent(evt.RawKind, string(OutcomeIgnored))
		return OutcomeIgnored, nil
	}
}

func (u *entitlementUC) forget(ctx context.Context, transmissionID string) {
	if u.dedup == nil {
		return
	}
	if err := u.dedup.Forget(ctx, transmissionID); err != nil {
		u.log.Warn().Err(err).Str("transmission_id", transmissionID).Msg("event dedup unmark failed")
	}
}

func (u *entitlementUC) applyCompletion(ctx context.Context, evt model.WebhookEvent) (Outcome, error) {
	if evt.CustomID == "" {
		u.log.Info().Str("resource", evt.ResourceID).Msg("completion event without correlation id, acknowledged")
		metrics.IncWebhookEvent(evt.RawKind, string(OutcomeNoUser))
		return OutcomeNoUser, nil
	}

	usr, err := u.users.FindByID(ctx, evt.CustomID)
	if err != nil {
		return OutcomeNoUser, err
	}
	if usr.IsZero() {
		// Unmapped ids are discarded, not errored: the provider would retry
		// forever for a condition that cannot fix itself.
		u.log.Info().Str("correlation_id", evt.CustomID).Msg("completion event for unknown user, acknowledged")
		metrics.IncWebhookEvent(evt.RawKind, string(OutcomeNoUser))
		return OutcomeNoUser, nil
	}

	if err := u.Grant(ctx, usr.ID, model.SourceWebhook, evt.ID); err != nil {
		return OutcomeGranted, err
	}
	metrics.IncWebhookEvent(evt.RawKind, string(OutcomeGranted))
	return OutcomeGranted, nil
}

// appendLedger records the change in the audit ledger when one is configured.
// Observational only: failures are counted and logged, never propagated.
func (u *entitlementUC) appendLedger(ctx context.Context, userID string, premium bool, source model.GrantSource, eventID string) {
	if u.ledger == nil {
		return
	}
	entry := model.EntitlementEntry{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Premium:   premium,
		Source:    source,
		EventID:   eventID,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.ledger.Append(ctx, entry); err != nil {
		metrics.IncLedgerAppendFailure()
		u.log.Error().Err(err).Str("user_id", userID).Msg("entitlement ledger append failed")
	}
}
