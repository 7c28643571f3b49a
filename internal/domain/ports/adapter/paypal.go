package adapter

import (
	"context"
	"encoding/json"

	"paypal-premium-service/internal/domain/model"
)

// VerificationStatus is the provider's answer to a signature check.
// ERROR means the verification call itself failed (transport/auth) and is the
// only transient value; FAILURE is a verified-but-invalid signature. Callers
// treat both as "not verified" for authorization.
type VerificationStatus string

const (
	VerificationSuccess VerificationStatus = "SUCCESS"
	VerificationFailure VerificationStatus = "FAILURE"
	VerificationError   VerificationStatus = "ERROR"
)

// ProviderGateway wraps credential exchange and the REST calls this service
// makes against the payment provider. Implementations hold no state between
// calls; every call re-authenticates.
type ProviderGateway interface {
	// AccessToken exchanges the configured client id/secret via a
	// client-credentials grant. Single attempt, no retry.
	AccessToken(ctx context.Context) (string, error)

	// CreateOrder sends requestID as the provider idempotency key; a retry
	// carrying the same requestID cannot create a second order. An empty
	// requestID gets a fresh generated key, which protects nothing.
	CreateOrder(ctx context.Context, amount, currency, correlationID, requestID string) (model.Order, error)
	// CaptureOrder derives its idempotency key from the order id, so
	// capture retries for the same order always share a key.
	CaptureOrder(ctx context.Context, orderID string) (model.CaptureResult, error)

	CreateProduct(ctx context.Context, name, description string) (string, error)
	CreatePlan(ctx context.Context, spec model.PlanSpec) (model.Plan, error)
	ListPlans(ctx context.Context) ([]model.Plan, error)

	CreateSubscription(ctx context.Context, planID, subscriberEmail, returnURL, cancelURL string) (json.RawMessage, error)
	CancelSubscription(ctx context.Context, subscriptionID, reason string) error
	FetchSubscription(ctx context.Context, subscriptionID string) (json.RawMessage, error)

	// VerifyWebhookSignature delegates to the provider's verification
	// endpoint. A transport or auth failure yields VerificationError with a
	// non-nil error; FAILURE comes back with a nil error.
	VerifyWebhookSignature(ctx context.Context, sig model.SignatureHeaders, rawEvent json.RawMessage, webhookID string) (VerificationStatus, error)
}
