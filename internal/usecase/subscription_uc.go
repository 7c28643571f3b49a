package usecase

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/adapter"
	"paypal-premium-service/internal/infra/logging"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase proxies plan and subscription management to the
// provider. Responses are passed through mostly raw: the frontend consumes
// the provider's own object shapes.
type SubscriptionUseCase interface {
	CreatePlan(ctx context.Context, spec model.PlanSpec) (model.Plan, error)
	ListPlans(ctx context.Context) ([]model.Plan, error)
	Create(ctx context.Context, planID, userEmail, returnURL, cancelURL string) (json.RawMessage, error)
	Cancel(ctx context.Context, subscriptionID, reason string) error
	Fetch(ctx context.Context, subscriptionID string) (json.RawMessage, error)
}

type subscriptionUC struct {
	gateway adapter.ProviderGateway
	baseURL string // default return/cancel link base
	log     *zerolog.Logger
}

func NewSubscriptionUseCase(gateway adapter.ProviderGateway, baseURL string, logger *zerolog.Logger) *subscriptionUC {
	return &subscriptionUC{gateway: gateway, baseURL: baseURL, log: logger}
}

func (u *subscriptionUC) CreatePlan(ctx context.Context, spec model.PlanSpec) (model.Plan, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.CreatePlan")()

	if spec.Name == "" || spec.Amount == "" || spec.Currency == "" || spec.Interval == "" {
		return model.Plan{}, domain.ErrInvalidArgument
	}
	plan, err := u.gateway.CreatePlan(ctx, spec)
	if err != nil {
		return model.Plan{}, err
	}
	u.log.Info().Str("plan_id", plan.ID).Str("name", spec.Name).Msg("plan created")
	return plan, nil
}

func (u *subscriptionUC) ListPlans(ctx context.Context) ([]model.Plan, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.ListPlans")()
	return u.gateway.ListPlans(ctx)
}

func (u *subscriptionUC) Create(ctx context.Context, planID, userEmail, returnURL, cancelURL string) (json.RawMessage, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Create")()

	if planID == "" || !model.ValidEmail(userEmail) {
		return nil, domain.ErrInvalidArgument
	}
	if returnURL == "" {
		returnURL = u.baseURL + "/success"
	}
	if cancelURL == "" {
		cancelURL = u.baseURL + "/cancel"
	}
	return u.gateway.CreateSubscription(ctx, planID, model.NormalizeEmail(userEmail), returnURL, cancelURL)
}

func (u *subscriptionUC) Cancel(ctx context.Context, subscriptionID, reason string) error {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Cancel")()

	if subscriptionID == "" {
		return domain.ErrInvalidArgument
	}
	if err := u.gateway.CancelSubscription(ctx, subscriptionID, reason); err != nil {
		return err
	}
	u.log.Info().Str("subscription_id", subscriptionID).Msg("subscription cancelled")
	return nil
}

func (u *subscriptionUC) Fetch(ctx context.Context, subscriptionID string) (json.RawMessage, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Fetch")()

	if subscriptionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.gateway.FetchSubscription(ctx, subscriptionID)
}
