//go:build !integration

package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"paypal-premium-service/internal/config"
	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/adapter"
	"paypal-premium-service/internal/usecase"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
	finds int // FindByID calls, to assert validation short-circuits
}

func newFakeUserStore() *fakeUserStore { return &fakeUserStore{users: map[string]*model.User{}} }

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == model.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) Merge(ctx context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if v, ok := fields["premium"]; ok {
		u.Premium = v.(bool)
	}
	if v, ok := fields["email"]; ok {
		u.Email = v.(string)
	}
	return nil
}

func (f *fakeUserStore) SetPremium(ctx context.Context, id string, premium bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Premium = premium
	return nil
}

func (f *fakeUserStore) premium(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	return ok && u.Premium
}

type fakeGateway struct {
	captureStatus model.OrderStatus
	verifyStatus  adapter.VerificationStatus
	verifyErr     error
	tokenErr      error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{captureStatus: model.StatusCompleted, verifyStatus: adapter.VerificationSuccess}
}

func (f *fakeGateway) AccessToken(ctx context.Context) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "token-abcdef-123456", nil
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amount, currency, correlationID, requestID string) (model.Order, error) {
	return model.Order{ID: "ORDER-1", Status: model.StatusCreated,
		Links: []model.Link{{Href: "https://paypal.test/approve", Rel: "approve", Method: "GET"}}}, nil
}

func (f *fakeGateway) CaptureOrder(ctx context.Context, orderID string) (model.CaptureResult, error) {
	return model.CaptureResult{ID: orderID, Status: f.captureStatus}, nil
}

func (f *fakeGateway) CreateProduct(ctx context.Context, name, description string) (string, error) {
	return "PROD-1", nil
}

func (f *fakeGateway) CreatePlan(ctx context.Context, spec model.PlanSpec) (model.Plan, error) {
	return model.Plan{ID: "PLAN-1", ProductID: "PROD-1", Name: spec.Name, Status: "ACTIVE"}, nil
}

func (f *fakeGateway) ListPlans(ctx context.Context) ([]model.Plan, error) { return nil, nil }

func (f *fakeGateway) CreateSubscription(ctx context.Context, planID, email, returnURL, cancelURL string) (json.RawMessage, error) {
	return json.RawMessage(`{"id":"SUB-1","status":"APPROVAL_PENDING"}`), nil
}

func (f *fakeGateway) CancelSubscription(ctx context.Context, id, reason string) error { return nil }

func (f *fakeGateway) FetchSubscription(ctx context.Context, id string) (json.RawMessage, error) {
	return json.RawMessage(`{"id":"` + id + `","status":"ACTIVE"}`), nil
}

func (f *fakeGateway) VerifyWebhookSignature(ctx context.Context, sig model.SignatureHeaders, raw json.RawMessage, webhookID string) (adapter.VerificationStatus, error) {
	return f.verifyStatus, f.verifyErr
}

type fixture struct {
	server *Server
	store  *fakeUserStore
	gw     *fakeGateway
}

func newFixture(webhookID string) *fixture {
	cfg := &config.Config{}
	cfg.Server.BaseURL = "http://localhost:3000"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.PayPal.ClientID = "test-client-id"
	cfg.PayPal.WebhookID = webhookID

	log := newTestLogger()
	store := newFakeUserStore()
	gw := newFakeGateway()

	ent := usecase.NewEntitlementUseCase(store, nil, nil, log)
	payUC := usecase.NewPaymentUseCase(gw, store, ent, log)
	subUC := usecase.NewSubscriptionUseCase(gw, cfg.Server.BaseURL, log)
	userUC := usecase.NewUserUseCase(store, ent, log)
	authUC := usecase.NewAuthUseCase(store, "test-secret", time.Hour, log)

	srv := NewServer(cfg, gw, payUC, subUC, userUC, authUC, ent, nil, log)
	return &fixture{server: srv, store: store, gw: gw}
}
