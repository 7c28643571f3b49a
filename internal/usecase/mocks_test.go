//go:build !integration

package usecase_test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/adapter"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

//
// ---------------- in-memory user repo ----------------
//

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User

	// optional error hooks
	errFind    error
	errCreate  error
	errPremium error

	premiumWrites int // number of SetPremium calls that reached the store
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{}}
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.errFind != nil {
		return nil, m.errFind
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.errFind != nil {
		return nil, m.errFind
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == model.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.errCreate != nil {
		return m.errCreate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) Merge(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
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

func (m *mockUserRepo) SetPremium(ctx context.Context, id string, premium bool) error {
	if m.errPremium != nil {
		return m.errPremium
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Premium = premium
	m.premiumWrites++
	return nil
}

//
// ---------------- provider gateway mock ----------------
//

type mockGateway struct {
	captureStatus model.OrderStatus
	captureErr    error
	orderErr      error

	createdOrders []string // correlation ids passed to CreateOrder
	requestIDs    []string // idempotency keys passed to CreateOrder
	captureCalls  int
	verifyStatus  adapter.VerificationStatus
	verifyErr     error
	cancelledSubs []string
}

func newMockGateway() *mockGateway {
	return &mockGateway{captureStatus: model.StatusCompleted, verifyStatus: adapter.VerificationSuccess}
}

func (m *mockGateway) AccessToken(ctx context.Context) (string, error) { return "token", nil }

func (m *mockGateway) CreateOrder(ctx context.Context, amount, currency, correlationID, requestID string) (model.Order, error) {
	if m.orderErr != nil {
		return model.Order{}, m.orderErr
	}
	m.createdOrders = append(m.createdOrders, correlationID)
	m.requestIDs = append(m.requestIDs, requestID)
	return model.Order{
		ID:     "ORDER-1",
		Status: model.StatusCreated,
		Links:  []model.Link{{Href: "https://example.test/approve", Rel: "approve", Method: "GET"}},
	}, nil
}

func (m *mockGateway) CaptureOrder(ctx context.Context, orderID string) (model.CaptureResult, error) {
	m.captureCalls++
	if m.captureErr != nil {
		return model.CaptureResult{}, m.captureErr
	}
	return model.CaptureResult{ID: orderID, Status: m.captureStatus}, nil
}

func (m *mockGateway) CreateProduct(ctx context.Context, name, description string) (string, error) {
	return "PROD-1", nil
}

func (m *mockGateway) CreatePlan(ctx context.Context, spec model.PlanSpec) (model.Plan, error) {
	return model.Plan{ID: "PLAN-1", ProductID: "PROD-1", Name: spec.Name}, nil
}

func (m *mockGateway) ListPlans(ctx context.Context) ([]model.Plan, error) {
	return []model.Plan{{ID: "PLAN-1", Name: "monthly"}}, nil
}

func (m *mockGateway) CreateSubscription(ctx context.Context, planID, email, returnURL, cancelURL string) (json.RawMessage, error) {
	return json.RawMessage(`{"id":"SUB-1","status":"APPROVAL_PENDING"}`), nil
}

func (m *mockGateway) CancelSubscription(ctx context.Context, id, reason string) error {
	m.cancelledSubs = append(m.cancelledSubs, id)
	return nil
}

func (m *mockGateway) FetchSubscription(ctx context.Context, id string) (json.RawMessage, error) {
	return json.RawMessage(`{"id":"` + id + `","status":"ACTIVE"}`), nil
}

func (m *mockGateway) VerifyWebhookSignature(ctx context.Context, sig model.SignatureHeaders, raw json.RawMessage, webhookID string) (adapter.VerificationStatus, error) {
	return m.verifyStatus, m.verifyErr
}

//
// ---------------- ledger and dedup mocks ----------------
//

type mockLedger struct {
	mu      sync.Mutex
	entries []model.EntitlementEntry
	errAdd  error
}

func (m *mockLedger) Append(ctx context.Context, e model.EntitlementEntry) error {
	if m.errAdd != nil {
		return m.errAdd
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockLedger) ListByUser(ctx context.Context, userID string, limit int) ([]model.EntitlementEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.EntitlementEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMockDeduper() *mockDeduper { return &mockDeduper{seen: map[string]bool{}} }

func (m *mockDeduper) Seen(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[id] {
		return true, nil
	}
	m.seen[id] = true
	return false, nil
}

func (m *mockDeduper) Forget(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, id)
	return nil
}
