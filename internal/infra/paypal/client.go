package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/adapter"
	"paypal-premium-service/internal/infra/metrics"
)

const (
	sandboxBaseURL = "https://api.sandbox.paypal.com"
	liveBaseURL    = "https://api.paypal.com"
)

// Compile-time check
var _ adapter.ProviderGateway = (*Client)(nil)

// Client implements adapter.ProviderGateway using direct HTTP calls.
// It caches nothing: every operation fetches a fresh access token.
type Client struct {
	clientID     string
	clientSecret string
	brandName    string
	baseURL      string
	client       *http.Client
}

// NewClient creates a gateway against the sandbox or live API.
func NewClient(clientID, clientSecret, brandName string, sandbox bool) *Client {
	base := liveBaseURL
	if sandbox {
		base = sandboxBaseURL
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		brandName:    brandName,
		baseURL:      base,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL points the gateway at an explicit base URL; used by
// tests to target a stub server.
func NewClientWithBaseURL(clientID, clientSecret, brandName, baseURL string) *Client {
	c := NewClient(clientID, clientSecret, brandName, true)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken exchanges client credentials for a bearer token. Single attempt.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ObserveProviderCall("token", float64(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", domain.ErrUnauthorized, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint status %d", domain.ErrUnauthorized, resp.StatusCode)
	}
	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrUnauthorized)
	}
	return tok.AccessToken, nil
}

// call fetches a token, issues one authenticated request and returns the raw
// body. A non-2xx status becomes an *domain.UpstreamError carrying the body.
// idemKey, when non-empty, is sent as PayPal-Request-Id.
func (c *Client) call(ctx context.Context, op, method, path string, payload any, idemKey string) ([]byte, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var rdr io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set("PayPal-Request-Id", idemKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ObserveProviderCall(op, float64(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewUpstreamError(op, resp.StatusCode, body)
	}
	return body, nil
}

// IdempotencyKey returns a fresh client-generated key. Deduplication only
// works when the caller supplies the SAME key on a retry; a fresh key per
// attempt is the fallback for callers that track nothing.
func IdempotencyKey() string { return ulid.Make().String() }

type amountJSON struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnitJSON struct {
	Amount   amountJSON `json:"amount"`
	CustomID string     `json:"custom_id,omitempty"`
}

type createOrderJSON struct {
	Intent        string             `json:"intent"`
	PurchaseUnits []purchaseUnitJSON `json:"purchase_units"`
}

func (c *Client) CreateOrder(ctx context.Context, amount, currency, correlationID, requestID string) (model.Order, error) {
	if currency == "" {
		currency = "USD"
	}
	if requestID == "" {
		requestID = IdempotencyKey()
	}
	payload := createOrderJSON{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitJSON{{
			Amount:   amountJSON{CurrencyCode: currency, Value: amount},
			CustomID: correlationID,
		}},
	}
	body, err := c.call(ctx, "create-order", http.MethodPost, "/v2/checkout/orders", payload, requestID)
	if err != nil {
		return model.Order{}, err
	}
	var ord model.Order
	if err := json.Unmarshal(body, &ord); err != nil {
		return model.Order{}, fmt.Errorf("decode order: %w", err)
	}
	metrics.IncOrder(currency)
	return ord, nil
}

func (c *Client) CaptureOrder(ctx context.Context, orderID string) (model.CaptureResult, error) {
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	// The order id is the natural key: every capture retry for the same
	// order carries the same header and collapses into one capture.
	body, err := c.call(ctx, "capture-order", http.MethodPost, path, struct{}{}, "capture-"+orderID)
	if err != nil {
		return model.CaptureResult{}, err
	}
	var res model.CaptureResult
	if err := json.Unmarshal(body, &res); err != nil {
		return model.CaptureResult{}, fmt.Errorf("decode capture: %w", err)
	}
	metrics.IncCapture(string(res.Status))
	return res, nil
}

type createProductJSON struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

// CreateProduct must precede plan creation; the provider rejects plans
// without a product id.
func (c *Client) CreateProduct(ctx context.Context, name, description string) (string, error) {
	payload := createProductJSON{
		Name:        name,
		Description: description,
		Type:        "SERVICE",
		Category:    "SOFTWARE",
	}
	body, err := c.call(ctx, "create-product", http.MethodPost, "/v1/catalogs/products", payload, "")
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode product: %w", err)
	}
	return out.ID, nil
}

type frequencyJSON struct {
	IntervalUnit  string `json:"interval_unit"`
	IntervalCount int    `json:"interval_count"`
}

type billingCycleJSON struct {
	Frequency     frequencyJSON `json:"frequency"`
	TenureType    string        `json:"tenure_type"`
	Sequence      int           `json:"sequence"`
	TotalCycles   int           `json:"total_cycles"` // 0 means unlimited
	PricingScheme struct {
		FixedPrice amountJSON `json:"fixed_price"`
	} `json:"pricing_scheme"`
}

type paymentPreferencesJSON struct {
	AutoBillOutstanding     bool       `json:"auto_bill_outstanding"`
	SetupFee                amountJSON `json:"setup_fee"`
	SetupFeeFailureAction   string     `json:"setup_fee_failure_action"`
	PaymentFailureThreshold int        `json:"payment_failure_threshold"`
}

type createPlanJSON struct {
	ProductID          string                 `json:"product_id"`
	Name               string                 `json:"name"`
	Description        string                 `json:"description,omitempty"`
	BillingCycles      []billingCycleJSON     `json:"billing_cycles"`
	PaymentPreferences paymentPreferencesJSON `json:"payment_preferences"`
}

func (c *Client) CreatePlan(ctx context.Context, spec model.PlanSpec) (model.Plan, error) {
	productID, err := c.CreateProduct(ctx, spec.Name, spec.Description)
	if err != nil {
		return model.Plan{}, err
	}

	count := spec.IntervalCount
	if count <= 0 {
		count = 1
	}
	cycle := billingCycleJSON{
		Frequency:   frequencyJSON{IntervalUnit: spec.Interval, IntervalCount: count},
		TenureType:  "REGULAR",
		Sequence:    1,
		TotalCycles: 0,
	}
	cycle.PricingScheme.FixedPrice = amountJSON{CurrencyCode: spec.Currency, Value: spec.Amount}

	payload := createPlanJSON{
		ProductID:     productID,
		Name:          spec.Name,
		Description:   spec.Description,
		BillingCycles: []billingCycleJSON{cycle},
		PaymentPreferences: paymentPreferencesJSON{
			AutoBillOutstanding:     true,
			SetupFee:                amountJSON{CurrencyCode: spec.Currency, Value: "0"},
			SetupFeeFailureAction:   "CONTINUE",
			PaymentFailureThreshold: 3,
		},
	}
	body, err := c.call(ctx, "create-plan", http.MethodPost, "/v1/billing/plans", payload, "")
	if err != nil {
		return model.Plan{}, err
	}
	var plan model.Plan
	if err := json.Unmarshal(body, &plan); err != nil {
		return model.Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	plan.Raw = body
	return plan, nil
}

func (c *Client) ListPlans(ctx context.Context) ([]model.Plan, error) {
	body, err := c.call(ctx, "list-plans", http.MethodGet, "/v1/billing/plans", nil, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		Plans []model.Plan `json:"plans"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode plans: %w", err)
	}
	return out.Plans, nil
}

type subscriberJSON struct {
	EmailAddress string `json:"email_address"`
}

type applicationContextJSON struct {
	BrandName          string `json:"brand_name,omitempty"`
	ShippingPreference string `json:"shipping_preference"`
	UserAction         string `json:"user_action"`
	ReturnURL          string `json:"return_url"`
	CancelURL          string `json:"cancel_url"`
}

type createSubscriptionJSON struct {
	PlanID             string                 `json:"plan_id"`
	Subscriber         subscriberJSON         `json:"subscriber"`
	ApplicationContext applicationContextJSON `json:"application_context"`
}

func (c *Client) CreateSubscription(ctx context.Context, planID, subscriberEmail, returnURL, cancelURL string) (json.RawMessage, error) {
	payload := createSubscriptionJSON{
		PlanID:     planID,
		Subscriber: subscriberJSON{EmailAddress: subscriberEmail},
		ApplicationContext: applicationContextJSON{
			BrandName:          c.brandName,
			ShippingPreference: "NO_SHIPPING",
			UserAction:         "SUBSCRIBE_NOW",
			ReturnURL:          returnURL,
			CancelURL:          cancelURL,
		},
	}
	return c.call(ctx, "create-subscription", http.MethodPost, "/v1/billing/subscriptions", payload, "")
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID, reason string) error {
	if reason == "" {
		reason = "Cancellation requested by the user"
	}
	path := "/v1/billing/subscriptions/" + url.PathEscape(subscriptionID) + "/cancel"
	_, err := c.call(ctx, "cancel-subscription", http.MethodPost, path, map[string]string{"reason": reason}, "")
	return err
}

func (c *Client) FetchSubscription(ctx context.Context, subscriptionID string) (json.RawMessage, error) {
	path := "/v1/billing/subscriptions/" + url.PathEscape(subscriptionID)
	return c.call(ctx, "fetch-subscription", http.MethodGet, path, nil, "")
}

type verifySignatureJSON struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertURL          string          `json:"cert_url"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

// VerifyWebhookSignature delegates to the provider's verification endpoint.
// A transport or auth failure yields VerificationError: distinct from FAILURE
// because only ERROR is transient and worth a redelivery.
func (c *Client) VerifyWebhookSignature(ctx context.Context, sig model.SignatureHeaders, rawEvent json.RawMessage, webhookID string) (adapter.VerificationStatus, error) {
	payload := verifySignatureJSON{
		AuthAlgo:         sig.AuthAlgo,
		CertURL:          sig.CertURL,
		TransmissionID:   sig.TransmissionID,
		TransmissionSig:  sig.TransmissionSig,
		TransmissionTime: sig.TransmissionTime,
		WebhookID:        webhookID,
		WebhookEvent:     rawEvent,
	}
	body, err := c.call(ctx, "verify-webhook-signature", http.MethodPost, "/v1/notifications/verify-webhook-signature", payload, "")
	if err != nil {
		metrics.IncWebhookVerify("error")
		return adapter.VerificationError, err
	}
	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		metrics.IncWebhookVerify("error")
		return adapter.VerificationError, fmt.Errorf("decode verification response: %w", err)
	}
	if out.VerificationStatus == string(adapter.VerificationSuccess) {
		metrics.IncWebhookVerify("success")
		return adapter.VerificationSuccess, nil
	}
	metrics.IncWebhookVerify("failure")
	return adapter.VerificationFailure, nil
}
