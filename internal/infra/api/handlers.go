package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"paypal-premium-service/internal/domain/model"
)

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("PayPal premium service is running"))
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    "healthy",
	})
}

// handleTestAuth is a credential smoke check: fetches a token and returns a
// short preview of it.
func (s *Server) handleTestAuth(w http.ResponseWriter, r *http.Request) {
	token, err := s.gateway.AccessToken(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "authentication failed")
		return
	}
	preview := token
	if len(preview) > 10 {
		preview = preview[:10] + "..."
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "authentication succeeded",
		"token_start": preview,
	})
}

func (s *Server) handleScriptURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"scriptUrl": s.scriptURL(r.URL.Query().Get("currency")),
	})
}

type createOrderRequest struct {
	UserID   string `json:"userId"`
	Amount   string `json:"amount"`
	Price    string `json:"price"` // older clients send price instead of amount
	Currency string `json:"currency"`
	// Optional client-chosen idempotency key. A client retrying after a
	// timeout sends the same requestId and gets the same order back.
	RequestID string `json:"requestId"`
}

func (r createOrderRequest) amount() string {
	if r.Amount != "" {
		return r.Amount
	}
	return r.Price
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.amount() == "" {
		writeError(w, http.StatusBadRequest, "userId and amount are required")
		return
	}

	ord, err := s.paymentUC.CreateOrder(r.Context(), req.UserID, req.amount(), req.Currency, req.RequestID)
	if err != nil {
		s.writeDomainError(w, err, "failed to create order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"orderId": ord.ID,
		"price":   req.amount(),
	})
}

type captureOrderRequest struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

func (s *Server) handleCaptureOrder(w http.ResponseWriter, r *http.Request) {
	var req captureOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "orderId and userId are required")
		return
	}

	_, completed, err := s.paymentUC.CaptureOrder(r.Context(), req.OrderID, req.UserID)
	if err != nil {
		s.writeDomainError(w, err, "failed to capture order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": completed})
}

// handleCreatePayment is the older alias of create-order; it returns the full
// link set so the client can redirect to approval.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		Amount      string `json:"amount"`
		Currency    string `json:"currency"`
		Description string `json:"description"`
		RequestID   string `json:"requestId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Amount == "" {
		writeError(w, http.StatusBadRequest, "userId and amount are required")
		return
	}

	ord, err := s.paymentUC.CreateOrder(r.Context(), req.UserID, req.Amount, req.Currency, req.RequestID)
	if err != nil {
		s.writeDomainError(w, err, "failed to create payment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    ord.ID,
		"links": ord.Links,
	})
}

func (s *Server) handleCapturePayment(w http.ResponseWriter, r *http.Request) {
	var req captureOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "orderId and userId are required")
		return
	}

	status, completed, err := s.paymentUC.CaptureOrder(r.Context(), req.OrderID, req.UserID)
	if err != nil {
		s.writeDomainError(w, err, "failed to capture payment")
		return
	}
	msg := "payment completed"
	if !completed {
		msg = "payment not completed: " + string(status)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": completed, "message": msg})
}

type createPlanRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Interval      string `json:"interval"`
	IntervalCount int    `json:"interval_count"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := s.subUC.CreatePlan(r.Context(), model.PlanSpec{
		Name:          req.Name,
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Interval:      req.Interval,
		IntervalCount: req.IntervalCount,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to create plan")
		return
	}
	if len(plan.Raw) > 0 {
		writeJSON(w, http.StatusOK, json.RawMessage(plan.Raw))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.subUC.ListPlans(r.Context())
	if err != nil {
		s.writeDomainError(w, err, "failed to list plans")
		return
	}
	if plans == nil {
		plans = []model.Plan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

type createSubscriptionRequest struct {
	PlanID    string `json:"plan_id"`
	UserEmail string `json:"user_email"`
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := s.subUC.Create(r.Context(), req.PlanID, req.UserEmail, req.ReturnURL, req.CancelURL)
	if err != nil {
		s.writeDomainError(w, err, "failed to create subscription")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for cancellation.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := s.subUC.Cancel(r.Context(), id, req.Reason); err != nil {
		s.writeDomainError(w, err, "failed to cancel subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "SUCCESS",
		"message": "subscription cancelled",
	})
}

func (s *Server) handleFetchSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subUC.Fetch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "failed to fetch subscription")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
