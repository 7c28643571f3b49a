package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"paypal-premium-service/internal/domain"
	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/infra/redis"
)

func (s *Server) handleUserSubscription(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		// Validation failure: no store call is attempted.
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	premium, err := s.userUC.SubscriptionStatus(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"premium": premium,
		"userId":  userID,
	})
}

type userCreateRequest struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Premium bool   `json:"premium"`
}

func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	isNew, err := s.userUC.CreateOrUpdate(r.Context(), req.UserID, req.Email, req.Premium)
	if err != nil {
		s.writeDomainError(w, err, "failed to create user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "isNew": isNew})
}

type updateSubscriptionRequest struct {
	UserID  string `json:"userId"`
	Premium bool   `json:"premium"`
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := s.userUC.UpdatePremium(r.Context(), req.UserID, req.Premium); err != nil {
		s.writeDomainError(w, err, "failed to update subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	exists, userID, err := s.userUC.CheckEmail(r.Context(), email)
	if err != nil {
		s.writeDomainError(w, err, "failed to check email")
		return
	}
	resp := map[string]any{"exists": exists, "userId": nil}
	if exists {
		resp["userId"] = userID
	}
	writeJSON(w, http.StatusOK, resp)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := s.authUC.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusBadRequest, "email already in use")
			return
		}
		s.writeDomainError(w, err, "registration failed: email must be valid and password at least 6 characters")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "registration successful",
		"userId":  userID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := model.NormalizeEmail(req.Email)
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	ok, err := s.limiter.Allow(r.Context(), redis.LoginKey(email, ip), 10, time.Minute)
	if err != nil {
		s.log.Warn().Err(err).Msg("login rate limiter unavailable")
	} else if !ok {
		writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	userID, token, err := s.authUC.Login(r.Context(), email, req.Password)
	if err != nil {
		// Same message for unknown email and wrong password.
		s.writeDomainError(w, err, "invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"userId":  userID,
		"token":   token,
	})
}

// handleMe resolves the bearer token back to the account it was minted for.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	userID, email, err := s.authUC.Verify(token)
	if err != nil {
		s.writeDomainError(w, err, "invalid or expired token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": userID,
		"email":  email,
	})
}
