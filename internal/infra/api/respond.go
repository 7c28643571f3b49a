package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"paypal-premium-service/internal/domain"
)

type errorBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"` // dev mode only
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Success: false, Message: msg})
}

// writeDomainError maps domain errors onto the HTTP taxonomy. Upstream error
// payloads are forwarded only in dev mode; production gets the short message.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, msg string) {
	var up *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, msg)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, msg)
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, domain.ErrNotVerified):
		writeError(w, http.StatusBadRequest, msg)
	case errors.As(err, &up):
		body := errorBody{Success: false, Message: msg}
		if s.dev && json.Valid(up.Payload) {
			body.Details = up.Payload
		}
		writeJSON(w, http.StatusInternalServerError, body)
	default:
		writeError(w, http.StatusInternalServerError, msg)
	}
}
