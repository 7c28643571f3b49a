package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotVerified     = errors.New("webhook signature not verified")
	ErrConfig          = errors.New("missing required configuration")
)

// UpstreamError carries the provider's raw error payload for a failed REST
// call. The payload is surfaced to clients only in dev mode.
type UpstreamError struct {
	Op      string // provider operation, e.g. "create-order"
	Status  int    // upstream HTTP status
	Payload []byte // raw response body, may be nil
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("paypal %s: upstream status %d", e.Op, e.Status)
}

// NewUpstreamError copies body so callers can reuse their read buffer.
func NewUpstreamError(op string, status int, body []byte) *UpstreamError {
	p := make([]byte, len(body))
	copy(p, body)
	return &UpstreamError{Op: op, Status: status, Payload: p}
}
