package api

import (
	"io"
	"net/http"

	"paypal-premium-service/internal/domain/model"
	"paypal-premium-service/internal/domain/ports/adapter"
)

// handleWebhook implements the provider-notification path:
// signature material -> delegated verification -> event dispatch.
// Everything past a successful verification acknowledges with 200 even when
// the event has no effect, because the provider retries anything else.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	// Config check comes first: verification is never attempted without a
	// webhook id.
	if s.webhookID == "" {
		s.log.Error().Msg("paypal.webhook_id is not configured")
		writeError(w, http.StatusInternalServerError, "webhook configuration error")
		return
	}

	sig := model.SignatureHeaders{
		AuthAlgo:         r.Header.Get("Paypal-Auth-Algo"),
		CertURL:          r.Header.Get("Paypal-Cert-Url"),
		TransmissionID:   r.Header.Get("Paypal-Transmission-Id"),
		TransmissionSig:  r.Header.Get("Paypal-Transmission-Sig"),
		TransmissionTime: r.Header.Get("Paypal-Transmission-Time"),
	}
	if !sig.Complete() {
		writeError(w, http.StatusBadRequest, "missing signature headers")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	status, verr := s.gateway.VerifyWebhookSignature(r.Context(), sig, body, s.webhookID)
	if status != adapter.VerificationSuccess {
		// FAILURE and ERROR both deny authorization. The provider
		// redelivers on any non-2xx status, so an ERROR caused by a
		// transient verification outage gets another chance anyway.
		if verr != nil {
			s.log.Error().Err(verr).Msg("webhook signature verification errored")
		} else {
			s.log.Warn().Str("transmission_id", sig.TransmissionID).Msg("webhook signature invalid")
		}
		writeError(w, http.StatusBadRequest, "webhook signature not verified")
		return
	}

	evt := model.ParseWebhookEvent(body, sig)
	outcome, err := s.entitlement.HandleEvent(r.Context(), evt, status)
	if err != nil {
		s.log.Error().Err(err).Str("event", evt.RawKind).Msg("webhook processing failed")
		writeError(w, http.StatusInternalServerError, "webhook processing error")
		return
	}

	s.log.Info().Str("event", evt.RawKind).Str("outcome", string(outcome)).Msg("webhook handled")
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
