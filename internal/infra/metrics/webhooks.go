package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhookEventsTotal,
		webhookVerifyTotal,
	)
}

var (
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound webhook events by type and outcome (granted/no_user/ignored/duplicate/not_verified).",
		},
		[]string{"type", "outcome"},
	)

	webhookVerifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_verify_total",
			Help: "Signature verification results (success/failure/error).",
		},
		[]string{"status"},
	)
)

func IncWebhookEvent(eventType, outcome string) {
	webhookEventsTotal.WithLabelValues(norm(eventType), norm(outcome)).Inc()
}

func IncWebhookVerify(status string) {
	webhookVerifyTotal.WithLabelValues(norm(status)).Inc()
}
