package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		entitlementChangesTotal,
		ledgerAppendFailures,
	)
}

var (
	entitlementChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlement_changes_total",
			Help: "Premium flag writes by source (capture/webhook/admin) and direction (grant/revoke).",
		},
		[]string{"source", "direction"},
	)

	ledgerAppendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "entitlement_ledger_append_failures_total",
			Help: "Audit ledger appends that failed; grants proceed regardless.",
		},
	)
)

func IncEntitlementChange(source string, grant bool) {
	dir := "revoke"
	if grant {
		dir = "grant"
	}
	entitlementChangesTotal.WithLabelValues(norm(source), dir).Inc()
}

func IncLedgerAppendFailure() {
	ledgerAppendFailures.Inc()
}
