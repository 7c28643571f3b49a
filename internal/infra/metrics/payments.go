package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersTotal,
		capturesTotal,
		providerCallLatencyMs,
	)
}

var (
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paypal_orders_total",
			Help: "Orders created, labeled by currency.",
		},
		[]string{"currency"},
	)

	capturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paypal_captures_total",
			Help: "Capture attempts by provider status (completed/pending/declined/...).",
		},
		[]string{"status"},
	)

	providerCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paypal_call_latency_ms",
			Help:    "Provider REST call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"op", "success"},
	)
)

func IncOrder(currency string) {
	ordersTotal.WithLabelValues(norm(currency)).Inc()
}

func IncCapture(status string) {
	capturesTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveProviderCall(op string, ms float64, success bool) {
	s := "false"
	if success {
		s = "true"
	}
	providerCallLatencyMs.WithLabelValues(norm(op), s).Observe(ms)
}
