package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(httpRequestsTotal)
}

var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests served, by method and status code.",
	},
	[]string{"method", "status"},
)

func IncHTTPRequest(method string, status int) {
	httpRequestsTotal.WithLabelValues(norm(method), strconv.Itoa(status)).Inc()
}
