// Package metrics exposes Prometheus instrumentation for the slip parser.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "slipparser"

var (
	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Slip scans by provider and outcome status.",
		},
		[]string{"provider", "status"},
	)

	scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Model call latency by provider.",
			// Vision model calls run seconds, not milliseconds
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)

	tokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Model tokens consumed, by provider and direction.",
		},
		[]string{"provider", "direction"},
	)

	estimatedCost = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimated_cost_usd_total",
			Help:      "Cumulative estimated model spend in USD.",
		},
		[]string{"provider"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by path and status code.",
		},
		[]string{"path", "code"},
	)
)

func init() {
	prometheus.MustRegister(scansTotal, scanDuration, tokensTotal, estimatedCost, httpRequests)
}

// ObserveScan records one model call and its outcome status
func ObserveScan(provider, status string, duration time.Duration) {
	scansTotal.WithLabelValues(provider, status).Inc()
	scanDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// AddUsage records token consumption and estimated cost for one model call
func AddUsage(provider string, inputTokens, outputTokens int, costUSD float64) {
	tokensTotal.WithLabelValues(provider, "input").Add(float64(inputTokens))
	tokensTotal.WithLabelValues(provider, "output").Add(float64(outputTokens))
	estimatedCost.WithLabelValues(provider).Add(costUSD)
}

// ObserveHTTPRequest records one handled HTTP request
func ObserveHTTPRequest(path string, code int) {
	httpRequests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// Handler serves the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
