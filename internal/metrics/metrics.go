package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ProxyRequests.
const (
	OutcomeSuccess       = "success"
	OutcomeMissingKey    = "missing_key"
	OutcomeUpstreamError = "upstream_error"
	OutcomeInternalError = "internal_error"
)

var (
	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platepal_proxy_requests_total",
			Help: "Total number of prompt proxy requests by outcome",
		},
		[]string{"outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platepal_upstream_request_duration_seconds",
			Help:    "Duration of calls to the generation API in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"status"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platepal_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
