package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled HTTP requests by method, route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_tracker_http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_tracker_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// PriceFallbacks counts valuations that substituted average cost for a
	// ticker because the quote lookup failed or timed out.
	PriceFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_tracker_price_fallbacks_total",
		Help: "Price lookups replaced by the average-cost fallback.",
	}, []string{"ticker"})

	// OversellRejections counts sell transactions rejected for exceeding
	// current holdings.
	OversellRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_tracker_oversell_rejections_total",
		Help: "Sell transactions rejected by the holdings check.",
	})
)
