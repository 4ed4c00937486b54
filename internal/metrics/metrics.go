package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_upstream_requests_total",
			Help: "Upstream forecast requests by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_dashboard_upstream_request_seconds",
			Help:    "Upstream forecast request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_cache_lookups_total",
			Help: "Series cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	Revalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_revalidations_total",
			Help: "Background revalidations by trigger (interval, reconnect, focus).",
		},
		[]string{"trigger"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weather_dashboard_sessions",
			Help: "Dashboard sessions currently held in memory.",
		},
	)

	StaleResults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_dashboard_stale_results_total",
			Help: "Series results dropped because the session selection had moved on.",
		},
	)
)

func init() {
	prometheus.MustRegister(UpstreamRequests, UpstreamLatency, CacheLookups, Revalidations, ActiveSessions, StaleResults)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
