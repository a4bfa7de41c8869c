package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Inbound chat events
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayscout_updates_total",
			Help: "Total number of inbound chat events",
		},
		[]string{"kind"},
	)

	updateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stayscout_update_duration_seconds",
			Help:    "Chat event handling duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// Search metrics
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayscout_searches_total",
			Help: "Total number of hotel searches",
		},
		[]string{"mode", "status"},
	)

	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stayscout_search_duration_seconds",
			Help:    "Hotel search duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// Upstream API metrics
	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayscout_upstream_requests_total",
			Help: "Total number of requests to the hotel-search service",
		},
		[]string{"op", "status"},
	)

	upstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stayscout_upstream_request_duration_seconds",
			Help:    "Hotel-search service request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// System metrics
	activeChats = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stayscout_active_chats",
			Help: "Number of chats with session state",
		},
	)

	initOnce sync.Once
)

// InitMetrics registers the Prometheus metrics.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			updatesTotal,
			updateDuration,
			searchesTotal,
			searchDuration,
			upstreamRequestsTotal,
			upstreamRequestDuration,
			activeChats,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordUpdate records one handled chat event.
func RecordUpdate(kind string, duration time.Duration) {
	updatesTotal.WithLabelValues(kind).Inc()
	updateDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordSearch records one completed or failed search.
func RecordSearch(mode, status string, duration time.Duration) {
	searchesTotal.WithLabelValues(mode, status).Inc()
	searchDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordUpstreamRequest records one request to the hotel-search service.
func RecordUpstreamRequest(op, status string, duration time.Duration) {
	upstreamRequestsTotal.WithLabelValues(op, status).Inc()
	upstreamRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetActiveChats sets the active chats gauge.
func SetActiveChats(count int) {
	activeChats.Set(float64(count))
}
