// Package telemetry defines the Prometheus metrics exposed on /metrics.
// Metrics are registered with the default registry via promauto; recording
// helpers keep label handling in one place.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	archiveFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyshade",
		Name:      "archive_fetch_total",
		Help:      "Archive fetch attempts by field and outcome.",
	}, []string{"field", "success"})

	archiveFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "polyshade",
		Name:      "archive_fetch_duration_seconds",
		Help:      "Archive fetch round-trip latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"field"})

	fallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyshade",
		Name:      "fallback_series_total",
		Help:      "Synthetic fallback series generated after fetch failures.",
	})

	staleDiscardTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "polyshade",
		Name:      "stale_response_discarded_total",
		Help:      "Superseded fetch responses discarded by the generation guard.",
	})

	overlayResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "polyshade",
		Name:      "overlay_resolve_duration_seconds",
		Help:      "Time to resolve values and colors for all polygons.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5},
	})

	httpRequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyshade",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern, and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "polyshade",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveArchiveFetch records one archive fetch attempt.
func ObserveArchiveFetch(field string, success bool, duration time.Duration) {
	archiveFetchTotal.WithLabelValues(field, strconv.FormatBool(success)).Inc()
	archiveFetchDuration.WithLabelValues(field).Observe(duration.Seconds())
}

// CountFallback records a synthetic fallback series generation.
func CountFallback() {
	fallbackTotal.Inc()
}

// CountStaleDiscard records a fetch response rejected by the generation guard.
func CountStaleDiscard() {
	staleDiscardTotal.Inc()
}

// ObserveOverlayResolve records an overlay snapshot resolution pass.
func ObserveOverlayResolve(duration time.Duration) {
	overlayResolveDuration.Observe(duration.Seconds())
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
