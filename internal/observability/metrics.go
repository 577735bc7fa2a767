package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wlocate",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wlocate",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wlocate",
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Positioning service calls by outcome.",
		},
		[]string{"outcome"},
	)
	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wlocate",
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Positioning service call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wlocate",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "BSSID cache lookups.",
		},
		[]string{"hit"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, upstreamCalls, upstreamDuration, cacheLookups)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordUpstreamCall(outcome string, duration time.Duration) {
	RegisterMetrics()
	upstreamCalls.WithLabelValues(outcome).Inc()
	upstreamDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func RecordCacheLookup(hit bool) {
	RegisterMetrics()
	cacheLookups.WithLabelValues(strconv.FormatBool(hit)).Inc()
}
