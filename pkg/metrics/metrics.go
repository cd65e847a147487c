// Package metrics provides Prometheus metrics for the aggregation system.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AdapterFetchesTotal is a counter of adapter fetch attempts by outcome.
	AdapterFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_fetches_total",
			Help: "Total number of upstream adapter fetches",
		},
		[]string{"adapter", "outcome"},
	)

	// AdapterFetchDuration is a histogram of adapter fetch durations.
	AdapterFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adapter_fetch_duration_seconds",
			Help:    "Duration of upstream adapter fetches",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"adapter"},
	)

	// RefreshCyclesTotal is a counter of refresh cycles by schedule and status.
	RefreshCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_cycles_total",
			Help: "Total number of refresh cycles per schedule",
		},
		[]string{"schedule", "status"},
	)

	// RefreshCycleSkipsTotal is a counter of ticks skipped because a cycle was still running.
	RefreshCycleSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_cycle_skips_total",
			Help: "Total number of scheduler ticks skipped due to an in-flight cycle",
		},
		[]string{"schedule"},
	)

	// RefreshCycleDuration is a histogram of refresh cycle durations.
	RefreshCycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refresh_cycle_duration_seconds",
			Help:    "Duration of refresh cycles",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"schedule"},
	)

	// CacheWritesTotal is a counter of cache writes by dataset and status.
	CacheWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_writes_total",
			Help: "Total number of cache writes per dataset",
		},
		[]string{"dataset", "status"},
	)

	// SnapshotStalenessSeconds is a gauge of time since the last successful refresh per dataset.
	SnapshotStalenessSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "snapshot_staleness_seconds",
			Help: "Time since the last successful refresh for a dataset",
		},
		[]string{"dataset"},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint"},
	)

	// WebSocketClients is a gauge of currently connected WebSocket clients.
	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Number of connected WebSocket clients",
		},
	)
)

// Init registers all metrics with the default Prometheus registry.
func Init() {
	prometheus.MustRegister(
		AdapterFetchesTotal,
		AdapterFetchDuration,
		RefreshCyclesTotal,
		RefreshCycleSkipsTotal,
		RefreshCycleDuration,
		CacheWritesTotal,
		SnapshotStalenessSeconds,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		WebSocketClients,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordAdapterFetch records one adapter fetch attempt.
func RecordAdapterFetch(adapter, outcome string, duration time.Duration) {
	AdapterFetchesTotal.WithLabelValues(adapter, outcome).Inc()
	AdapterFetchDuration.WithLabelValues(adapter).Observe(duration.Seconds())
}

// RecordCycle records a completed refresh cycle.
func RecordCycle(schedule, status string, duration time.Duration) {
	RefreshCyclesTotal.WithLabelValues(schedule, status).Inc()
	RefreshCycleDuration.WithLabelValues(schedule).Observe(duration.Seconds())
}

// RecordCycleSkip records a tick skipped because the previous cycle was still running.
func RecordCycleSkip(schedule string) {
	RefreshCycleSkipsTotal.WithLabelValues(schedule).Inc()
}

// RecordCacheWrite records a cache write attempt.
func RecordCacheWrite(dataset, status string) {
	CacheWritesTotal.WithLabelValues(dataset, status).Inc()
}

// RecordStaleness records the observed staleness of a dataset at read time.
func RecordStaleness(dataset string, age time.Duration) {
	SnapshotStalenessSeconds.WithLabelValues(dataset).Set(age.Seconds())
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
