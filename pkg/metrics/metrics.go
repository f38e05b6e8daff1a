package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	// Store Metrics
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of store operations by outcome",
		},
		[]string{"op", "result"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Store operation latency including backend delay",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"op"},
	)

	StoreSnapshotRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_snapshot_recoveries_total",
			Help: "Number of unreadable snapshots replaced by the seed dataset",
		},
	)

	StoreSnapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_snapshot_bytes",
			Help: "Size of the last persisted snapshot in bytes",
		},
	)

	// Query Cache Metrics
	QueryCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querycache_hits_total",
			Help: "Query cache lookups served from a fresh entry",
		},
		[]string{"key"},
	)

	QueryCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querycache_misses_total",
			Help: "Query cache lookups that had to fetch",
		},
		[]string{"key"},
	)

	QueryCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querycache_invalidations_total",
			Help: "Query cache entries invalidated after mutations",
		},
		[]string{"key"},
	)

	// Rate Limiting Metrics
	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Total number of rate limit violations",
		},
		[]string{"endpoint"},
	)

	// Business Metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"},
	)

	SignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Total number of accounts created",
		},
	)

	ActivityRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_registrations_total",
			Help: "Registration mutations by kind",
		},
		[]string{"action"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type", "code"},
	)
)

func RecordStoreOperation(op string, duration float64, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StoreOperationsTotal.WithLabelValues(op, result).Inc()
	StoreOperationDuration.WithLabelValues(op).Observe(duration)
}

func IncrementSnapshotRecoveries() {
	StoreSnapshotRecoveries.Inc()
}

func SetSnapshotBytes(size int) {
	StoreSnapshotBytes.Set(float64(size))
}

func IncrementCacheHits(key string) {
	QueryCacheHits.WithLabelValues(key).Inc()
}

func IncrementCacheMisses(key string) {
	QueryCacheMisses.WithLabelValues(key).Inc()
}

func IncrementCacheInvalidations(key string) {
	QueryCacheInvalidations.WithLabelValues(key).Inc()
}

// Rate limiting helpers
func IncrementRateLimitExceeded(endpoint string) {
	RateLimitExceeded.WithLabelValues(endpoint).Inc()
}

// Business helpers
func RecordLoginAttempt(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	LoginAttempts.WithLabelValues(status).Inc()
}

func IncrementSignups() {
	SignupsTotal.Inc()
}

func RecordRegistrationAction(action string) {
	ActivityRegistrationsTotal.WithLabelValues(action).Inc()
}

// Error helpers
func RecordError(errorType, errorCode string) {
	ErrorsTotal.WithLabelValues(errorType, errorCode).Inc()
}
