// Package metrics defines custom Prometheus metrics for TrackStore.
package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// registerOnce ensures Register() is idempotent.
var registerOnce sync.Once

// sizeBuckets are exponential buckets for request/response size histograms (bytes).
var sizeBuckets = []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304, 16777216, 67108864}

// HTTP metrics (RED: Rate, Errors, Duration).
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackstore_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency in seconds by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trackstore_http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// HTTPRequestSize observes request body size in bytes.
	HTTPRequestSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trackstore_http_request_size_bytes",
			Help:    "Request body size in bytes",
			Buckets: sizeBuckets,
		},
		[]string{"method", "path"},
	)
)

// Ingestion and storage metrics.
var (
	// UploadsTotal counts upload workflows by outcome.
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackstore_uploads_total",
			Help: "Resource upload workflows by outcome",
		},
		[]string{"status"},
	)

	// DeletionsTotal counts per-identifier deletions by outcome.
	DeletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackstore_deletions_total",
			Help: "Per-identifier resource deletions by outcome",
		},
		[]string{"status"},
	)

	// CompensationsTotal counts compensation runs triggered by failed uploads.
	CompensationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trackstore_compensations_total",
			Help: "Compensation runs triggered by failed upload workflows",
		},
	)

	// PublishFailuresTotal counts event publishes that failed after the
	// producer's own retry policy.
	PublishFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trackstore_publish_failures_total",
			Help: "Event publish failures",
		},
	)

	// StorageOperationsTotal counts object store client operations by
	// operation name and outcome.
	StorageOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackstore_storage_operations_total",
			Help: "Object store client operations by outcome",
		},
		[]string{"operation", "status"},
	)

	// StorageRetriesTotal counts retried object store attempts by operation.
	StorageRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackstore_storage_retries_total",
			Help: "Retried object store attempts",
		},
		[]string{"operation"},
	)

	// StorageVerificationFailuresTotal counts post-operation verification
	// reads that disagreed with the operation's own acknowledgement.
	StorageVerificationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackstore_storage_verification_failures_total",
			Help: "Post-operation verification failures",
		},
		[]string{"operation"},
	)
)

// Register registers all TrackStore metrics with the default Prometheus
// registry. Safe to call multiple times.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPRequestSize,
			UploadsTotal,
			DeletionsTotal,
			CompensationsTotal,
			PublishFailuresTotal,
			StorageOperationsTotal,
			StorageRetriesTotal,
			StorageVerificationFailuresTotal,
		)
	})
}

// NormalizePath collapses numeric path segments so per-resource requests
// share one metric series (e.g. /resources/17 becomes /resources/{id}).
func NormalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
