package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// storeMetrics is the Prometheus implementation of filestore.Metrics.
//
// It collects:
//   - Operation counts by operation and outcome
//   - Operation latencies
//   - Lazy self-repair counts
//   - Search latencies and match counts
type storeMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	repairs           prometheus.Counter
	searchDuration    prometheus.Histogram
	searchMatches     prometheus.Histogram
}

// NewStoreMetrics creates a Prometheus-backed filestore.Metrics instance.
//
// Returns nil when metrics are not enabled (InitRegistry not called), which
// causes stores to use their built-in no-op implementation.
func NewStoreMetrics() filestore.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &storeMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pathstore_operations_total",
				Help: "Total number of filestore operations",
			},
			[]string{"op", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pathstore_operation_duration_seconds",
				Help:    "Duration of filestore operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		repairs: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "pathstore_repairs_total",
				Help: "Total number of partial entries repaired on read",
			},
		),
		searchDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pathstore_search_duration_seconds",
				Help:    "Duration of filestore searches in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		searchMatches: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pathstore_search_matches",
				Help:    "Number of entries matched per search",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}
}

func (m *storeMetrics) ObserveOperation(op string, err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operations.WithLabelValues(op, status).Inc()
	m.operationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *storeMetrics) ObserveRepair() {
	m.repairs.Inc()
}

func (m *storeMetrics) ObserveSearch(matches int, elapsed time.Duration) {
	m.searchDuration.Observe(elapsed.Seconds())
	m.searchMatches.Observe(float64(matches))
}
