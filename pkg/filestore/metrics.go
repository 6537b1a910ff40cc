package filestore

import "time"

// Metrics is the instrumentation hook implemented by pkg/metrics. Backends
// accept a Metrics instance at construction; a nil instance selects the
// built-in no-op implementation, so callers never need to guard calls.
type Metrics interface {
	// ObserveOperation records a completed store operation ("add", "move",
	// "copy", "get", "delete") with its outcome and duration.
	ObserveOperation(op string, err error, elapsed time.Duration)

	// ObserveRepair records one lazy self-repair: a partial entry and its
	// in-progress marker removed on read.
	ObserveRepair()

	// ObserveSearch records a completed search with its match count and
	// duration.
	ObserveSearch(matches int, elapsed time.Duration)
}

// EnsureMetrics returns m, or the no-op implementation when m is nil.
func EnsureMetrics(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, error, time.Duration) {}
func (noopMetrics) ObserveRepair()                                {}
func (noopMetrics) ObserveSearch(int, time.Duration)              {}
