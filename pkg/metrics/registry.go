// Package metrics provides Prometheus metrics collection for pathstore
// components.
//
// All metrics are optional. If InitRegistry is never called, the constructors
// return nil and components fall back to built-in no-op implementations with
// zero overhead, so pathstore runs identically with or without metrics
// collection enabled.
//
// Usage:
//
//	// Initialize the global registry (typically in main.go)
//	metrics.InitRegistry()
//
//	// Create metrics for components
//	storeMetrics := metrics.NewStoreMetrics()
//
//	// Or pass nil for no-op behavior
//	store := fs.New(baseDir) // no metrics
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// registry is the global Prometheus registry for all pathstore metrics.
	// Write-once via registryOnce, read-many afterward.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry. Safe to call more
// than once; subsequent calls are ignored. If never called, GetRegistry
// returns nil and all metrics constructors return no-op implementations.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry, or nil when metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return registry != nil
}
