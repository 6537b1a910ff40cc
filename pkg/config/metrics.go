package config

import (
	"github.com/pathstore/pathstore/pkg/filestore"
	"github.com/pathstore/pathstore/pkg/metrics"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// StoreMetrics is the metrics sink for store operations (nil if disabled)
	StoreMetrics filestore.Metrics
}

// InitializeMetrics creates and initializes all metrics components based on
// configuration.
//
// If metrics are enabled:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates a Prometheus-backed metrics sink for store operations
//
// If metrics are disabled:
//   - Returns nil server and nil store metrics (stores fall back to no-op)
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		Port: cfg.Metrics.Port,
	})

	return &MetricsResult{
		Server:       server,
		StoreMetrics: metrics.NewStoreMetrics(),
	}
}
