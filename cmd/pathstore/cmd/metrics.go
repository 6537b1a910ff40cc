package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve Prometheus metrics over HTTP",
	Long: "Run the Prometheus metrics HTTP server until interrupted. " +
		"Requires metrics to be enabled in the configuration.",
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	if cfgMetrics.Server == nil {
		return fmt.Errorf("metrics are disabled, enable them with metrics.enabled or PATHSTORE_METRICS_ENABLED")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- cfgMetrics.Server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintf(os.Stderr, "Metrics server running on port %d. Press Ctrl+C to stop.\n", cfgMetrics.Server.Port())

	select {
	case <-sigChan:
		cancel()
		return <-serverDone
	case err := <-serverDone:
		return err
	}
}
