package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathstore/pathstore/internal/logger"
	"github.com/pathstore/pathstore/pkg/config"
	"github.com/pathstore/pathstore/pkg/filestore"
)

var (
	cfgFile   string
	storePath string

	cfg        *config.Config
	cfgMetrics *config.MetricsResult
)

var rootCmd = &cobra.Command{
	Use:   "pathstore",
	Short: "Path-keyed file store CLI",
	Long: "CLI for managing a path-keyed file store: files stored under " +
		"relative path keys with crash-safe writes and glob search.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/pathstore/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "filesystem store root (overrides config)")
}

// initialize loads configuration and sets up logging and metrics.
func initialize() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	// --store forces the filesystem backend at the given root
	if storePath != "" {
		cfg.Store.Type = "filesystem"
		cfg.Store.Filesystem["path"] = storePath
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return err
	}

	cfgMetrics = config.InitializeMetrics(cfg)
	return nil
}

// openStore builds the configured store. The returned cleanup function
// closes backends that hold resources (BadgerDB) and must always be called.
func openStore(ctx context.Context) (filestore.Store, func(), error) {
	store, err := config.CreateStore(ctx, &cfg.Store, cfgMetrics.StoreMetrics)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if closer, ok := store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to close store: %v", err)
			}
		}
	}
	return store, cleanup, nil
}

// asSearcher returns the store's search capability or an error when the
// configured backend does not support it.
func asSearcher(store filestore.Store) (filestore.Searcher, error) {
	searcher, ok := store.(filestore.Searcher)
	if !ok {
		return nil, fmt.Errorf("store type %q does not support search", cfg.Store.Type)
	}
	return searcher, nil
}
