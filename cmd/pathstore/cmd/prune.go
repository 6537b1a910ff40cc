package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathstore/pathstore/internal/logger"
	"github.com/pathstore/pathstore/pkg/filestore/s3"
)

var pruneCmd = &cobra.Command{
	Use:   "prune <pattern>",
	Short: "Remove all entries matching a glob pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	pattern := args[0]

	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	// S3 supports server-side batch deletion
	if s3Store, ok := store.(*s3.Store); ok {
		failures, err := s3Store.DeleteMatching(ctx, pattern)
		if err != nil {
			return err
		}
		for key, keyErr := range failures {
			logger.Warn("Failed to prune %q: %v", key, keyErr)
		}
		if len(failures) > 0 {
			return fmt.Errorf("failed to prune %d entries", len(failures))
		}
		fmt.Fprintln(os.Stderr, "Pruned matching entries")
		return nil
	}

	searcher, err := asSearcher(store)
	if err != nil {
		return err
	}

	entries, err := searcher.Search(ctx, pattern)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := store.Delete(ctx, entry.Key()); err != nil {
			return fmt.Errorf("failed to prune %q: %w", entry.Key(), err)
		}
	}

	fmt.Fprintf(os.Stderr, "Pruned %d entries\n", len(entries))
	return nil
}
