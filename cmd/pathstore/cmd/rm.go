package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <key>...",
	Short: "Remove entries from the store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, key := range args {
		if err := store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to remove %q: %w", key, err)
		}
		fmt.Fprintf(os.Stderr, "Removed %s\n", key)
	}

	return nil
}
