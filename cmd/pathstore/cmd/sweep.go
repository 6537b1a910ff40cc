package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathstore/pathstore/pkg/filestore/fs"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove leftovers of interrupted writes",
	Long: "Scan the store for in-progress markers left behind by interrupted " +
		"writes and remove them together with their partial entries. Only " +
		"available for the filesystem backend.",
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	fsStore, ok := store.(*fs.Store)
	if !ok {
		return fmt.Errorf("sweep requires the filesystem backend, store type is %q", cfg.Store.Type)
	}

	repaired, err := fsStore.Sweep(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Swept %d interrupted entries\n", repaired)
	return nil
}
