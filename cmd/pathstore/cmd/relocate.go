package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathstore/pathstore/pkg/filestore/fs"
)

var relocateCmd = &cobra.Command{
	Use:   "relocate <new-root>",
	Short: "Move the store to a new root directory",
	Long: "Move the whole filesystem store to a new root directory. If the " +
		"current root does not exist yet, only the configured location is " +
		"updated. Only available for the filesystem backend.",
	Args: cobra.ExactArgs(1),
	RunE: runRelocate,
}

func init() {
	rootCmd.AddCommand(relocateCmd)
}

func runRelocate(cmd *cobra.Command, args []string) error {
	newRoot := args[0]

	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	fsStore, ok := store.(*fs.Store)
	if !ok {
		return fmt.Errorf("relocate requires the filesystem backend, store type is %q", cfg.Store.Type)
	}

	oldRoot := fsStore.BaseDir()
	if err := fsStore.Relocate(ctx, newRoot); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Relocated store from %s to %s\n", oldRoot, fsStore.BaseDir())
	fmt.Fprintln(os.Stderr, "Update the configured store path to match the new location.")
	return nil
}
