package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <key>",
	Short: "Write an entry's content to standard output",
	Args:  cobra.ExactArgs(1),
	RunE:  runCat,
}

func init() {
	rootCmd.AddCommand(catCmd)
}

func runCat(cmd *cobra.Command, args []string) error {
	key := args[0]

	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	entry, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("entry %q not found", key)
	}

	r, err := entry.Open(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(os.Stdout, r)
	return err
}
