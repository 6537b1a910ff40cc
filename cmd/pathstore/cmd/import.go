package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathstore/pathstore/internal/archive"
)

var importCmd = &cobra.Command{
	Use:   "import <archive>",
	Short: "Import entries from a compressed archive",
	Long: "Import every file from a zstd-compressed tar archive into the " +
		"store. Use - as the archive path to read from standard input.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var r io.Reader
	if archivePath == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(archivePath)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	count, err := archive.Import(ctx, store, r)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Imported %d entries\n", count)
	return nil
}
