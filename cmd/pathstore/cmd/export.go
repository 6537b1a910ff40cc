package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathstore/pathstore/internal/archive"
)

var exportCmd = &cobra.Command{
	Use:   "export <pattern> <archive>",
	Short: "Export matching entries to a compressed archive",
	Long: "Export every entry matching the glob pattern to a zstd-compressed " +
		"tar archive. Use - as the archive path to write to standard output.",
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	pattern, archivePath := args[0], args[1]

	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	searcher, err := asSearcher(store)
	if err != nil {
		return err
	}

	var w io.Writer
	if archivePath == "-" {
		w = os.Stdout
	} else {
		f, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	count, err := archive.Export(ctx, searcher, pattern, w)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Exported %d entries\n", count)
	return nil
}
