package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pathstore/pathstore/pkg/filestore"
)

var (
	putMove  bool
	putStdin bool
)

var putCmd = &cobra.Command{
	Use:   "put <key> [file]",
	Short: "Store a file under a key",
	Long: "Store a file under a relative path key. With --move the source " +
		"file is moved into the store; with --stdin content is read from " +
		"standard input.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().BoolVar(&putMove, "move", false, "move the source file instead of copying")
	putCmd.Flags().BoolVar(&putStdin, "stdin", false, "read content from standard input")
	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	key := args[0]

	if putStdin && putMove {
		return fmt.Errorf("--stdin and --move are mutually exclusive")
	}
	if putStdin && len(args) > 1 {
		return fmt.Errorf("--stdin does not take a file argument")
	}
	if !putStdin && len(args) < 2 {
		return fmt.Errorf("a source file is required unless --stdin is set")
	}

	ctx := context.Background()
	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var entry filestore.Entry
	switch {
	case putStdin:
		entry, err = store.Add(ctx, key, func(dest string) error {
			f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, os.Stdin); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		})
	case putMove:
		entry, err = store.Move(ctx, key, args[1])
	default:
		entry, err = store.Copy(ctx, key, args[1])
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Stored %s\n", entry.Key())
	return nil
}
