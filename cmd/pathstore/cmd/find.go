package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <pattern>",
	Short: "List entries matching a glob pattern",
	Long: "List entries whose keys match an ant-style glob pattern. " +
		"Use * for a single path segment, ** for any number of segments, " +
		"and ? for a single character. In-progress entries are excluded.",
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	pattern := args[0]

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

	entries, err := searcher.Search(ctx, pattern)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fmt.Println(entry.Key())
	}

	if len(entries) == 0 {
		fmt.Println("(no entries)")
	}

	return nil
}
