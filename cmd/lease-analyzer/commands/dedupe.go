package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathanvkeller/lease-analysis/cmd/lease-analyzer/ui"
	"github.com/jonathanvkeller/lease-analysis/internal/aggregate"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <aggregate-file>",
	Short: "Remove duplicate bullet lines from an aggregate file",
	Long: `Deduplicate an aggregate markdown file in place. Each section starts with
a "## " header; duplicate consecutive bullet lines within a section are
removed. The file is replaced atomically.`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
}

func runDedupe(cmd *cobra.Command, args []string) error {
	ui.InitUI(noColor, verbose)

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	if err := aggregate.DeduplicateFile(path); err != nil {
		return fmt.Errorf("deduplicate %s: %w", path, err)
	}

	ui.Success("Deduplicated file saved: %s", path)
	return nil
}
