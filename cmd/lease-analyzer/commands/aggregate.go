package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathanvkeller/lease-analysis/cmd/lease-analyzer/ui"
	"github.com/jonathanvkeller/lease-analysis/internal/aggregate"
	"github.com/jonathanvkeller/lease-analysis/internal/config"
	"github.com/jonathanvkeller/lease-analysis/internal/observability"
)

var aggregateOutputDir string

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate per-lease clause outputs into summary files",
	Long: `Merge the markdown files of every clause folder under the output root
into one aggregate file per clause, skipping refused outputs and dropping
status/assessment sections. Results land in output/aggregate.`,
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateOutputDir, "output", "", "output folder override")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if aggregateOutputDir != "" {
		cfg.Folders.Output = aggregateOutputDir
	}

	ui.InitUI(noColor, verbose)

	log := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "lease-analyzer",
	})

	spin := ui.NewSpinner("Aggregating clause folders...")
	spin.Start()

	written, err := aggregate.NewAggregator(log).Root(cfg.Folders.Output)
	spin.Stop()

	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	for _, path := range written {
		ui.Info("Aggregate file created: %s", path)
	}
	ui.Success("Aggregated %d clause folder(s)", len(written))

	return nil
}
