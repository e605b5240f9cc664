package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathanvkeller/lease-analysis/cmd/lease-analyzer/ui"
	"github.com/jonathanvkeller/lease-analysis/internal/config"
	"github.com/jonathanvkeller/lease-analysis/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past processing runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ui.InitUI(noColor, verbose)

	db, err := storage.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer db.Close()

	records, err := storage.NewRunRepository(db).List(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(records) == 0 {
		ui.Info("No runs recorded yet")
		return nil
	}

	ui.Section("Run History")

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		status := "complete"
		if rec.BudgetExhausted {
			status = "budget stop"
		}
		rows = append(rows, []string{
			rec.ID.String()[:8],
			rec.StartedAt.Format("2006-01-02 15:04"),
			rec.Model,
			fmt.Sprintf("%d/%d", rec.Succeeded, rec.Attempted),
			fmt.Sprintf("%d", rec.Failed),
			fmt.Sprintf("$%.4f", rec.EstimatedCost),
			status,
		})
	}

	ui.Table(
		[]string{"Run", "Started", "Model", "Succeeded", "Failed", "Cost", "Status"},
		rows,
	)

	return nil
}
