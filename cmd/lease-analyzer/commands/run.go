package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathanvkeller/lease-analysis/cmd/lease-analyzer/ui"
	"github.com/jonathanvkeller/lease-analysis/internal/config"
	"github.com/jonathanvkeller/lease-analysis/internal/domain"
	"github.com/jonathanvkeller/lease-analysis/internal/llm"
	"github.com/jonathanvkeller/lease-analysis/internal/observability"
	"github.com/jonathanvkeller/lease-analysis/internal/pdf"
	"github.com/jonathanvkeller/lease-analysis/internal/pipeline"
	"github.com/jonathanvkeller/lease-analysis/internal/storage"
)

var (
	runMaxCost       float64
	runModel         string
	runLeasesDir     string
	runPromptsDir    string
	runOutputDir     string
	runExceptionsDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process all lease documents with all prompts",
	Long: `Run the batch pipeline: every lease PDF is analyzed with every prompt,
outputs land under the output folder per prompt label, processed leases move
to output/processed, failed leases move to the exceptions folder, and a
summary report is written at the end.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Float64Var(&runMaxCost, "max-cost", 100.0, "maximum spend in USD")
	runCmd.Flags().StringVar(&runModel, "model", "gpt-4o", "model to use")
	runCmd.Flags().StringVar(&runLeasesDir, "leases", "", "lease folder override")
	runCmd.Flags().StringVar(&runPromptsDir, "prompts", "", "prompt folder override")
	runCmd.Flags().StringVar(&runOutputDir, "output", "", "output folder override")
	runCmd.Flags().StringVar(&runExceptionsDir, "exceptions", "", "exceptions folder override")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRunOverrides(cmd, cfg)

	ui.InitUI(noColor, verbose)

	// Credential check happens before anything else touches the filesystem.
	apiKey, err := cfg.APIKey()
	if err != nil {
		return err
	}

	if err := cfg.EnsureFolders(); err != nil {
		return fmt.Errorf("bootstrap folders: %w", err)
	}

	log, closeLog, err := newRunLogger(cfg)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closeLog()

	ui.Section("Lease Analysis")
	ui.Info("Model: %s", cfg.Model)
	ui.Info("Maximum cost: $%.2f", cfg.MaxCostUSD)
	ui.Info("Lease folder: %s", cfg.Folders.Leases)
	ui.Info("Prompt folder: %s", cfg.Folders.Prompts)
	ui.Newline()

	docs, err := pipeline.ListDocuments(cfg.Folders.Leases)
	if err != nil {
		return err
	}

	prompts, err := pipeline.LoadPrompts(cfg.Folders.Prompts)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessor(
		llm.NewClient(apiKey, cfg.Model),
		pdf.NewConverter(),
		pipeline.DefaultCostModel(),
		pipeline.Config{
			OutputRoot:     cfg.Folders.Output,
			ExceptionsRoot: cfg.Folders.Exceptions,
			Model:          cfg.Model,
			MaxCostUSD:     cfg.MaxCostUSD,
		},
		log,
	)

	if len(docs) > 0 && len(prompts) > 0 {
		bar := ui.NewProgressBar(int64(len(docs)*len(prompts)), "Processing pairs")
		processor.OnProgress = func(attempted, total int) {
			bar.Set(int64(attempted))
		}
		defer bar.Finish()
	}

	ledger, err := processor.Run(ctx, docs, prompts)
	if err != nil {
		log.Error().Err(err).Msg("process failed")
		return fmt.Errorf("process failed: %w", err)
	}

	report := pipeline.Finalize(ledger)
	jsonPath, mdPath, err := report.Write(cfg.Folders.Output, ledger.FinishedAt)
	if err != nil {
		log.Error().Err(err).Msg("failed to write summary report")
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("path", mdPath).Msg("generated summary report")

	saveHistory(ctx, cfg, log, ledger, jsonPath)

	ui.Newline()
	ui.Section("Run Summary")
	ui.Table([]string{"Metric", "Value"}, [][]string{
		{"Documents", fmt.Sprintf("%d", ledger.TotalDocuments)},
		{"Prompts", fmt.Sprintf("%d", ledger.TotalPrompts)},
		{"Attempted pairs", fmt.Sprintf("%d", ledger.Attempted)},
		{"Succeeded", fmt.Sprintf("%d", ledger.Succeeded)},
		{"Failed", fmt.Sprintf("%d", ledger.Failed)},
		{"Input tokens", fmt.Sprintf("%d", ledger.InputTokens)},
		{"Output tokens", fmt.Sprintf("%d", ledger.OutputTokens)},
		{"Estimated cost", fmt.Sprintf("$%.4f", ledger.EstimatedCost)},
		{"Elapsed", ui.FormatDuration(ledger.Elapsed())},
	})
	ui.Newline()

	if ledger.BudgetExhausted {
		ui.Warning("Run stopped early: cost limit reached")
	}
	if ledger.Failed > 0 {
		ui.Warning("%d pair(s) failed; see %s", ledger.Failed, mdPath)
	}
	ui.Success("Reports written to %s and %s", jsonPath, mdPath)

	return nil
}

// applyRunOverrides lets explicit flags win over the config file.
func applyRunOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("max-cost") {
		cfg.MaxCostUSD = runMaxCost
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = runModel
	}
	if runLeasesDir != "" {
		cfg.Folders.Leases = runLeasesDir
	}
	if runPromptsDir != "" {
		cfg.Folders.Prompts = runPromptsDir
	}
	if runOutputDir != "" {
		cfg.Folders.Output = runOutputDir
	}
	if runExceptionsDir != "" {
		cfg.Folders.Exceptions = runExceptionsDir
	}
}

// newRunLogger builds the run logger writing to both stderr and a
// timestamped log file under the logs folder.
func newRunLogger(cfg *config.Config) (*observability.Logger, func(), error) {
	logPath := filepath.Join(cfg.Folders.Logs,
		fmt.Sprintf("processing_%s.log", time.Now().Format("20060102_150405")))

	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Observability.LogLevel
	if verbose {
		level = "debug"
	}

	log := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      cfg.Observability.LogFormat,
		Output:      io.MultiWriter(os.Stderr, logFile),
		ServiceName: "lease-analyzer",
	})

	return log, func() { _ = logFile.Close() }, nil
}

// saveHistory records the finished run in the local history database.
// Failures here are logged and never fail the run.
func saveHistory(ctx context.Context, cfg *config.Config, log *observability.Logger, ledger *domain.RunLedger, reportPath string) {
	if !cfg.History.Enabled {
		return
	}

	db, err := storage.Open(cfg.History.Path)
	if err != nil {
		log.Error().Err(err).Msg("failed to open run history database")
		return
	}
	defer db.Close()

	failures := make([]storage.FailureRecord, 0, len(ledger.Failures))
	for _, f := range ledger.Failures {
		failures = append(failures, storage.FailureRecord{
			RunID:    ledger.RunID,
			Document: f.Document,
			Prompt:   f.Prompt,
			Error:    f.Error,
		})
	}

	rec := &storage.RunRecord{
		ID:              ledger.RunID,
		StartedAt:       ledger.StartedAt,
		FinishedAt:      ledger.FinishedAt,
		Model:           cfg.Model,
		Documents:       ledger.TotalDocuments,
		Prompts:         ledger.TotalPrompts,
		Attempted:       ledger.Attempted,
		Succeeded:       ledger.Succeeded,
		Failed:          ledger.Failed,
		InputTokens:     ledger.InputTokens,
		OutputTokens:    ledger.OutputTokens,
		EstimatedCost:   ledger.EstimatedCost,
		BudgetExhausted: ledger.BudgetExhausted,
		ReportPath:      reportPath,
	}

	if err := storage.NewRunRepository(db).Save(ctx, rec, failures); err != nil {
		log.Error().Err(err).Msg("failed to record run history")
		return
	}

	log.Info().Str("run_id", ledger.RunID.String()).Msg("run recorded in history")
}
