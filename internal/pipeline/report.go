package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathanvkeller/lease-analysis/internal/domain"
)

// Report is the structured end-of-run summary. Field names match the
// on-disk JSON report format.
type Report struct {
	Timestamp      string           `json:"timestamp"`
	RunID          string           `json:"run_id"`
	ExecutionStats ExecutionStats   `json:"execution_stats"`
	UsageStats     UsageStats       `json:"usage_stats"`
	Errors         []domain.Failure `json:"errors"`
}

// ExecutionStats counts what the run did.
type ExecutionStats struct {
	TotalLeases          int    `json:"total_leases"`
	TotalPrompts         int    `json:"total_prompts"`
	TotalCombinations    int    `json:"total_combinations"`
	ProcessedCombinations int   `json:"processed_combinations"`
	Successful           int    `json:"successful"`
	Errors               int    `json:"errors"`
	TotalProcessingTime  string `json:"total_processing_time"`
}

// UsageStats reports token consumption and estimated spend.
type UsageStats struct {
	TotalTokensInput  int64  `json:"total_tokens_input"`
	TotalTokensOutput int64  `json:"total_tokens_output"`
	TotalTokens       int64  `json:"total_tokens"`
	EstimatedCost     string `json:"estimated_cost"`
}

// Finalize builds the report from a finished ledger.
func Finalize(ledger *domain.RunLedger) *Report {
	failures := ledger.Failures
	if failures == nil {
		failures = []domain.Failure{}
	}

	return &Report{
		Timestamp: ledger.FinishedAt.Format("2006-01-02 15:04:05"),
		RunID:     ledger.RunID.String(),
		ExecutionStats: ExecutionStats{
			TotalLeases:           ledger.TotalDocuments,
			TotalPrompts:          ledger.TotalPrompts,
			TotalCombinations:     ledger.TotalPairs(),
			ProcessedCombinations: ledger.Attempted,
			Successful:            ledger.Succeeded,
			Errors:                ledger.Failed,
			TotalProcessingTime:   formatElapsed(ledger.Elapsed()),
		},
		UsageStats: UsageStats{
			TotalTokensInput:  ledger.InputTokens,
			TotalTokensOutput: ledger.OutputTokens,
			TotalTokens:       ledger.InputTokens + ledger.OutputTokens,
			EstimatedCost:     fmt.Sprintf("$%.4f", ledger.EstimatedCost),
		},
		Errors: failures,
	}
}

// Markdown renders the report as a deterministic markdown document.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# Lease Analysis Summary Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.Timestamp)

	b.WriteString("## Execution Statistics\n\n")
	fmt.Fprintf(&b, "- Total lease documents: %d\n", r.ExecutionStats.TotalLeases)
	fmt.Fprintf(&b, "- Total prompts: %d\n", r.ExecutionStats.TotalPrompts)
	fmt.Fprintf(&b, "- Total combinations: %d\n", r.ExecutionStats.TotalCombinations)
	fmt.Fprintf(&b, "- Processed combinations: %d\n", r.ExecutionStats.ProcessedCombinations)
	fmt.Fprintf(&b, "- Successful: %d\n", r.ExecutionStats.Successful)
	fmt.Fprintf(&b, "- Errors: %d\n", r.ExecutionStats.Errors)
	fmt.Fprintf(&b, "- Total processing time: %s\n\n", r.ExecutionStats.TotalProcessingTime)

	b.WriteString("## Usage Statistics\n\n")
	fmt.Fprintf(&b, "- Total input tokens: %d\n", r.UsageStats.TotalTokensInput)
	fmt.Fprintf(&b, "- Total output tokens: %d\n", r.UsageStats.TotalTokensOutput)
	fmt.Fprintf(&b, "- Total tokens: %d\n", r.UsageStats.TotalTokens)
	fmt.Fprintf(&b, "- Estimated cost: %s\n\n", r.UsageStats.EstimatedCost)

	if len(r.Errors) > 0 {
		b.WriteString("## Errors\n\n")
		for i, failure := range r.Errors {
			fmt.Fprintf(&b, "### Error %d\n\n", i+1)
			fmt.Fprintf(&b, "- Lease file: `%s`\n", failure.Document)
			fmt.Fprintf(&b, "- Prompt: `%s`\n", failure.Prompt)
			fmt.Fprintf(&b, "- Error message: `%s`\n\n", failure.Error)
		}
	}

	return b.String()
}

// Write persists the structured and rendered reports together under
// outputRoot/summaries. Reports are written exactly once, at run end.
func (r *Report) Write(outputRoot string, finishedAt time.Time) (jsonPath, mdPath string, err error) {
	summariesDir := filepath.Join(outputRoot, "summaries")
	if err := os.MkdirAll(summariesDir, 0o755); err != nil {
		return "", "", domain.IOError("create summaries folder", err)
	}

	suffix := finishedAt.Format("20060102_150405")
	jsonPath = filepath.Join(summariesDir, fmt.Sprintf("summary_report_%s.json", suffix))
	mdPath = filepath.Join(summariesDir, fmt.Sprintf("summary_report_%s.md", suffix))

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", "", domain.IOError("write JSON report", err)
	}

	if err := os.WriteFile(mdPath, []byte(r.Markdown()), 0o644); err != nil {
		return "", "", domain.IOError("write markdown report", err)
	}

	return jsonPath, mdPath, nil
}

// formatElapsed renders a duration as HH:MM:SS.
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
