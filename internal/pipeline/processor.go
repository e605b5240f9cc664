package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathanvkeller/lease-analysis/internal/domain"
	"github.com/jonathanvkeller/lease-analysis/internal/llm"
	"github.com/jonathanvkeller/lease-analysis/internal/observability"
)

// PayloadLoader renders a document into a gateway payload. Implemented by
// pdf.Converter; substituted with a stub in tests.
type PayloadLoader interface {
	Load(ctx context.Context, doc domain.Document) (domain.Payload, error)
}

// Config holds processor settings for one run.
type Config struct {
	OutputRoot     string
	ExceptionsRoot string
	Model          string
	MaxCostUSD     float64
}

// Processor drives the document × prompt cross product through the gateway.
// Execution is strictly sequential: the budget is a hard ceiling and must be
// checked between consecutive paid calls, which a single thread of control
// gives for free.
type Processor struct {
	gateway llm.Gateway
	loader  PayloadLoader
	tracker *Tracker
	cfg     Config
	log     *observability.Logger

	// OnProgress, when set, is called after every recorded outcome with the
	// attempted count and the theoretical pair total.
	OnProgress func(attempted, total int)
}

// NewProcessor creates a processor for one run.
func NewProcessor(gateway llm.Gateway, loader PayloadLoader, costs CostModel, cfg Config, log *observability.Logger) *Processor {
	if log == nil {
		log = observability.Nop()
	}

	return &Processor{
		gateway: gateway,
		loader:  loader,
		tracker: NewTracker(costs),
		cfg:     cfg,
		log:     log,
	}
}

// Run processes every document with every prompt, in enumeration order, and
// returns the finalized ledger. Per-pair failures are contained: they
// quarantine the document and never abort the run. Only the budget ceiling
// ends a run early, after the triggering outcome is fully recorded.
func (p *Processor) Run(ctx context.Context, docs []domain.Document, prompts []domain.Prompt) (*domain.RunLedger, error) {
	ledger := domain.NewRunLedger(len(docs), len(prompts))
	log := p.log.WithRun(ledger.RunID.String())
	defer func() { ledger.FinishedAt = time.Now() }()

	if len(docs) == 0 {
		log.Warn().Msg("no lease documents found, nothing to do")
		return ledger, nil
	}

	if len(prompts) == 0 {
		log.Warn().Msg("no prompt files found, nothing to do")
		return ledger, nil
	}

	log.Info().
		Int("documents", len(docs)).
		Int("prompts", len(prompts)).
		Float64("max_cost_usd", p.cfg.MaxCostUSD).
		Str("model", p.cfg.Model).
		Msg("starting batch run")

	for _, doc := range docs {
		docOK := true

		for _, prompt := range prompts {
			log.Info().
				Str("lease", doc.Name).
				Str("prompt", prompt.Label).
				Msg("processing pair")

			res := p.invoke(ctx, prompt, doc)

			if res.Success {
				before := p.tracker.Cost()
				cumulative := p.tracker.AddUsage(res.InputTokens, res.OutputTokens, p.cfg.Model)

				p.writeOutput(log, prompt.Label, doc.Stem, res)
				ledger.Record(domain.Outcome{
					Document:     doc.Name,
					Prompt:       prompt.Label,
					Success:      true,
					InputTokens:  res.InputTokens,
					OutputTokens: res.OutputTokens,
					Cost:         cumulative - before,
				})
				p.progress(ledger)

				log.Info().Float64("estimated_cost_usd", cumulative).Msg("current estimated cost")

				// The overrun is discovered only once the response and its
				// usage are known, so the check runs after the paid call.
				if p.tracker.IsOverBudget(p.cfg.MaxCostUSD) {
					ledger.BudgetExhausted = true
					log.Warn().
						Float64("estimated_cost_usd", cumulative).
						Float64("max_cost_usd", p.cfg.MaxCostUSD).
						Msg("cost limit reached, stopping run")
					return ledger, nil
				}

				continue
			}

			// Per-pair failure: record it, make it visible in the output
			// tree, and abort the remaining prompts for this document.
			log.Error().
				Str("lease", doc.Name).
				Str("prompt", prompt.Label).
				Str("error", res.ErrMessage).
				Msg("pair failed")

			p.writeOutput(log, prompt.Label, doc.Stem, res)
			ledger.Record(domain.Outcome{
				Document:   doc.Name,
				Prompt:     prompt.Label,
				Success:    false,
				ErrMessage: res.ErrMessage,
			})
			p.progress(ledger)

			docOK = false
			break
		}

		if docOK {
			p.relocate(log, doc, filepath.Join(p.cfg.OutputRoot, "processed"))
		} else {
			p.relocate(log, doc, p.cfg.ExceptionsRoot)
		}
	}

	log.Info().
		Int("attempted", ledger.Attempted).
		Int("succeeded", ledger.Succeeded).
		Int("failed", ledger.Failed).
		Float64("estimated_cost_usd", ledger.EstimatedCost).
		Msg("batch run complete")

	return ledger, nil
}

// invoke loads the document payload and calls the gateway. A load failure is
// folded into the same result shape as a gateway failure; the pipeline does
// not distinguish them.
func (p *Processor) invoke(ctx context.Context, prompt domain.Prompt, doc domain.Document) domain.CallResult {
	payload, err := p.loader.Load(ctx, doc)
	if err != nil {
		return domain.CallResult{Success: false, ErrMessage: err.Error()}
	}

	return p.gateway.Generate(ctx, prompt.Instruction, payload)
}

// writeOutput persists one pair's result under outputRoot/<label>/<stem>.md.
// Failures are written too, as a fixed error template, so nothing fails
// silently in the output tree. Write failures are logged, never fatal.
func (p *Processor) writeOutput(log *observability.Logger, label, stem string, res domain.CallResult) {
	dir := filepath.Join(p.cfg.OutputRoot, label)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error().Err(err).Str("folder", dir).Msg("failed to create output folder")
		return
	}

	path := filepath.Join(dir, stem+".md")

	content := res.Text
	if !res.Success {
		content = errorOutput(res.ErrMessage, time.Now())
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to write output file")
		return
	}

	log.Info().Str("path", path).Msg("saved output")
}

// relocate moves a document to its terminal folder with a single filesystem
// move. A failed move is logged and the run continues; the document stays in
// the source folder for operator follow-up.
func (p *Processor) relocate(log *observability.Logger, doc domain.Document, destDir string) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		log.Error().Err(err).Str("lease", doc.Name).Str("folder", destDir).Msg("failed to create destination folder")
		return
	}

	dest := filepath.Join(destDir, doc.Name)
	if err := os.Rename(doc.Path, dest); err != nil {
		log.Error().Err(err).Str("lease", doc.Name).Str("dest", dest).Msg("failed to move lease file")
		return
	}

	log.Info().Str("lease", doc.Name).Str("dest", dest).Msg("moved lease file")
}

func (p *Processor) progress(ledger *domain.RunLedger) {
	if p.OnProgress != nil {
		p.OnProgress(ledger.Attempted, ledger.TotalPairs())
	}
}

// errorOutput renders the fixed failure template written in place of a
// response.
func errorOutput(message string, now time.Time) string {
	return fmt.Sprintf(
		"# Error Processing Lease\n\n**Error Message:** %s\n\n**Time:** %s\n",
		message,
		now.Format("2006-01-02 15:04:05"),
	)
}
