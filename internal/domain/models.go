// Package domain holds the core types shared by the lease processing
// pipeline: documents, prompts, gateway call results, and the run ledger.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a single lease file discovered at run start. Identity is the
// filename stem; the file itself stays untouched until it is relocated to a
// terminal folder at the end of its processing.
type Document struct {
	Name string // original filename, e.g. "office-lease.pdf"
	Stem string // filename without extension
	Path string // absolute or run-relative source path
}

// Prompt is one analysis instruction applied to every document in a run.
// The label names the output folder that collects this prompt's results.
type Prompt struct {
	Label       string
	Instruction string
	SourceFile  string
}

// Payload carries the document content handed to the inference gateway.
// A PDF is rendered to one PNG part per page; anything already image-shaped
// is passed through as-is.
type Payload struct {
	MediaType string // "image/png" or "application/pdf"
	Parts     [][]byte
}

// CallResult is the outcome of a single gateway call. Failures are values,
// never panics: the pipeline branches on Success and treats every failure
// mode (transport, auth, rate limit, refusal) identically.
type CallResult struct {
	Success      bool
	Text         string
	Model        string // model identifier echoed by the API
	InputTokens  int
	OutputTokens int
	ErrMessage   string
}

// Outcome records one attempted (document, prompt) pair. Exactly one Outcome
// exists per pair that was attempted; pairs after an aborted document are
// never attempted and have none.
type Outcome struct {
	Document     string
	Prompt       string
	Success      bool
	InputTokens  int
	OutputTokens int
	Cost         float64
	ErrMessage   string
}

// Failure identifies a failed pair in the run report.
type Failure struct {
	Document string `json:"lease"`
	Prompt   string `json:"prompt"`
	Error    string `json:"error"`
}

// RunLedger is the run-scoped accumulator of usage, cost, and outcome
// counts. It is owned and mutated exclusively by the pipeline processor for
// the duration of one run; cumulative cost is monotonically non-decreasing
// and always equals the sum of recorded outcome costs.
type RunLedger struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time

	TotalDocuments int
	TotalPrompts   int

	Attempted int
	Succeeded int
	Failed    int

	InputTokens   int64
	OutputTokens  int64
	EstimatedCost float64

	BudgetExhausted bool

	Outcomes []Outcome
	Failures []Failure
}

// NewRunLedger creates an empty ledger for a run over the given inputs.
func NewRunLedger(totalDocuments, totalPrompts int) *RunLedger {
	return &RunLedger{
		RunID:          uuid.New(),
		StartedAt:      time.Now(),
		TotalDocuments: totalDocuments,
		TotalPrompts:   totalPrompts,
	}
}

// Record adds one outcome to the ledger and updates the derived counters.
func (l *RunLedger) Record(o Outcome) {
	l.Attempted++
	l.InputTokens += int64(o.InputTokens)
	l.OutputTokens += int64(o.OutputTokens)
	l.EstimatedCost += o.Cost

	if o.Success {
		l.Succeeded++
	} else {
		l.Failed++
		l.Failures = append(l.Failures, Failure{
			Document: o.Document,
			Prompt:   o.Prompt,
			Error:    o.ErrMessage,
		})
	}

	l.Outcomes = append(l.Outcomes, o)
}

// TotalPairs is the theoretical pair count for the run, independent of how
// many pairs were actually attempted.
func (l *RunLedger) TotalPairs() int {
	return l.TotalDocuments * l.TotalPrompts
}

// Elapsed is the wall time between run start and finish.
func (l *RunLedger) Elapsed() time.Duration {
	return l.FinishedAt.Sub(l.StartedAt)
}
