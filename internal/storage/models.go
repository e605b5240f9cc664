// Package storage persists run history in a local SQLite database.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord is one finished batch run.
type RunRecord struct {
	ID              uuid.UUID
	StartedAt       time.Time
	FinishedAt      time.Time
	Model           string
	Documents       int
	Prompts         int
	Attempted       int
	Succeeded       int
	Failed          int
	InputTokens     int64
	OutputTokens    int64
	EstimatedCost   float64
	BudgetExhausted bool
	ReportPath      string
}

// FailureRecord is one failed pair belonging to a run.
type FailureRecord struct {
	RunID    uuid.UUID
	Document string
	Prompt   string
	Error    string
}
