package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a run record doesn't exist.
var ErrNotFound = errors.New("record not found")

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	started_at       TIMESTAMP NOT NULL,
	finished_at      TIMESTAMP NOT NULL,
	model            TEXT NOT NULL,
	documents        INTEGER NOT NULL,
	prompts          INTEGER NOT NULL,
	attempted        INTEGER NOT NULL,
	succeeded        INTEGER NOT NULL,
	failed           INTEGER NOT NULL,
	input_tokens     INTEGER NOT NULL,
	output_tokens    INTEGER NOT NULL,
	estimated_cost   REAL NOT NULL,
	budget_exhausted INTEGER NOT NULL DEFAULT 0,
	report_path      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS run_failures (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	document TEXT NOT NULL,
	prompt   TEXT NOT NULL,
	error    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_failures_run_id ON run_failures(run_id);
`

// Open opens (creating if needed) the run-history database at path and
// ensures the schema exists.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database folder: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}

// RunRepository handles run-history persistence.
type RunRepository struct {
	db DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save inserts one finished run and its failure records.
func (r *RunRepository) Save(ctx context.Context, rec *RunRecord, failures []FailureRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	query := `
		INSERT INTO runs (id, started_at, finished_at, model, documents, prompts,
			attempted, succeeded, failed, input_tokens, output_tokens,
			estimated_cost, budget_exhausted, report_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID.String(), rec.StartedAt, rec.FinishedAt, rec.Model,
		rec.Documents, rec.Prompts, rec.Attempted, rec.Succeeded, rec.Failed,
		rec.InputTokens, rec.OutputTokens, rec.EstimatedCost,
		rec.BudgetExhausted, rec.ReportPath,
	)
	if err != nil {
		return err
	}

	for _, f := range failures {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO run_failures (run_id, document, prompt, error) VALUES ($1, $2, $3, $4)`,
			rec.ID.String(), f.Document, f.Prompt, f.Error,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// List returns the most recent runs, newest first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, started_at, finished_at, model, documents, prompts,
			attempted, succeeded, failed, input_tokens, output_tokens,
			estimated_cost, budget_exhausted, report_path
		FROM runs ORDER BY started_at DESC LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var id string
		err := rows.Scan(
			&id, &rec.StartedAt, &rec.FinishedAt, &rec.Model,
			&rec.Documents, &rec.Prompts, &rec.Attempted, &rec.Succeeded, &rec.Failed,
			&rec.InputTokens, &rec.OutputTokens, &rec.EstimatedCost,
			&rec.BudgetExhausted, &rec.ReportPath,
		)
		if err != nil {
			return nil, err
		}
		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetByID retrieves one run by its identifier.
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	query := `
		SELECT id, started_at, finished_at, model, documents, prompts,
			attempted, succeeded, failed, input_tokens, output_tokens,
			estimated_cost, budget_exhausted, report_path
		FROM runs WHERE id = $1
	`
	rec := &RunRecord{}
	var rawID string
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID, &rec.StartedAt, &rec.FinishedAt, &rec.Model,
		&rec.Documents, &rec.Prompts, &rec.Attempted, &rec.Succeeded, &rec.Failed,
		&rec.InputTokens, &rec.OutputTokens, &rec.EstimatedCost,
		&rec.BudgetExhausted, &rec.ReportPath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.ID = id
	return rec, nil
}

// Failures returns the failure records for one run.
func (r *RunRepository) Failures(ctx context.Context, runID uuid.UUID) ([]FailureRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, document, prompt, error FROM run_failures WHERE run_id = $1`,
		runID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []FailureRecord
	for rows.Next() {
		var f FailureRecord
		var id string
		if err := rows.Scan(&id, &f.Document, &f.Prompt, &f.Error); err != nil {
			return nil, err
		}
		f.RunID = runID
		failures = append(failures, f)
	}

	return failures, rows.Err()
}
