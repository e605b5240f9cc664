package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRecord(started time.Time) *RunRecord {
	return &RunRecord{
		ID:              uuid.New(),
		StartedAt:       started,
		FinishedAt:      started.Add(12 * time.Minute),
		Model:           "gpt-4o",
		Documents:       3,
		Prompts:         2,
		Attempted:       6,
		Succeeded:       5,
		Failed:          1,
		InputTokens:     54000,
		OutputTokens:    12000,
		EstimatedCost:   0.4950,
		BudgetExhausted: false,
		ReportPath:      "output/summaries/summary_report_20250310_101530.json",
	}
}

func TestSaveAndGetByID(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()

	rec := sampleRecord(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	failures := []FailureRecord{
		{Document: "b.pdf", Prompt: "terms", Error: "API error 500"},
	}
	require.NoError(t, repo.Save(ctx, rec, failures))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Model, got.Model)
	assert.Equal(t, rec.Attempted, got.Attempted)
	assert.Equal(t, rec.Succeeded, got.Succeeded)
	assert.Equal(t, rec.Failed, got.Failed)
	assert.Equal(t, rec.InputTokens, got.InputTokens)
	assert.Equal(t, rec.EstimatedCost, got.EstimatedCost)
	assert.Equal(t, rec.ReportPath, got.ReportPath)
	assert.True(t, rec.StartedAt.Equal(got.StartedAt))

	saved, err := repo.Failures(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, rec.ID, saved[0].RunID)
	assert.Equal(t, "b.pdf", saved[0].Document)
	assert.Equal(t, "API error 500", saved[0].Error)
}

func TestSaveAssignsID(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))

	rec := sampleRecord(time.Now().UTC())
	rec.ID = uuid.Nil
	require.NoError(t, repo.Save(context.Background(), rec, nil))
	assert.NotEqual(t, uuid.Nil, rec.ID)
}

func TestListNewestFirst(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		rec := sampleRecord(base.Add(time.Duration(i) * time.Hour))
		require.NoError(t, repo.Save(ctx, rec, nil))
		ids = append(ids, rec.ID)
	}

	records, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, ids[2], records[0].ID)
	assert.Equal(t, ids[1], records[1].ID)
	assert.Equal(t, ids[0], records[2].ID)
}

func TestListLimit(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, sampleRecord(base.Add(time.Duration(i)*time.Minute)), nil))
	}

	records, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBudgetExhaustedRoundTrips(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()

	rec := sampleRecord(time.Now().UTC())
	rec.BudgetExhausted = true
	require.NoError(t, repo.Save(ctx, rec, nil))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.BudgetExhausted)
}
