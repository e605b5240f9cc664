package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostModelRatesFallback(t *testing.T) {
	costs := DefaultCostModel()

	known := costs.Rates("o3-mini")
	assert.Equal(t, 0.0000011, known.Input)
	assert.Equal(t, 0.0000044, known.Output)

	// Unrecognized models price at the default entry instead of failing.
	unknown := costs.Rates("some-future-model")
	assert.Equal(t, costs[DefaultCostModelID], unknown)
}

func TestTrackerAccumulates(t *testing.T) {
	tr := NewTracker(DefaultCostModel())

	first := tr.AddUsage(1000, 500, "gpt-4o")
	assert.InDelta(t, 1000*0.0000025+500*0.00003, first, 1e-12)

	second := tr.AddUsage(2000, 1000, "gpt-4o")
	assert.InDelta(t, first+2000*0.0000025+1000*0.00003, second, 1e-12)
	assert.Equal(t, second, tr.Cost())
}

func TestTrackerMixedModels(t *testing.T) {
	tr := NewTracker(DefaultCostModel())

	tr.AddUsage(1000, 0, "gpt-4o")
	total := tr.AddUsage(1000, 0, "o3-mini")
	assert.InDelta(t, 1000*0.0000025+1000*0.0000011, total, 1e-12)
}

func TestTrackerIsOverBudget(t *testing.T) {
	tr := NewTracker(CostModel{
		DefaultCostModelID: {Input: 0, Output: 0.001},
	})

	tr.AddUsage(0, 1000, "gpt-4o") // exactly $1.00
	assert.False(t, tr.IsOverBudget(1.00), "at the limit is not over it")

	tr.AddUsage(0, 1, "gpt-4o")
	assert.True(t, tr.IsOverBudget(1.00))
}
