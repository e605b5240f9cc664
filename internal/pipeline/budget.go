// Package pipeline drives the document × prompt batch run: budget-bounded
// sequential execution, outcome accounting, and the end-of-run report.
package pipeline

// CostRates holds per-token USD prices for one model.
type CostRates struct {
	Input  float64
	Output float64
}

// CostModel maps a model identifier to its token prices. Lookups for
// unrecognized models fall back to the default entry; cost estimation is
// approximate and must never block processing over a missing price.
type CostModel map[string]CostRates

// DefaultCostModelID is the fallback pricing entry.
const DefaultCostModelID = "gpt-4o"

// DefaultCostModel returns the built-in pricing table. These values may need
// adjustment based on actual pricing.
func DefaultCostModel() CostModel {
	return CostModel{
		"gpt-4o": {
			Input:  0.0000025, // $2.50 per million tokens
			Output: 0.00003,   // $30 per million tokens
		},
		"o3-mini": {
			Input:  0.0000011, // $1.10 per million tokens
			Output: 0.0000044, // $4.40 per million tokens
		},
	}
}

// Rates returns the prices for a model, falling back to the default entry.
func (m CostModel) Rates(modelID string) CostRates {
	if rates, ok := m[modelID]; ok {
		return rates
	}
	return m[DefaultCostModelID]
}

// Tracker accumulates token usage and derived spend for one run. No rounding
// happens during accumulation; only display formatting rounds.
type Tracker struct {
	costs        CostModel
	inputTokens  int64
	outputTokens int64
	cost         float64
}

// NewTracker creates a tracker over the given cost model.
func NewTracker(costs CostModel) *Tracker {
	return &Tracker{costs: costs}
}

// AddUsage records one call's token usage and returns the cumulative cost.
func (t *Tracker) AddUsage(inputTokens, outputTokens int, modelID string) float64 {
	rates := t.costs.Rates(modelID)

	t.inputTokens += int64(inputTokens)
	t.outputTokens += int64(outputTokens)
	t.cost += float64(inputTokens)*rates.Input + float64(outputTokens)*rates.Output

	return t.cost
}

// Cost returns the cumulative estimated cost so far.
func (t *Tracker) Cost() float64 {
	return t.cost
}

// IsOverBudget reports whether cumulative cost exceeds the limit.
func (t *Tracker) IsOverBudget(limit float64) bool {
	return t.cost > limit
}
