package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("permission denied")

	withCause := IOError("move lease file", cause)
	assert.Equal(t, "io: move lease file: permission denied", withCause.Error())
	assert.ErrorIs(t, withCause, cause)

	bare := ConfigError("OPENAI_API_KEY environment variable not set", nil)
	assert.Equal(t, "config: OPENAI_API_KEY environment variable not set", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, KindValidation, ValidationError("x", nil).Kind)
	assert.Equal(t, KindConversion, ConversionError("x", nil).Kind)
	assert.Equal(t, KindAPI, APIError("x", nil).Kind)
}

func TestRunLedgerRecord(t *testing.T) {
	ledger := NewRunLedger(2, 3)
	assert.Equal(t, 6, ledger.TotalPairs())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", ledger.RunID.String())

	ledger.Record(Outcome{
		Document: "a.pdf", Prompt: "terms", Success: true,
		InputTokens: 100, OutputTokens: 40, Cost: 0.0014,
	})
	ledger.Record(Outcome{
		Document: "a.pdf", Prompt: "parties", Success: false,
		ErrMessage: "API error 500",
	})

	assert.Equal(t, 2, ledger.Attempted)
	assert.Equal(t, 1, ledger.Succeeded)
	assert.Equal(t, 1, ledger.Failed)
	assert.Equal(t, int64(100), ledger.InputTokens)
	assert.Equal(t, int64(40), ledger.OutputTokens)
	assert.Equal(t, 0.0014, ledger.EstimatedCost)

	require.Len(t, ledger.Failures, 1)
	assert.Equal(t, "a.pdf", ledger.Failures[0].Document)
	assert.Equal(t, "parties", ledger.Failures[0].Prompt)
	assert.Equal(t, "API error 500", ledger.Failures[0].Error)
	assert.Len(t, ledger.Outcomes, 2)
}
