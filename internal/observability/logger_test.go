package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{
		Level:       "info",
		Format:      "json",
		Output:      &buf,
		ServiceName: "test-service",
	})

	log.Info().Str("lease", "a.pdf").Int("pages", 12).Msg("processing")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "test-service", entry["service"])
	assert.Equal(t, "a.pdf", entry["lease"])
	assert.Equal(t, float64(12), entry["pages"])
	assert.Equal(t, "processing", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "info", Format: "json", Output: &buf})

	log.WithRun("run-123").Warn().Err(errors.New("boom")).Msg("problem")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-123", entry["run_id"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestNopDiscards(t *testing.T) {
	// Must not panic or write anywhere.
	Nop().Error().Str("k", "v").Msg("ignored")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}
