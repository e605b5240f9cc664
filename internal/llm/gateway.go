// Package llm talks to an OpenAI-compatible chat completions API.
package llm

import (
	"context"

	"github.com/jonathanvkeller/lease-analysis/internal/domain"
)

// Gateway is the inference boundary the pipeline depends on. It takes an
// instruction and a document payload and returns an explicit result value;
// a failed call is still a normal return, never an error or a panic, so
// the caller's branching stays exhaustive.
type Gateway interface {
	Generate(ctx context.Context, instruction string, doc domain.Payload) domain.CallResult
}
