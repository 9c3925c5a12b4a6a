package llmclient

import (
	"context"
	"encoding/json"
)

// LLMClient is the capability every completion provider implements. The
// caller puts all context into system and prompt; clients hold no
// conversation state between calls.
type LLMClient interface {
	Name() string
	Close() error
	CountTokens(text string) int
	// Generate returns the model's reply as plain text.
	Generate(ctx context.Context, system, prompt string) (string, error)
	// GenerateJSON asks the provider for JSON output and returns it raw.
	// Output that is not valid JSON yields ErrInvalidJSON.
	GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error)
}
