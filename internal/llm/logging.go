package llm

import (
	"context"
	"encoding/json"
	"log"

	llmclient "refactorgen/internal/llm/client"
)

// WithLogging logs request size and errors. Provide a custom logger or nil
// to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.LLMClient
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) CountTokens(text string) int {
	return l.next.CountTokens(text)
}

func (l *logging) Generate(ctx context.Context, system, prompt string) (string, error) {
	l.log.Printf("LLM request (%s, %s): ~%d tokens", UnitFrom(ctx), l.next.Name(), l.next.CountTokens(system+"\n"+prompt))
	out, err := l.next.Generate(ctx, system, prompt)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", UnitFrom(ctx), err)
	}
	return out, err
}

func (l *logging) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	l.log.Printf("LLM JSON request (%s, %s): ~%d tokens", UnitFrom(ctx), l.next.Name(), l.next.CountTokens(system+"\n"+prompt))
	raw, err := l.next.GenerateJSON(ctx, system, prompt)
	if err != nil {
		l.log.Printf("LLM JSON error (%s): %v", UnitFrom(ctx), err)
	}
	return raw, err
}
