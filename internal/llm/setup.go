package llm

import (
	"context"
	"fmt"
	"log"

	"refactorgen/internal/config"
	llmclient "refactorgen/internal/llm/client"
)

// NewClient builds the provider adapter named by cfg, wrapped with rate
// limiting and logging. Credentials come from cfg only.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *log.Logger) (llmclient.LLMClient, error) {
	provider := llmclient.ParseProvider(cfg.Provider)
	model := cfg.Model
	if model == "" {
		model = llmclient.DefaultModel(provider)
	}

	var (
		base llmclient.LLMClient
		err  error
	)
	switch provider {
	case llmclient.ProviderGemini:
		base, err = llmclient.NewGeminiClient(ctx, cfg.GeminiAPIKey, model)
	case llmclient.ProviderGroq:
		base, err = llmclient.NewGroqClient(cfg.GroqAPIKey, model, cfg.GroqBaseURL)
	case llmclient.ProviderFake:
		base = llmclient.NewFakeClient()
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("llm: %s client: %w", provider, err)
	}
	return Wrap(base,
		RateLimit(cfg.RPS, cfg.Burst),
		WithLogging(logger),
	), nil
}

// PolicyFromConfig converts the configured retry budget.
func PolicyFromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: cfg.InitialDelay.Duration,
		Multiplier:   cfg.Multiplier,
		MaxDelay:     cfg.MaxDelay.Duration,
		MaxElapsed:   cfg.MaxElapsed.Duration,
	}
}

// New builds a ready Gateway from configuration.
func New(ctx context.Context, cfg config.LLMConfig, logger *log.Logger) (*Gateway, error) {
	cli, err := NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewGateway(cli, PolicyFromConfig(cfg.Retry), logger), nil
}
