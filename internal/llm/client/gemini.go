package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself. Cross-cutting concerns
// (rate limiting, retries, logging) are applied by the llm package.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient builds a client for the Gemini API. The key is passed
// explicitly; nothing is read from the environment here.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if model == "" {
		model = DefaultModel(ProviderGemini)
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }
func (g *GeminiClient) CountTokens(text string) int {
	return CountTokens(text)
}

func (g *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	return g.generate(ctx, system, prompt, "")
}

// GenerateJSON asks for application/json and returns the model's JSON as
// json.RawMessage.
func (g *GeminiClient) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	txt, err := g.generate(ctx, system, prompt, "application/json")
	if err != nil {
		return nil, err
	}
	return jsonReply(txt)
}

func (g *GeminiClient) generate(ctx context.Context, system, prompt, mime string) (string, error) {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: mime}
	if strings.TrimSpace(system) != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		cfg,
	)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response from %s", g.model)
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String(), nil
}

// classifyGeminiError marks client-side request errors as permanent; quota
// and server errors stay retryable.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case 400, 401, 403, 404:
		return NewPermanentError(fmt.Errorf("gemini: %w", err))
	}
	return fmt.Errorf("gemini: %w", err)
}
