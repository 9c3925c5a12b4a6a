package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const groqDefaultURL = "https://api.groq.com/openai/v1/chat/completions"

// GroqClient calls the Groq Chat Completions API (OpenAI-compatible).
// See: https://console.groq.com/docs/api-reference
type GroqClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewGroqClient creates a Groq client. baseURL may be empty for the public
// endpoint; tests point it at an httptest server.
func NewGroqClient(apiKey, model, baseURL string) (*GroqClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("groq: api key is required")
	}
	if model == "" {
		model = DefaultModel(ProviderGroq)
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = groqDefaultURL
	}
	return &GroqClient{
		http:    &http.Client{Timeout: 120 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
	}, nil
}

func (g *GroqClient) Name() string { return "Groq:" + g.model }
func (g *GroqClient) Close() error { return nil }
func (g *GroqClient) CountTokens(text string) int {
	return CountTokens(text)
}

type groqChatReq struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float32           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}
type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *GroqClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	return g.chat(ctx, system, prompt, nil)
}

// GenerateJSON requests json_object output and checks the reply parses.
func (g *GroqClient) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	txt, err := g.chat(ctx, system, prompt, map[string]string{"type": "json_object"})
	if err != nil {
		return nil, err
	}
	return jsonReply(txt)
}

func (g *GroqClient) chat(ctx context.Context, system, prompt string, format map[string]string) (string, error) {
	var msgs []groqMessage
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, groqMessage{Role: "system", Content: system})
	}
	msgs = append(msgs, groqMessage{Role: "user", Content: prompt})
	b, err := json.Marshal(groqChatReq{
		Model:          g.model,
		Messages:       msgs,
		Temperature:    0,
		ResponseFormat: format,
	})
	if err != nil {
		return "", NewPermanentError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", NewPermanentError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", groqStatusError(resp, body)
	}
	var out groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("groq: decode response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", errors.New("groq: empty completion")
	}
	return out.Choices[0].Message.Content, nil
}

func groqStatusError(resp *http.Response, body []byte) error {
	err := fmt.Errorf("groq: unexpected status %s: %s", resp.Status, string(body))
	switch {
	case resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), `"code":"context_length_exceeded"`):
		return NewPermanentError(err)
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return NewPermanentError(err)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		if d, ok := retryAfterHeader(resp.Header); ok {
			return &RetryAfterError{Err: err, After: d}
		}
	}
	return err
}

// retryAfterHeader reads Retry-After in its delay-seconds form.
func retryAfterHeader(h http.Header) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("retry-after"))
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
