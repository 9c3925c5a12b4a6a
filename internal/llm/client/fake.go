package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// FakeClient returns deterministic, minimal payloads for offline runs.
// JSON requests get an empty object with the list fields the pipeline
// expects; text requests get a stub module header.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }
func (f *FakeClient) CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return len(text) / 4
}

func (f *FakeClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := "Module"
	for _, line := range strings.Split(prompt, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "Target module:"); ok {
			target = strings.TrimSpace(v)
			break
		}
	}
	return fmt.Sprintf("package %s;\n\n# generated offline by %s\n\n1;\n", target, f.Name()), nil
}

func (f *FakeClient) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, _ := json.Marshal(map[string]any{
		"subroutines":             []any{},
		"dependencies":            []string{},
		"responsibility_clusters": []any{},
	})
	return json.RawMessage(b), nil
}
