package llmclient

import "strings"

// Provider identifies a completion backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
	ProviderFake   Provider = "fake"
)

// ParseProvider normalizes a provider name. Unknown names are returned as-is
// so the caller can report them.
func ParseProvider(s string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(s)))
}

// DefaultModel is the model used when none is configured.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderGroq:
		return "llama-3.3-70b-versatile"
	case ProviderFake:
		return "fake"
	default:
		return ""
	}
}
