package llmclient

import "strings"

// CountTokens provides a rough token count for text, used for request logging.
// It counts whitespace-delimited words and falls back to a character-based heuristic.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if words := strings.Fields(text); len(words) > 0 {
		return len(words)
	}
	return max(len(text)/4, 1)
}
