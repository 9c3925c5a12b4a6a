package llmclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"refactorgen/internal/util/jsonutil"
)

var ErrInvalidJSON = errors.New("invalid json from LLM")

// invalidJSON wraps ErrInvalidJSON with the start of the offending reply.
func invalidJSON(reply string) error {
	const max = 256
	if len(reply) > max {
		reply = reply[:max] + "..."
	}
	return fmt.Errorf("%w: %q", ErrInvalidJSON, reply)
}

// jsonReply accepts a JSON-mode reply even when the model wrapped it in a
// markdown fence or a sentence of prose.
func jsonReply(txt string) (json.RawMessage, error) {
	raw := json.RawMessage(jsonutil.StripCodeFence(txt))
	if !json.Valid(raw) {
		return nil, invalidJSON(txt)
	}
	return raw, nil
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err (or anything it wraps) is a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// RetryAfterError is a retryable failure for which the provider told us how
// long to wait before the next attempt.
type RetryAfterError struct {
	Err   error
	After time.Duration
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%v (retry after %s)", e.Err, e.After)
}
func (e *RetryAfterError) Unwrap() error { return e.Err }

// RetryAfter extracts the provider's wait hint from err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var r *RetryAfterError
	if errors.As(err, &r) && r.After > 0 {
		return r.After, true
	}
	return 0, false
}
