package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	llmclient "refactorgen/internal/llm/client"
)

// rpsLimiter is a token bucket refilled lazily on each Acquire: at most
// burst requests at once, then one every 1/rps seconds.
type rpsLimiter struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
}

// newRPSLimiter returns nil (disabled) when rps <= 0.
func newRPSLimiter(rps float64, burst int) *rpsLimiter {
	if rps <= 0 {
		return nil
	}
	burst = max(burst, 1)
	return &rpsLimiter{rate: rps, burst: float64(burst), tokens: float64(burst), last: time.Now()}
}

// reserve takes a token if one is available, otherwise reports how long
// until the next one.
func (l *rpsLimiter) reserve(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = min(l.burst, l.tokens+now.Sub(l.last).Seconds()*l.rate)
	l.last = now
	if l.tokens >= 1 {
		l.tokens--
		return 0
	}
	return time.Duration((1 - l.tokens) / l.rate * float64(time.Second))
}

// Acquire blocks until a token is available or ctx is done.
func (l *rpsLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	for {
		wait := l.reserve(time.Now())
		if wait <= 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RateLimit limits request rate across every unit of work sharing the
// wrapped client. If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		rl := newRPSLimiter(rps, burst)
		if rl == nil {
			return next
		}
		return &rateLimited{next: next, rl: rl}
	}
}

type rateLimited struct {
	next llmclient.LLMClient
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }
func (c *rateLimited) CountTokens(text string) int { return c.next.CountTokens(text) }

func (c *rateLimited) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.Generate(ctx, system, prompt)
}

func (c *rateLimited) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return nil, err
	}
	return c.next.GenerateJSON(ctx, system, prompt)
}
