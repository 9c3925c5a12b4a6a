package llm

import (
	"context"
	"math"
	"time"
)

// Policy is the exponential-backoff budget for one unit of work. The budget
// ends at whichever of MaxAttempts or MaxElapsed is reached first.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	// MaxElapsed bounds the total time including waits; 0 means no bound.
	MaxElapsed time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  4,
		InitialDelay: 500 * time.Millisecond,
		Multiplier:   2,
		MaxDelay:     8 * time.Second,
		MaxElapsed:   2 * time.Minute,
	}
}

func (p Policy) normalize() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 300 * time.Millisecond
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	return p
}

// Delay is the wait after the given failed attempt (1-based):
// InitialDelay * Multiplier^(attempt-1), capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.normalize()
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) || math.IsInf(d, 0) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
