package llm

import "context"

// AttemptHook observes every attempt the gateway makes. err is nil for the
// attempt that succeeded.
type AttemptHook interface {
	Attempt(ctx context.Context, unit string, attempt int, err error)
}

// AttemptHookFunc adapts a function to AttemptHook.
type AttemptHookFunc func(ctx context.Context, unit string, attempt int, err error)

func (f AttemptHookFunc) Attempt(ctx context.Context, unit string, attempt int, err error) {
	f(ctx, unit, attempt, err)
}

type ctxKeyUnit struct{}
type ctxKeyHook struct{}

// WithUnit labels the unit of work (e.g. "parse", "cluster:Billing") for
// logs and hooks.
func WithUnit(ctx context.Context, unit string) context.Context {
	return context.WithValue(ctx, ctxKeyUnit{}, unit)
}

// UnitFrom returns the unit label stored in the context, or "unknown" for
// log lines when none was set.
func UnitFrom(ctx context.Context) string {
	if v := unitLabel(ctx); v != "" {
		return v
	}
	return "unknown"
}

// unitLabel is the label as set, "" when absent.
func unitLabel(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUnit{}).(string)
	return v
}

// WithAttemptHook attaches hook to the context.
func WithAttemptHook(ctx context.Context, hook AttemptHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

// HookFrom returns the hook stored in the context, or nil.
func HookFrom(ctx context.Context) AttemptHook {
	if h, ok := ctx.Value(ctxKeyHook{}).(AttemptHook); ok {
		return h
	}
	return nil
}
