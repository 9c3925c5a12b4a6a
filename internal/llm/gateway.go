package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"

	"refactorgen/internal/apperr"
	llmclient "refactorgen/internal/llm/client"
	"refactorgen/internal/util/jsonutil"
)

// Gateway sends prompts to the completion backend and retries the full
// request-and-parse cycle under its Policy. It keeps no state between calls:
// every call is an independent retry sequence.
type Gateway struct {
	client llmclient.LLMClient
	policy Policy
	log    *log.Logger
}

func NewGateway(client llmclient.LLMClient, policy Policy, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{client: client, policy: policy.normalize(), log: logger}
}

func (g *Gateway) Name() string   { return g.client.Name() }
func (g *Gateway) Close() error   { return g.client.Close() }
func (g *Gateway) Policy() Policy { return g.policy }

// SchemaError is a reply that arrived but did not decode into the expected
// shape. Raw holds the offending text.
type SchemaError struct {
	Raw string
	Err error
}

func (e *SchemaError) Error() string { return "decode model response: " + e.Err.Error() }
func (e *SchemaError) Unwrap() error { return e.Err }

// Complete returns the model's plain-text reply.
func (g *Gateway) Complete(ctx context.Context, system, prompt string) (string, error) {
	var out string
	err := g.do(ctx, func(ctx context.Context) error {
		txt, err := g.client.Generate(ctx, system, prompt)
		if err != nil {
			return err
		}
		out = txt
		return nil
	})
	return out, err
}

// validator is implemented by response shapes that have required fields.
type validator interface {
	Validate() error
}

// CompleteInto requests JSON and decodes it into out, which must be a non-nil
// pointer. Every attempt decodes (and validates, when the type has Validate)
// a fresh zero value; out is written only on success.
func (g *Gateway) CompleteInto(ctx context.Context, system, prompt string, out any) error {
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return fmt.Errorf("llm: CompleteInto needs a non-nil pointer, got %T", out)
	}
	return g.do(ctx, func(ctx context.Context) error {
		fresh := reflect.New(dst.Elem().Type())
		if err := g.decode(ctx, system, prompt, fresh.Interface()); err != nil {
			return err
		}
		dst.Elem().Set(fresh.Elem())
		return nil
	})
}

// decode runs one JSON request and decodes the reply into v.
func (g *Gateway) decode(ctx context.Context, system, prompt string, v any) error {
	raw, err := g.client.GenerateJSON(ctx, system, prompt)
	if err != nil {
		if errors.Is(err, llmclient.ErrInvalidJSON) {
			return &SchemaError{Err: err}
		}
		return err
	}
	body := jsonutil.StripCodeFence(string(raw))
	if err := jsonutil.UnmarshalFlex([]byte(body), v); err != nil {
		return &SchemaError{Raw: body, Err: err}
	}
	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			return &SchemaError{Raw: body, Err: err}
		}
	}
	return nil
}

// CompleteStructured is the typed form of CompleteInto.
func CompleteStructured[T any](ctx context.Context, g *Gateway, system, prompt string) (T, error) {
	var out T
	err := g.do(ctx, func(ctx context.Context) error {
		var v T
		if err := g.decode(ctx, system, prompt, &v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (g *Gateway) do(ctx context.Context, op func(context.Context) error) error {
	unit := UnitFrom(ctx)
	label := unitLabel(ctx)
	opName := func(msg string) string {
		switch {
		case label == "":
			return msg
		case msg == "":
			return label
		}
		return label + ": " + msg
	}
	hook := HookFrom(ctx)
	p := g.policy
	start := time.Now()

	var last error
	attempt := 0
	for attempt < p.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return apperr.Wrap(apperr.KindAIService, opName(""), err)
		}
		attempt++
		err := op(ctx)
		if hook != nil {
			hook.Attempt(ctx, unit, attempt, err)
		}
		if err == nil {
			return nil
		}
		last = err

		var schema *SchemaError
		if errors.As(err, &schema) {
			g.log.Printf("LLM schema failure (%s) attempt %d/%d: %v", unit, attempt, p.MaxAttempts, schema.Err)
			if schema.Raw != "" {
				g.log.Printf("LLM raw response (%s): %q", unit, truncate(schema.Raw, 512))
			}
		}
		if llmclient.IsPermanent(err) {
			return apperr.Wrap(apperr.KindAIService, opName("permanent failure"), err)
		}
		if ctx.Err() != nil {
			return apperr.Wrap(apperr.KindAIService, opName(""), err)
		}
		if attempt >= p.MaxAttempts {
			break
		}
		delay := p.Delay(attempt)
		if hint, ok := llmclient.RetryAfter(err); ok && hint > delay {
			delay = hint
		}
		if p.MaxElapsed > 0 && time.Since(start)+delay > p.MaxElapsed {
			g.log.Printf("LLM retry budget (%s) exhausted after %d attempt(s) in %s", unit, attempt, time.Since(start).Round(time.Millisecond))
			break
		}
		g.log.Printf("LLM retry (%s) attempt %d/%d failed (%s), next in %s", unit, attempt, p.MaxAttempts, failureLabel(err), delay)
		if err := sleepCtx(ctx, delay); err != nil {
			return apperr.Wrap(apperr.KindAIService, opName(""), err)
		}
	}

	kind := apperr.KindAIService
	var schema *SchemaError
	if errors.As(last, &schema) {
		kind = apperr.KindParse
	}
	return apperr.Wrap(kind, opName(fmt.Sprintf("gave up after %d attempt(s)", attempt)), last)
}

func failureLabel(err error) string {
	var schema *SchemaError
	if errors.As(err, &schema) {
		return "schema"
	}
	return "transport"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
