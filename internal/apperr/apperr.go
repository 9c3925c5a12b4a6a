package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide between retrying,
// reporting and aborting without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	// KindParse is a response that arrived but did not decode into the
	// expected structured shape.
	KindParse
	// KindAIService is a transport or service failure of the completion backend.
	KindAIService
	// KindValidation is a business-rule violation. Never retried.
	KindValidation
	KindIO
	KindSerialization
	KindDeserialization
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindAIService:
		return "AI service error"
	case KindValidation:
		return "validation error"
	case KindIO:
		return "IO error"
	case KindSerialization:
		return "serialization error"
	case KindDeserialization:
		return "deserialization error"
	default:
		return "error"
	}
}

// Error carries a Kind, the operation that failed and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error whose cause is a formatted message.
func New(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches kind and op to err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the outermost Kind found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
