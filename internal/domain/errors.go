package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can branch on category instead of
// message text.
type Kind string

const (
	// KindParse marks model output that contained no parseable JSON.
	KindParse Kind = "parse"
	// KindValidation marks a digest that failed the output contract.
	KindValidation Kind = "validation"
	// KindExhausted marks a breached run guardrail (tool calls, wall clock,
	// model token ceiling).
	KindExhausted Kind = "exhausted"
	// KindConfig marks missing or unusable configuration or credentials.
	KindConfig Kind = "config"
	// KindTransient marks environmental failures that exhaust a whole
	// attempt, such as no feed producing any article.
	KindTransient Kind = "transient"
)

// Error carries a failure kind alongside the underlying error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a kinded error from a format string.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Kind
	}
	return ""
}
