package task

import (
	"errors"
	"fmt"
)

var ErrInvalidTaskSet = errors.New("invalid task set")

// SetError wraps deterministic task set validation failures.
type SetError struct {
	Kind error
	Msg  string
}

func (e *SetError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *SetError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &SetError{Kind: ErrInvalidTaskSet, Msg: fmt.Sprintf(format, args...)}
}
