package taskfile

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax            = errors.New("task file syntax error")
	ErrUnsupportedFormat = errors.New("unsupported task file format")
)

// LoadError wraps deterministic task file parsing failures.
//
// Line is 1-based and only set for the text format.
type LoadError struct {
	Kind error
	Line int
	Msg  string
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Line > 0 && e.Msg != "":
		return fmt.Sprintf("%s: line %d: %s", e.Kind.Error(), e.Line, e.Msg)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	default:
		return e.Kind.Error()
	}
}

func (e *LoadError) Unwrap() error { return e.Kind }

func syntaxf(line int, format string, args ...any) error {
	return &LoadError{Kind: ErrSyntax, Line: line, Msg: fmt.Sprintf(format, args...)}
}
