// Package errs defines the error type shared by every sync and storage operation.
// Callers inspect the Kind to decide how to surface a failure.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Kinds are strings so they serialize naturally into
// the HTTP error envelope.
type Kind string

const (
	// KindInvalid indicates malformed input or a value that failed validation.
	KindInvalid Kind = "invalid"

	// KindNotFound indicates the requested row does not exist.
	KindNotFound Kind = "not_found"

	// KindConflict indicates a uniqueness or referential constraint rejected the write.
	KindConflict Kind = "conflict"

	// KindUpstream indicates the financial-data API failed or rejected the call.
	KindUpstream Kind = "upstream"

	// KindInternal is anything else.
	KindInternal Kind = "internal"
)

// Error is an operation failure tagged with a Kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error. If err already carries a Kind and kind is empty, the
// existing Kind is kept.
func E(op string, kind Kind, err error) error {
	if kind == "" {
		kind = KindOf(err)
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Errorf builds an *Error from a format string.
func Errorf(op string, kind Kind, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the outermost *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
