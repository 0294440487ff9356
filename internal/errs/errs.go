// Package errs carries the tagged error taxonomy surfaced by parse and
// serialize operations. A failed operation returns exactly one tagged
// error and no partial result.
package errs

import (
	"errors"
	"fmt"
)

// Kind tags an error with its failure class.
type Kind string

const (
	KindInputAccess     Kind = "input access"
	KindMalformedInput  Kind = "malformed input"
	KindSchemaViolation Kind = "schema violation"
	KindSerialization   Kind = "serialization"
	KindOutputAccess    Kind = "output access"
)

// Error is a tagged error with a human-readable message.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

// New creates a tagged error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error with a kind and message.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error {
	return e.err
}

// IsKind reports whether any error in the chain carries the kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
