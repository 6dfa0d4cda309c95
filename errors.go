package prefixindex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/prefixindex/kv"
)

var (
	// ErrValidation is matched by every configuration or argument error.
	// It is always returned before any store call is made.
	ErrValidation = errors.New("validation failed")

	// ErrBoundViolation is matched by errors raised because a searchable
	// string is shorter than MinLength or longer than MaxLength and the
	// corresponding ThrowOn option is enabled.
	ErrBoundViolation = errors.New("length bound violated")

	// ErrConflict is matched when an entry for the same term and row key
	// already exists and ThrowOnConflict is enabled.
	ErrConflict = kv.ErrConflict
)

// ValidationError reports a malformed configuration value or argument.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Bound identifies which length bound a BoundError refers to.
type Bound string

const (
	// BoundMin is the MinLength bound.
	BoundMin Bound = "minLength"
	// BoundMax is the MaxLength bound.
	BoundMax Bound = "maxLength"
)

// BoundError indicates a searchable string outside the configured length
// bounds. It matches both ErrBoundViolation and ErrValidation.
type BoundError struct {
	Index  string
	Bound  Bound
	Length int
	Limit  int
}

func (e *BoundError) Error() string {
	if e.Bound == BoundMin {
		return fmt.Sprintf("index %s: searchable string length %d is below %s %d", e.Index, e.Length, e.Bound, e.Limit)
	}
	return fmt.Sprintf("index %s: searchable string length %d exceeds %s %d", e.Index, e.Length, e.Bound, e.Limit)
}

// Is reports whether target is ErrBoundViolation or ErrValidation.
func (e *BoundError) Is(target error) bool {
	return target == ErrBoundViolation || target == ErrValidation
}

// ConflictError indicates an entry already stored for Term and RowKey.
//
// The original store error can be accessed via errors.Unwrap.
type ConflictError struct {
	Index  string
	Term   string
	RowKey string
	cause  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("index %s: entry for term %q and row key %q already exists", e.Index, e.Term, e.RowKey)
}

func (e *ConflictError) Unwrap() error { return e.cause }
