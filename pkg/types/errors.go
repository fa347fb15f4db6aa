package types

import (
	"errors"
	"fmt"
	"strings"
)

// ConstraintKind distinguishes the classified constraint violations.
type ConstraintKind string

// Classified constraint kinds.
const (
	ConstraintUnique    ConstraintKind = "unique"
	ConstraintReference ConstraintKind = "reference"
)

// ValidationError is a recoverable, user-input-shaped failure: a uniqueness
// or foreign-key constraint was violated on write. It carries the offending
// columns and the record type so callers can branch on error kind instead of
// parsing backend text.
type ValidationError struct {
	Model   string
	Columns []string
	Kind    ConstraintKind
	Err     error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ConstraintReference:
		return fmt.Sprintf("foreign key constraint violated for %s (%s)", e.Model, strings.Join(e.Columns, ", "))
	default:
		return fmt.Sprintf("unique constraint violated for %s (%s)", e.Model, strings.Join(e.Columns, ", "))
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IntegrityError is an unclassified backend constraint failure. The raw
// driver detail is logged server-side, not carried in the message, so it
// never leaks to API callers.
type IntegrityError struct {
	Model string
	Err   error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error for %s", e.Model)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsIntegrity reports whether err is (or wraps) an IntegrityError.
func IsIntegrity(err error) bool {
	var target *IntegrityError
	return errors.As(err, &target)
}
