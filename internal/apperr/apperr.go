// Package apperr defines the error taxonomy shared by the stores, the
// billing services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the id does not resolve, or resolves to another agency.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateObligation: a payment already exists for the
	// (contract, schedule, due date) key.
	ErrDuplicateObligation = errors.New("duplicate obligation")
	// ErrInvalidStateTransition: a status would move backward, or a
	// delete targets a settled entity.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrValidation: malformed input.
	ErrValidation = errors.New("validation error")
	// ErrTransactionFailure: the atomic write failed and may be retried.
	ErrTransactionFailure = errors.New("transaction failure")
)

// Validation wraps ErrValidation with a field-level message.
func Validation(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the entity kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Transition wraps ErrInvalidStateTransition.
func Transition(kind string, from, to any) error {
	return fmt.Errorf("%s %v -> %v: %w", kind, from, to, ErrInvalidStateTransition)
}

// Retryable reports whether the caller may re-invoke the same operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransactionFailure)
}

// IsDomain reports whether err already carries one of the taxonomy errors.
func IsDomain(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateObligation) ||
		errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrTransactionFailure)
}
