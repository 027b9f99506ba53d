// Package apperrors defines the business error taxonomy shared by
// services, repositories and handlers. Stores and services return these
// (optionally wrapped) so the HTTP layer can translate them into status
// codes without string matching.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a business error.
type Kind int

const (
	// KindValidation: malformed or missing input, caught before the
	// ledger is touched.
	KindValidation Kind = iota
	// KindGuardViolation: a business-rule guard failed (past date,
	// already pending, already out, room full).
	KindGuardViolation
	// KindInvalidTransition: the operation is not legal for the
	// record's current state.
	KindInvalidTransition
	// KindNotFound: unknown pass or user id.
	KindNotFound
	// KindConflict: a concurrent write raced and lost.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindGuardViolation:
		return "guard violation"
	case KindInvalidTransition:
		return "invalid transition"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is a classified business error. All five kinds are recoverable
// at the caller boundary; none is fatal to the process.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New creates a classified error with a plain message.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input.
func Validation(message string) error { return New(KindValidation, message) }

// Guard reports a failed business-rule guard.
func Guard(message string) error { return New(KindGuardViolation, message) }

// InvalidTransition reports an operation that is illegal for the
// record's current state, naming both.
func InvalidTransition(operation, currentState string) error {
	return Newf(KindInvalidTransition, "cannot %s a gate pass in state %s", operation, currentState)
}

// NotFound reports an unknown entity.
func NotFound(what string) error { return Newf(KindNotFound, "%s not found", what) }

// Conflict reports a lost concurrent-write race. The caller decides
// whether to retry; nothing retries internally.
func Conflict(message string) error { return New(KindConflict, message) }

// KindOf extracts the Kind from an error chain. The second return is
// false when the error is not a classified business error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
