package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so adapters can map it to a response.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindConflict     Kind = "conflict"
)

// Error is a classified failure carrying a short human-readable detail.
type Error struct {
	Kind   Kind
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Detail
}

// InvalidInput reports malformed ids, dates, or out-of-range values.
func InvalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Detail: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent member, payment, attendance record or invoice.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

// InvalidState reports a transition the current state does not allow.
func InvalidState(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Detail: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness or capacity violation.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
