// Package apperr defines the typed error kinds surfaced by the negotiation
// core, so that the HTTP boundary can map them to status codes in one
// place instead of string-matching error messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the purposes of HTTP status mapping.
type Kind string

const (
	InvalidInput    Kind = "invalid-input"
	NotFound        Kind = "not-found"
	Forbidden       Kind = "forbidden"
	Conflict        Kind = "conflict"
	RateLimited     Kind = "rate-limited"
	PayloadTooLarge Kind = "payload-too-large"
	Degraded        Kind = "degraded"
)

// Error wraps an underlying cause with a Kind the HTTP layer understands.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an *Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates an *Error carrying an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
// Returns "" if err is nil or not an *apperr.Error.
func KindOf(err error) Kind {
	var e *Error
	if err == nil {
		return ""
	}
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
