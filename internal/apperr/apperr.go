// Package apperr defines the error taxonomy shared by every request-facing
// component. Components wrap failures at their boundary; only the HTTP error
// translator turns them into responses.
package apperr

import (
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	Forbidden
	ValidationFailed
	NotFound
	Conflict
	RateLimited
	Lifecycle
	Unavailable
)

var kindNames = map[Kind]string{ //nolint:gochecknoglobals // lookup table
	Internal:         "internal",
	Unauthenticated:  "unauthenticated",
	Forbidden:        "forbidden",
	ValidationFailed: "validation_failed",
	NotFound:         "not_found",
	Conflict:         "conflict",
	RateLimited:      "rate_limited",
	Lifecycle:        "lifecycle",
	Unavailable:      "unavailable",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Status is the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case ValidationFailed:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case RateLimited:
		return http.StatusTooManyRequests
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Violation is a single failed field rule.
type Violation struct {
	Field    string `json:"field"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

// Error is a classified failure. Message is safe to show to clients.
type Error struct {
	Kind       Kind
	Message    string
	Details    map[string]any
	Violations []Violation

	err error
}

func (e *Error) Error() string {
	if e.err != nil && e.err.Error() != e.Message {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// Cause returns the wrapped error, if any.
func (e *Error) Cause() error { return e.err }

// New returns a classified error carrying a stack trace from the call site.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, err: pkgerrors.New(msg)}
}

// Wrap classifies err. The cause stays reachable through errors.Is and
// errors.As; a stack trace is attached unless err already has one.
func Wrap(kind Kind, err error, msg string) *Error {
	if err == nil {
		return New(kind, msg)
	}
	if _, ok := err.(interface{ StackTrace() pkgerrors.StackTrace }); !ok {
		err = pkgerrors.WithStack(err)
	}
	return &Error{Kind: kind, Message: msg, err: err}
}

// Validation builds a ValidationFailed error listing every violation.
func Validation(violations []Violation) *Error {
	e := New(ValidationFailed, "Validation failed")
	e.Violations = violations
	return e
}

// WithDetails attaches extra client-visible detail fields.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return Internal
}
