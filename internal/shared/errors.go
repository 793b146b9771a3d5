package shared

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// Kind is the stable, caller-visible classification of a failure.
type Kind string

// Error kinds surfaced in response envelopes.
const (
	KindUnauthenticated Kind = "Unauthenticated"
	KindForbidden       Kind = "Forbidden"
	KindValidation      Kind = "ValidationError"
	KindNotFound        Kind = "NotFound"
	KindConflict        Kind = "Conflict"
	KindUpstream        Kind = "UpstreamFailure"
	KindInternal        Kind = "InternalError"
)

// Redacted reports whether details of this kind must be hidden from callers.
func (k Kind) Redacted() bool {
	return k == KindInternal || k == KindUpstream
}

// Error is a failure signaled by a controller or service with a known kind.
type Error struct {
	Kind    Kind
	Message string
	// Fields carries per-field validation messages keyed by JSON name.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validation reports malformed input.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationFields reports malformed input with per-field detail.
func ValidationFields(message string, fields map[string]string) error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound reports a missing entity.
func NotFound(entity, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
}

// Conflict reports a state or uniqueness conflict.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthenticated reports missing or invalid credentials.
func Unauthenticated(message string, err error) error {
	return &Error{Kind: KindUnauthenticated, Message: message, Err: err}
}

// Forbidden reports a caller lacking the required privileges.
func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Upstream reports a failing external collaborator.
func Upstream(message string, err error) error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf classifies err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUpstream
	}
	return KindInternal
}

// MessageOf returns the caller-safe message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && !appErr.Kind.Redacted() {
		return appErr.Message
	}
	switch KindOf(err) {
	case KindUpstream:
		return "upstream service unavailable"
	default:
		return "internal server error"
	}
}

// FieldsOf returns per-field validation detail carried by err, if any.
func FieldsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
