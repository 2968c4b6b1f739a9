// Package apperror defines the operational error kinds returned by the
// usecase layer and translated into HTTP envelopes by the adaptors.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindDuplicate       Kind = "duplicate"
	KindAuthentication  Kind = "authentication"
	KindAuthorization   Kind = "authorization"
	KindTooManyRequests Kind = "too_many_requests"
	KindInternal        Kind = "internal"
)

// GenericMessage is the only message a client sees for non-operational faults
// outside development mode.
const GenericMessage = "Something went very wrong!"

// Error is an operational error: its message is safe to show to the client.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the kind onto the conventional HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindDuplicate:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Operational reports whether the message may be shown to clients as is.
func (e *Error) Operational() bool {
	return e.Kind != KindInternal
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationFields builds a validation error from field-level messages.
func ValidationFields(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Duplicate names the offending value the same way for every unique field.
func Duplicate(value string) *Error {
	return &Error{
		Kind:    KindDuplicate,
		Message: fmt.Sprintf("Duplicate field value %q. Please use another value", value),
	}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func TooManyRequests(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message}
}

// Internal wraps an unexpected fault. The message is only logged.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// From returns err as an *Error, downgrading anything unknown to Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(GenericMessage, err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
