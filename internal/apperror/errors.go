// Package apperror defines the error kinds surfaced to API clients.
// Adapters map a Kind to a transport status; the kinds carry no transport detail.
package apperror

import (
	"errors"
	"strings"
)

// Kind tags an Error with its category.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindNotFound
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failure"
	case KindDuplicate:
		return "duplicate_record"
	case KindNotFound:
		return "record_not_found"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// Error is a tagged application error.
type Error struct {
	Kind    Kind
	Message string
	// Errors holds the field messages of a validation failure, sorted ascending.
	Errors []string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindValidation:
		return "validation failed: " + strings.Join(e.Errors, "; ")
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a validation failure carrying the given field messages.
func Validation(messages []string) *Error {
	return &Error{Kind: KindValidation, Errors: messages}
}

func Duplicate(message string) *Error {
	return &Error{Kind: KindDuplicate, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
