// Package errors provides coded application errors for the genre graph.
//
// Stores and domain types return errors carrying one of the codes below;
// callers match the broad category with errors.Is against a sentinel:
//
//	if errors.Is(err, apperrors.ErrNotFound) {
//	    // report a missing genre
//	}
//
// Domain errors unwrap to a sentinel, so a caller can match either the
// concrete domain type or its code.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
)

// Error is an application error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details any) *Error {
	next := *e
	next.Details = details
	return &next
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	next := *e
	next.cause = err
	return &next
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
)

// CodeOf returns the code of the first *Error in err's chain, or "" when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}
