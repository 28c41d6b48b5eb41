package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryConfig   Category = "config"
	CategoryProtocol Category = "protocol"
	CategoryStorage  Category = "storage"
	CategoryCLI      Category = "cli"
)

// ReactiveError is a structured error with a registered code, an optional
// explanation and a fix suggestion.
type ReactiveError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type (runtime, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ReactiveError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ReactiveError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ReactiveError) WithSuggestion(s string) *ReactiveError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ReactiveError) WithDetail(d string) *ReactiveError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ReactiveError) Wrap(err error) *ReactiveError {
	e.Wrapped = err
	return e
}

// New creates a ReactiveError from a registered error code.
func New(code string) *ReactiveError {
	template, ok := registry[code]
	if !ok {
		return &ReactiveError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ReactiveError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ReactiveError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ReactiveError {
	return &ReactiveError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ReactiveError.
// An error that already is (or wraps) a ReactiveError is returned as-is.
func FromError(err error, code string) *ReactiveError {
	if err == nil {
		return nil
	}
	var re *ReactiveError
	if stderrors.As(err, &re) {
		return re
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, a ReactiveError with the given code.
func HasCode(err error, code string) bool {
	var re *ReactiveError
	for err != nil {
		if !stderrors.As(err, &re) {
			return false
		}
		if re.Code == code {
			return true
		}
		err = re.Wrapped
	}
	return false
}
