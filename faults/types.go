// Package faults defines the error categories shared by every package in the
// module. Callers branch on the category with IsCategory or the Is* helpers.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCategory string

const (
	ConfigError     ErrorCategory = "ConfigError"
	ParseError      ErrorCategory = "ParseError"
	ValidationError ErrorCategory = "ValidationError"
	NotFoundError   ErrorCategory = "NotFoundError"
	RemoteError     ErrorCategory = "RemoteError"
	TransportError  ErrorCategory = "TransportError"
)

type TypedError struct {
	Category ErrorCategory
	Message  string
	Cause    error
}

func (e *TypedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Category)
}

func (e *TypedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewTypedError(category ErrorCategory, message string, cause error) *TypedError {
	return &TypedError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return NewTypedError(ValidationError, fmt.Sprintf(format, args...), nil)
}

// Parsef builds a ParseError wrapping cause.
func Parsef(cause error, format string, args ...any) error {
	return NewTypedError(ParseError, fmt.Sprintf(format, args...), cause)
}

// Transportf builds a TransportError wrapping a network failure.
func Transportf(cause error, format string, args ...any) error {
	return NewTypedError(TransportError, fmt.Sprintf(format, args...), cause)
}

// Configf builds a ConfigError with a formatted message.
func Configf(format string, args ...any) error {
	return NewTypedError(ConfigError, fmt.Sprintf(format, args...), nil)
}

func IsCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}

	var typedErr *TypedError
	if !errors.As(err, &typedErr) {
		return false
	}
	return typedErr.Category == category
}

func IsNotFound(err error) bool   { return IsCategory(err, NotFoundError) }
func IsValidation(err error) bool { return IsCategory(err, ValidationError) }
func IsConfig(err error) bool     { return IsCategory(err, ConfigError) }
func IsParse(err error) bool      { return IsCategory(err, ParseError) }
func IsRemote(err error) bool     { return IsCategory(err, RemoteError) }
func IsTransport(err error) bool  { return IsCategory(err, TransportError) }

// StatusError describes an HTTP response whose status did not match what the
// operation expected. The raw body is kept for diagnostics.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	if body := strings.TrimSpace(string(e.Body)); body != "" {
		msg += ": " + truncate(body, 300)
	}
	return msg
}

// NewStatusError classifies an unexpected status: 404 becomes NotFoundError,
// everything else RemoteError.
func NewStatusError(method, path string, status int, body []byte) *TypedError {
	cause := &StatusError{Method: method, Path: path, StatusCode: status, Body: body}
	category := RemoteError
	if status == 404 {
		category = NotFoundError
	}
	return NewTypedError(category, "", cause)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
