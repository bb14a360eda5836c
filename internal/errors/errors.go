package errors

import (
	"errors"
	"fmt"
)

// Code categorizes a roll outcome that is not a plain success
type Code string

const (
	// CodeUnknown indicates an unclassified error
	CodeUnknown Code = "unknown"

	// CodeNotReady indicates the backing catalog has not finished loading.
	// Recoverable: the caller may retry later.
	CodeNotReady Code = "not_ready"

	// CodeNoMatch indicates the requested filters matched nothing.
	// Recoverable: surfaced to the caller as guidance.
	CodeNoMatch Code = "no_match"

	// CodeInvalid indicates structurally nonsensical parameters.
	// Terminal: never retried.
	CodeInvalid Code = "invalid"

	// CodeLimited indicates an internal attempt ceiling was hit
	// (reroll chain, assembly retries, batch size). Terminal.
	CodeLimited Code = "limited"

	// CodeFailed indicates unexpected internal state. Logged and
	// surfaced generically.
	CodeFailed Code = "failed"
)

// Error is an application error carrying a code and metadata
type Error struct {
	// Code is the outcome code
	Code Code

	// Message is the error message
	Message string

	// Cause is the wrapped error
	Cause error

	// Meta contains additional context
	Meta map[string]any
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new error with formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context, preserving its code
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var rerr *Error
	if errors.As(err, &rerr) {
		return &Error{
			Code:    rerr.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(rerr.Meta),
		}
	}

	return &Error{
		Code:    CodeUnknown,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// Helper constructors for the outcome taxonomy

// NotReady creates a not ready error
func NotReady(message string) *Error {
	return New(CodeNotReady, message)
}

// NotReadyf creates a formatted not ready error
func NotReadyf(format string, args ...any) *Error {
	return Newf(CodeNotReady, format, args...)
}

// NoMatch creates a no match error
func NoMatch(message string) *Error {
	return New(CodeNoMatch, message)
}

// NoMatchf creates a formatted no match error
func NoMatchf(format string, args ...any) *Error {
	return Newf(CodeNoMatch, format, args...)
}

// Invalid creates an invalid parameters error
func Invalid(message string) *Error {
	return New(CodeInvalid, message)
}

// Invalidf creates a formatted invalid parameters error
func Invalidf(format string, args ...any) *Error {
	return Newf(CodeInvalid, format, args...)
}

// Limited creates a limit exceeded error
func Limited(message string) *Error {
	return New(CodeLimited, message)
}

// Limitedf creates a formatted limit exceeded error
func Limitedf(format string, args ...any) *Error {
	return Newf(CodeLimited, format, args...)
}

// Failed creates an internal failure error
func Failed(message string) *Error {
	return New(CodeFailed, message)
}

// Failedf creates a formatted internal failure error
func Failedf(format string, args ...any) *Error {
	return Newf(CodeFailed, format, args...)
}

// Error checking functions

// Is checks if the error carries a specific code
func Is(err error, code Code) bool {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code == code
	}
	return false
}

// IsNotReady checks if the error is a not ready error
func IsNotReady(err error) bool {
	return Is(err, CodeNotReady)
}

// IsNoMatch checks if the error is a no match error
func IsNoMatch(err error) bool {
	return Is(err, CodeNoMatch)
}

// IsInvalid checks if the error is an invalid parameters error
func IsInvalid(err error) bool {
	return Is(err, CodeInvalid)
}

// IsLimited checks if the error is a limit exceeded error
func IsLimited(err error) bool {
	return Is(err, CodeLimited)
}

// IsFailed checks if the error is an internal failure error
func IsFailed(err error) bool {
	return Is(err, CodeFailed)
}

// GetCode returns the error code
func GetCode(err error) Code {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return CodeUnknown
}

// GetMeta returns the error metadata
func GetMeta(err error) map[string]any {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Meta
	}
	return nil
}

// copyMeta creates a copy of the metadata map
func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}

	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
