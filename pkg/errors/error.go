// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories, and every category maps onto one
// Kind of the download taxonomy:
//   - General errors (1-99): Unknown
//   - Configuration errors (100-199): InvalidConfiguration
//   - Remote storage errors (200-299): NotFound, AuthError, TransientError
//   - Decoding errors (300-399): FormatError
//   - Local I/O errors (400-499): IOError
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeUnsupportedPair, "forex has no trades")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeTransient, "failed to fetch object", originalErr)
//
//	// Branch on the taxonomy
//	if errors.IsNotFound(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Kind returns the taxonomy bucket of the error.
func (e *Error) Kind() Kind {
	return e.Code.Kind()
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetKind extracts the taxonomy Kind of the outermost *Error in err's chain.
func GetKind(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	return GetCode(err).Kind()
}

// IsInvalidConfiguration reports an unsupported market/endpoint pair or a malformed range.
func IsInvalidConfiguration(err error) bool {
	return GetKind(err) == KindInvalidConfiguration
}

// IsNotFound reports a flat file the vendor does not publish for that date.
func IsNotFound(err error) bool {
	return GetKind(err) == KindNotFound
}

// IsAuth reports rejected credentials.
func IsAuth(err error) bool {
	return GetKind(err) == KindAuth
}

// IsTransient reports a network or service failure.
func IsTransient(err error) bool {
	return GetKind(err) == KindTransient
}

// IsFormat reports a payload that could not be decompressed or parsed.
func IsFormat(err error) bool {
	return GetKind(err) == KindFormat
}

// IsIO reports a local filesystem failure.
func IsIO(err error) bool {
	return GetKind(err) == KindIO
}
