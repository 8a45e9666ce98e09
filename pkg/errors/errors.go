// Package errors provides structured error types for the worksite engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the pipeline
//   - Machine-readable error codes for programmatic handling
//   - Sentinel errors usable with the standard errors.Is
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Malformed persisted data or input
//   - NOT_FOUND_*: Resource or reference not found
//   - CONFIG_*: Builder or style configuration errors
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.Wrap(errors.ErrCodeUnknownBuilder, errors.ErrUnknownBuilderType, "builder %q", name)
//	if errors.Is(err, errors.ErrCodeUnknownBuilder) {
//	    // Handle registry miss
//	}
//
// Because every structured error wraps one of the sentinels below, the
// standard library check works as well:
//
//	stderrors.Is(err, errors.ErrUnknownBuilderType)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Persisted data errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidJSON      Code = "INVALID_JSON"
	ErrCodeInvalidOption    Code = "INVALID_OPTION"
	ErrCodeInvalidRandom    Code = "INVALID_RANDOM"
	ErrCodeInvalidReference Code = "INVALID_REFERENCE"

	// Lookup errors
	ErrCodeUnknownBuilder   Code = "NOT_FOUND_BUILDER"
	ErrCodeMissingReference Code = "NOT_FOUND_OPTION_REFERENCE"
	ErrCodeNotFound         Code = "NOT_FOUND"

	// Configuration errors
	ErrCodeEmptyDistribution Code = "CONFIG_EMPTY_DISTRIBUTION"
	ErrCodeCyclicTree        Code = "CONFIG_CYCLIC_TREE"
	ErrCodeContextMismatch   Code = "CONFIG_CONTEXT_MISMATCH"
	ErrCodeTypeMismatch      Code = "CONFIG_TYPE_MISMATCH"
	ErrCodeStyle             Code = "CONFIG_STYLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Sentinel errors of the evaluation engine. Structured errors built by the
// engine wrap exactly one of these.
var (
	// ErrUnknownBuilderType is returned when no factory is registered for a builder name.
	ErrUnknownBuilderType = errors.New("unknown builder type")

	// ErrAmbiguousOption is returned when persisted option data sets both random and ref.
	ErrAmbiguousOption = errors.New("ambiguous option")

	// ErrUnderspecifiedOption is returned when persisted option data sets neither random nor ref.
	ErrUnderspecifiedOption = errors.New("underspecified option")

	// ErrMissingOptionReference is returned when a style lacks the slot an option refers to.
	ErrMissingOptionReference = errors.New("missing option reference")

	// ErrEmptyDistribution is returned when a weighted list has nothing to choose from.
	ErrEmptyDistribution = errors.New("empty distribution")

	// ErrCyclicBuilderTree is returned when evaluation exceeds the maximum tree depth.
	ErrCyclicBuilderTree = errors.New("cyclic builder tree")

	// ErrContextMismatch is returned when a builder receives a context kind it cannot consume.
	ErrContextMismatch = errors.New("context mismatch")

	// ErrTypeMismatch is returned when a random or option produces the wrong value type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnknownRandom is returned when a random JSON tag is not recognized.
	ErrUnknownRandom = errors.New("unknown random type")
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// UnknownBuilderType reports a registry miss for name.
func UnknownBuilderType(name string) *Error {
	return Wrap(ErrCodeUnknownBuilder, ErrUnknownBuilderType, "no builder registered for name %q", name)
}

// MissingOptionReference reports an option reference absent from the active style.
func MissingOptionReference(ref string) *Error {
	return Wrap(ErrCodeMissingReference, ErrMissingOptionReference, "style has no option %q", ref)
}

// CyclicBuilderTree reports an evaluation that went deeper than limit.
func CyclicBuilderTree(limit int) *Error {
	return Wrap(ErrCodeCyclicTree, ErrCyclicBuilderTree, "builder tree deeper than %d levels", limit)
}
