// Package errors defines the coded domain error used across services.
//
// Services return *Error values so transports can translate a failure into a
// response without inspecting message text:
//
//	if dErrors.HasCode(err, dErrors.CodeConflict) { ... }
//
// Infrastructure facts (not found, unavailable) live in pkg/platform/sentinel and
// are translated into coded errors at the service boundary.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation covers malformed input that never mutates state.
	CodeValidation Code = "validation"
	// CodeBadRequest covers unreadable or structurally invalid requests.
	CodeBadRequest Code = "bad_request"
	// CodeConflict covers requests that collide with existing state (duplicates, double votes).
	CodeConflict Code = "conflict"
	// CodeInvalidState covers operations not allowed in the current workflow state.
	CodeInvalidState Code = "invalid_state"
	// CodeInvariantViolation is raised by constructors and aggregates; services
	// usually convert it to CodeValidation before returning.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeGateAmbiguous means an external proof could not be classified; callers retry.
	CodeGateAmbiguous Code = "gate_ambiguous"
	// CodeDistributionFailed means the ledger rejected or failed a distribution.
	CodeDistributionFailed Code = "distribution_failed"
	CodeNotFound           Code = "not_found"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeRateLimited        Code = "rate_limited"
	CodeInternal           Code = "internal_error"
)

// Error is a coded, optionally wrapped domain error.
type Error struct {
	Code    Code
	Message string
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

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The wrapped error
// stays reachable through errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the outermost *Error in the chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost *Error in err's chain has the given code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is errors.Is, re-exported so callers importing this package as dErrors
// do not also need the standard errors package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
