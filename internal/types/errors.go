package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for advisor errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Planning error codes
const (
	EXTRACTION_AMBIGUOUS         ErrorCode = "EXTRACTION_AMBIGUOUS"
	TOOL_UNAVAILABLE             ErrorCode = "TOOL_UNAVAILABLE"
	REPAIR_EXHAUSTED             ErrorCode = "REPAIR_EXHAUSTED"
	DEADLINE_EXCEEDED            ErrorCode = "DEADLINE_EXCEEDED"
	INTERNAL_INVARIANT_VIOLATION ErrorCode = "INTERNAL_INVARIANT_VIOLATION"
)

// Tool error codes
const (
	TOOL_NOT_FOUND       ErrorCode = "TOOL_NOT_FOUND"
	TOOL_ALREADY_EXISTS  ErrorCode = "TOOL_ALREADY_EXISTS"
	TOOL_INVALID_INPUT   ErrorCode = "TOOL_INVALID_INPUT"
	TOOL_EXECUTION_ERROR ErrorCode = "TOOL_EXECUTION_ERROR"
	TOOL_TIMEOUT         ErrorCode = "TOOL_TIMEOUT"
)

// LLM error codes
const (
	LLM_AUTH_FAILED      ErrorCode = "LLM_AUTH_FAILED"
	LLM_REQUEST_FAILED   ErrorCode = "LLM_REQUEST_FAILED"
	LLM_RESPONSE_INVALID ErrorCode = "LLM_RESPONSE_INVALID"
	LLM_RATE_LIMITED     ErrorCode = "LLM_RATE_LIMITED"
)

// Session and knowledge error codes
const (
	SESSION_NOT_FOUND         ErrorCode = "SESSION_NOT_FOUND"
	SESSION_STORE_FAILED      ErrorCode = "SESSION_STORE_FAILED"
	SESSION_BUSY              ErrorCode = "SESSION_BUSY"
	KNOWLEDGE_STORE_FAILED    ErrorCode = "KNOWLEDGE_STORE_FAILED"
	KNOWLEDGE_QUERY_FAILED    ErrorCode = "KNOWLEDGE_QUERY_FAILED"
	KNOWLEDGE_INVALID_PASSAGE ErrorCode = "KNOWLEDGE_INVALID_PASSAGE"
)

// AdvisorError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints so the
// tool orchestrator can distinguish transient transport failures from
// permanent ones.
type AdvisorError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *AdvisorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *AdvisorError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is an AdvisorError with the same Code.
func (e *AdvisorError) Is(target error) bool {
	var advErr *AdvisorError
	if errors.As(target, &advErr) {
		return e.Code == advErr.Code
	}
	return false
}

// NewError creates a new non-retryable AdvisorError with the given code and message.
func NewError(code ErrorCode, message string) *AdvisorError {
	return &AdvisorError{
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// NewRetryableError creates a new retryable AdvisorError with the given code
// and message. Use this for transient errors that may succeed on retry
// (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *AdvisorError {
	return &AdvisorError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable AdvisorError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *AdvisorError {
	return &AdvisorError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapRetryableError creates a retryable AdvisorError that wraps an existing error.
func WrapRetryableError(code ErrorCode, message string, cause error) *AdvisorError {
	return &AdvisorError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// IsRetryable reports whether err (or any error in its chain) is an
// AdvisorError marked retryable.
func IsRetryable(err error) bool {
	var advErr *AdvisorError
	if errors.As(err, &advErr) {
		return advErr.Retryable
	}
	return false
}

// CodeOf returns the error code of err if it is an AdvisorError, or an empty
// code otherwise.
func CodeOf(err error) ErrorCode {
	var advErr *AdvisorError
	if errors.As(err, &advErr) {
		return advErr.Code
	}
	return ""
}
