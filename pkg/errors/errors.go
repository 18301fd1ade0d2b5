package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Document errors; any of these rejects the tutorial before execution starts
	ErrDocumentParse       ErrorCode = "DOCUMENT_PARSE"
	ErrMalformedAttributes ErrorCode = "MALFORMED_ATTRIBUTES"
	ErrOrphanAction        ErrorCode = "ORPHAN_ACTION"

	// Execution errors, scoped to a single action
	ErrPathEscape ErrorCode = "PATH_ESCAPE"
	ErrTimeout    ErrorCode = "TIMEOUT"
	ErrValidation ErrorCode = "VALIDATION_MISMATCH"
	ErrFilesystem ErrorCode = "FILESYSTEM"
	ErrExecution  ErrorCode = "EXECUTION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Supplementary surfaces
	ErrFetch  ErrorCode = "FETCH"
	ErrRender ErrorCode = "RENDER"
)

// GuideError represents a structured error with code and details
type GuideError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *GuideError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GuideError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *GuideError) Is(target error) bool {
	var targetErr *GuideError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new GuideError with the given code and message
func New(code ErrorCode, message string) *GuideError {
	return &GuideError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new GuideError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *GuideError {
	return &GuideError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a GuideError
func Wrap(err error, code ErrorCode, message string) *GuideError {
	if err == nil {
		return nil
	}
	return &GuideError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *GuideError {
	if err == nil {
		return nil
	}
	return &GuideError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *GuideError) WithDetail(key string, value interface{}) *GuideError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithLine records the source line a document error originates from
func (e *GuideError) WithLine(line int) *GuideError {
	return e.WithDetail("line", line)
}

// WithLine attaches the originating source line to err when its chain
// contains a GuideError; other errors pass through unchanged.
func WithLine(err error, line int) error {
	var guideErr *GuideError
	if errors.As(err, &guideErr) {
		guideErr.WithLine(line)
	}
	return err
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var guideErr *GuideError
	if errors.As(err, &guideErr) {
		return guideErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a GuideError
func GetErrorCode(err error) ErrorCode {
	var guideErr *GuideError
	if errors.As(err, &guideErr) {
		return guideErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a GuideError
func GetErrorDetails(err error) map[string]interface{} {
	var guideErr *GuideError
	if errors.As(err, &guideErr) {
		return guideErr.Details
	}
	return nil
}

// Line extracts the recorded source line from a document error, or 0
func Line(err error) int {
	details := GetErrorDetails(err)
	if details == nil {
		return 0
	}
	if line, ok := details["line"].(int); ok {
		return line
	}
	return 0
}
