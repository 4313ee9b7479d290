package schema

import (
	"errors"
	"fmt"
)

// Error codes for structured error reporting.
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeActionUnavailable   = "ACTION_UNAVAILABLE"
	ErrCodeActionFailed        = "ACTION_FAILED"
	ErrCodeInvalidContinuation = "INVALID_CONTINUATION"
	ErrCodeCycleDetected       = "CYCLE_DETECTED"
	ErrCodeDecode              = "DECODE_ERROR"
)

// EngineError is the structured error type for catalog, action and decode failures.
// Errors returned by host action handlers are never wrapped in an EngineError.
type EngineError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	ElementKey string         `json:"element_key,omitempty"`
	Cause      error          `json:"-"`
}

func (e *EngineError) Error() string {
	if e.ElementKey != "" {
		return fmt.Sprintf("[%s] element %s: %s", e.Code, e.ElementKey, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// NewError creates a new EngineError.
func NewError(code, message string) *EngineError {
	return &EngineError{Code: code, Message: message}
}

// NewErrorf creates a new EngineError with a formatted message.
func NewErrorf(code, format string, args ...any) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithElement attaches an element key to the error.
func (e *EngineError) WithElement(key string) *EngineError {
	e.ElementKey = key
	return e
}

// WithCause attaches an underlying cause.
func (e *EngineError) WithCause(err error) *EngineError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *EngineError) WithDetails(details map[string]any) *EngineError {
	e.Details = details
	return e
}

// MessageOf returns the human-readable message of err. Engine errors
// contribute their message without the code prefix.
func MessageOf(err error) string {
	var engErr *EngineError
	if errors.As(err, &engErr) {
		return engErr.Message
	}
	return err.Error()
}
