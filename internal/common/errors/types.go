package errors

import (
	"fmt"
	"time"
)

// ErrorType is the broad class of a failure.
type ErrorType string

const (
	// The store answered with success=false
	ErrorTypeRemoteRejection ErrorType = "remote_rejection"

	// Transport failures: the store could not be reached or answered garbage
	ErrorTypeNetwork    ErrorType = "network_error"
	ErrorTypeTimeout    ErrorType = "timeout_error"
	ErrorTypeConnection ErrorType = "connection_error"
	ErrorTypeParsing    ErrorType = "parsing_error"

	// Local short-circuits
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeConfig     ErrorType = "config_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"

	ErrorTypeInternal ErrorType = "internal_error"
)

// ConsoleError is the single error type crossing package boundaries in the console.
type ConsoleError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	Component string `json:"component,omitempty"`
	Operation string `json:"operation,omitempty"`
}

func (e *ConsoleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *ConsoleError) Unwrap() error {
	return e.Cause
}

func (e *ConsoleError) Is(target error) bool {
	if t, ok := target.(*ConsoleError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

func (e *ConsoleError) WithContext(key string, value interface{}) *ConsoleError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *ConsoleError) WithComponent(component string) *ConsoleError {
	e.Component = component
	return e
}

func (e *ConsoleError) WithOperation(operation string) *ConsoleError {
	e.Operation = operation
	return e
}

// NewConsoleError builds an error without a cause.
func NewConsoleError(errorType ErrorType, code, message string) *ConsoleError {
	return &ConsoleError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WrapError builds an error around cause.
func WrapError(errorType ErrorType, code, message string, cause error) *ConsoleError {
	return &ConsoleError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// NewRemoteRejection carries the store's message verbatim.
func NewRemoteRejection(operation, message string) *ConsoleError {
	return NewConsoleError(ErrorTypeRemoteRejection, "rejected", message).
		WithOperation(operation)
}

func NewNetworkError(code, message string, cause error) *ConsoleError {
	return WrapError(ErrorTypeNetwork, code, message, cause)
}

func NewTimeoutError(operation string, cause error) *ConsoleError {
	return WrapError(ErrorTypeTimeout, "timeout",
		fmt.Sprintf("Operation %s timed out", operation), cause).
		WithOperation(operation)
}

func NewConnectionError(target string, cause error) *ConsoleError {
	return WrapError(ErrorTypeConnection, "connection_failed",
		fmt.Sprintf("Failed to connect to %s", target), cause).
		WithContext("target", target)
}

func NewParsingError(dataType, message string, cause error) *ConsoleError {
	return WrapError(ErrorTypeParsing, "parse_failed", message, cause).
		WithContext("data_type", dataType)
}

// NewValidationError reports bad operator input for field.
func NewValidationError(field, message string) *ConsoleError {
	return NewConsoleError(ErrorTypeValidation, "validation_failed", message).
		WithContext("field", field)
}

// NewConfigError reports an unusable configuration section.
func NewConfigError(field, message string) *ConsoleError {
	return NewConsoleError(ErrorTypeConfig, "invalid_config", message).
		WithContext("field", field)
}

// NewNotFoundError reports a missing row or option.
func NewNotFoundError(kind string, id interface{}) *ConsoleError {
	return NewConsoleError(ErrorTypeNotFound, "not_found",
		fmt.Sprintf("%s %v not found", kind, id)).
		WithContext("id", id)
}

// NewConflictError reports an action refused because of the row's current state.
func NewConflictError(message string) *ConsoleError {
	return NewConsoleError(ErrorTypeConflict, "state_conflict", message)
}

func NewInternalError(component, message string, cause error) *ConsoleError {
	return WrapError(ErrorTypeInternal, "internal_error", message, cause).
		WithComponent(component)
}
