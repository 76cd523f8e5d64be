package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewConsoleError(t *testing.T) {
	err := NewConsoleError(ErrorTypeNetwork, "test_code", "test message")

	if err.Type != ErrorTypeNetwork {
		t.Errorf("Expected type %v, got %v", ErrorTypeNetwork, err.Type)
	}
	if err.Code != "test_code" {
		t.Errorf("Expected code 'test_code', got '%s'", err.Code)
	}
	if err.Message != "test message" {
		t.Errorf("Expected message 'test message', got '%s'", err.Message)
	}
	if err.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("original error")
	err := WrapError(ErrorTypeInternal, "wrap_test", "wrapped message", cause)

	if err.Cause != cause {
		t.Error("Cause not set correctly")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() doesn't return original error")
	}
}

func TestConsoleError_WithContext(t *testing.T) {
	err := NewConsoleError(ErrorTypeConfig, "test", "test message")
	err.WithContext("key1", "value1").WithContext("key2", 42)

	if len(err.Context) != 2 {
		t.Errorf("Expected 2 context items, got %d", len(err.Context))
	}
	if err.Context["key1"] != "value1" {
		t.Errorf("Expected context key1='value1', got %v", err.Context["key1"])
	}
}

func TestConsoleError_Is(t *testing.T) {
	a := NewConsoleError(ErrorTypeNotFound, "not_found", "row 1 not found")
	b := NewConsoleError(ErrorTypeNotFound, "not_found", "row 2 not found")
	c := NewConsoleError(ErrorTypeConflict, "state_conflict", "deleted")

	if !errors.Is(fmt.Errorf("wrapped: %w", a), b) {
		t.Error("errors with same type and code should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with different type should not match")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"rejection verbatim", NewRemoteRejection("update", "channel not found"), "channel not found"},
		{"transport uses cause", NewNetworkError("generic", "Network operation failed", errors.New("dial tcp: refused")), "dial tcp: refused"},
		{"validation message", NewValidationError("priority", "priority must be an integer"), "priority must be an integer"},
		{"plain error", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"deadline", context.DeadlineExceeded, ErrorTypeTimeout},
		{"refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), ErrorTypeConnection},
		{"dns", errors.New("lookup nowhere: no such host"), ErrorTypeNetwork},
		{"json", errors.New("invalid character 'x' looking for beginning of value"), ErrorTypeParsing},
		{"other", errors.New("something odd"), ErrorTypeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got.Type != tt.want {
				t.Errorf("ClassifyError() type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestIsTransport(t *testing.T) {
	if !IsTransport(NewTimeoutError("list", nil)) {
		t.Error("timeout should be transport")
	}
	if IsTransport(NewRemoteRejection("list", "nope")) {
		t.Error("rejection should not be transport")
	}
	if IsTransport(errors.New("plain")) {
		t.Error("plain errors are not classified as transport")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidationError("weight", "bad"), http.StatusBadRequest},
		{NewNotFoundError("channel", 3), http.StatusNotFound},
		{NewConflictError("deleted"), http.StatusConflict},
		{NewRemoteRejection("update", "denied"), http.StatusBadGateway},
		{NewTimeoutError("list", nil), http.StatusGatewayTimeout},
		{errors.New("odd"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorSummary(t *testing.T) {
	err := NewInternalError("collection", "cache corrupted", nil).WithOperation("splice")
	want := "cache corrupted (internal_error) in collection during splice"
	if got := ErrorSummary(err); got != want {
		t.Errorf("ErrorSummary() = %q, want %q", got, want)
	}
	if ErrorSummary(nil) != "no error" {
		t.Error("nil summary mismatch")
	}
}
