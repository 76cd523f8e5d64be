package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// IsConsoleError finds a ConsoleError anywhere in err's chain.
func IsConsoleError(err error) (*ConsoleError, bool) {
	var consoleErr *ConsoleError
	if errors.As(err, &consoleErr) {
		return consoleErr, true
	}
	return nil, false
}

// HasErrorType reports whether err carries a ConsoleError of errorType.
func HasErrorType(err error, errorType ErrorType) bool {
	consoleErr, ok := IsConsoleError(err)
	if !ok {
		return false
	}
	return consoleErr.Type == errorType
}

// IsTransport reports whether err is a transport failure rather than a store answer.
func IsTransport(err error) bool {
	consoleErr, ok := IsConsoleError(err)
	if !ok {
		return false
	}
	switch consoleErr.Type {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeConnection, ErrorTypeParsing:
		return true
	}
	return false
}

// IsRemoteRejection reports a success=false answer from the gateway.
func IsRemoteRejection(err error) bool {
	return HasErrorType(err, ErrorTypeRemoteRejection)
}

// ClassifyError maps an arbitrary error onto the console taxonomy.
func ClassifyError(err error) *ConsoleError {
	if err == nil {
		return nil
	}

	if consoleErr, ok := IsConsoleError(err); ok {
		return consoleErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request", err)
	}
	if errors.Is(err, context.Canceled) {
		return NewNetworkError("canceled", "Request canceled", err)
	}

	errStrLower := strings.ToLower(err.Error())

	if isNetworkError(err, errStrLower) {
		return classifyNetworkError(err, errStrLower)
	}

	if isParsingError(errStrLower) {
		return NewParsingError("json", "Failed to parse data", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NewNetworkError("url_error", "Invalid URL or URL request failed", err)
	}

	return NewInternalError("unknown", "Unclassified error occurred", err)
}

func isNetworkError(err error, errStrLower string) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}

	networkKeywords := []string{
		"connection", "network", "timeout", "refused",
		"reset", "broken pipe", "no route to host",
		"host unreachable", "dns", "no such host",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStrLower, keyword) {
			return true
		}
	}

	return false
}

func classifyNetworkError(err error, errStrLower string) *ConsoleError {
	if strings.Contains(errStrLower, "timeout") {
		return NewTimeoutError("network_request", err)
	}

	if strings.Contains(errStrLower, "connection refused") {
		return NewConnectionError("channel_store", err)
	}

	if strings.Contains(errStrLower, "connection reset") ||
		strings.Contains(errStrLower, "broken pipe") {
		return NewConnectionError("channel_store", err).
			WithContext("reason", "connection_lost")
	}

	if strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "dns") {
		return NewNetworkError("dns_error", "DNS resolution failed", err)
	}

	if strings.Contains(errStrLower, "no route to host") ||
		strings.Contains(errStrLower, "host unreachable") {
		return NewNetworkError("routing_error", "Host unreachable", err)
	}

	return NewNetworkError("generic", "Network operation failed", err)
}

func isParsingError(errStrLower string) bool {
	parsingKeywords := []string{
		"unmarshal", "marshal", "json", "parse", "decode", "encode",
		"invalid character", "unexpected end",
	}

	for _, keyword := range parsingKeywords {
		if strings.Contains(errStrLower, keyword) {
			return true
		}
	}

	return false
}

// UserMessage is the text shown to the operator for err. Store rejections are
// passed through verbatim, transport failures use the underlying description.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	consoleErr, ok := IsConsoleError(err)
	if !ok {
		return err.Error()
	}
	switch {
	case consoleErr.Type == ErrorTypeRemoteRejection:
		return consoleErr.Message
	case consoleErr.Cause != nil:
		return consoleErr.Cause.Error()
	default:
		return consoleErr.Message
	}
}

// ErrorSummary renders message, code, component and operation on one line.
func ErrorSummary(err error) string {
	if err == nil {
		return "no error"
	}

	if consoleErr, ok := IsConsoleError(err); ok {
		summary := fmt.Sprintf("%s (%s)", consoleErr.Message, consoleErr.Code)
		if consoleErr.Component != "" {
			summary += fmt.Sprintf(" in %s", consoleErr.Component)
		}
		if consoleErr.Operation != "" {
			summary += fmt.Sprintf(" during %s", consoleErr.Operation)
		}
		return summary
	}

	return err.Error()
}
