package errors

import (
	"net/http"
)

// HTTPError is the JSON body the console server returns for failed calls.
type HTTPError struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Type    ErrorType              `json:"type,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPStatus maps an error onto the status code the console server answers with.
func HTTPStatus(err error) int {
	consoleErr := ClassifyError(err)
	if consoleErr == nil {
		return http.StatusOK
	}
	switch consoleErr.Type {
	case ErrorTypeValidation, ErrorTypeConfig:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeNetwork, ErrorTypeConnection, ErrorTypeParsing, ErrorTypeRemoteRejection:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTPError builds the response body for err.
func ToHTTPError(err error) *HTTPError {
	consoleErr := ClassifyError(err)
	if consoleErr == nil {
		return &HTTPError{Success: true}
	}
	httpErr := &HTTPError{
		Message: UserMessage(consoleErr),
		Type:    consoleErr.Type,
		Code:    consoleErr.Code,
	}
	switch consoleErr.Type {
	case ErrorTypeValidation, ErrorTypeConfig, ErrorTypeNotFound, ErrorTypeConflict:
		if len(consoleErr.Context) > 0 {
			httpErr.Details = consoleErr.Context
		}
	}
	return httpErr
}
