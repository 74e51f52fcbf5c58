package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/ordersync/backend/internal/domain/integration"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodePersistence is used when the order store fails
	ErrCodePersistence = "ERR_PERSISTENCE"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeInvalidWindow is used when a date range is malformed
	ErrCodeInvalidWindow = "ERR_INVALID_WINDOW"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeSyncInProgress is used when a sync pass is already running
	ErrCodeSyncInProgress = "ERR_SYNC_IN_PROGRESS"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Upstream error codes
const (
	// ErrCodeUpstream is used when Shopify cannot be reached or answers badly
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeTimeout is used when the request context expires
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodePersistence: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,
	ErrCodeInvalidWindow:    http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeConflict:       http.StatusConflict,
	ErrCodeSyncInProgress: http.StatusConflict,

	// Input errors
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Upstream errors
	ErrCodeUpstream: http.StatusBadGateway,
	ErrCodeTimeout:  http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorCodeFor classifies a domain error. Unknown errors map to ErrCodeInternal.
func ErrorCodeFor(err error) string {
	switch {
	case errors.Is(err, integration.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, integration.ErrInvalidWindow):
		return ErrCodeInvalidWindow
	case errors.Is(err, integration.ErrInvalidCredential),
		errors.Is(err, integration.ErrInvalidOrder),
		errors.Is(err, integration.ErrInvalidOrderItem):
		return ErrCodeValidation
	case errors.Is(err, integration.ErrRemoteFetch):
		return ErrCodeUpstream
	case errors.Is(err, integration.ErrPersistence):
		return ErrCodePersistence
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	default:
		return ErrCodeInternal
	}
}
