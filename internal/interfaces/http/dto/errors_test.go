package dto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/backend/internal/domain/integration"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodePersistence, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidWindow, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeSyncInProgress, http.StatusConflict},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeUpstream, http.StatusBadGateway},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorCodeFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"order not found", integration.ErrOrderNotFound, ErrCodeNotFound},
		{"wrapped merchant not found", fmt.Errorf("revenue: %w", integration.ErrMerchantNotFound), ErrCodeNotFound},
		{"invalid window", integration.ErrInvalidWindow, ErrCodeInvalidWindow},
		{"invalid credential", integration.ErrInvalidCredential, ErrCodeValidation},
		{"remote payload", integration.ErrInvalidRemotePayload, ErrCodeUpstream},
		{"duplicate", integration.ErrDuplicateRecord, ErrCodePersistence},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"other", errors.New("boom"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorCodeFor(tt.err))
		})
	}
}

func TestErrorCodeConstants(t *testing.T) {
	// Ensure all error codes are in the HTTP status map
	allCodes := []string{
		ErrCodeUnknown, ErrCodeInternal, ErrCodePersistence,
		ErrCodeValidation, ErrCodeValidationFormat, ErrCodeInvalidWindow,
		ErrCodeNotFound, ErrCodeConflict, ErrCodeSyncInProgress,
		ErrCodeBadRequest, ErrCodeInvalidJSON, ErrCodeRequestTooLarge,
		ErrCodeUpstream, ErrCodeTimeout,
	}
	for _, code := range allCodes {
		_, ok := ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "error code %s should be in ErrorCodeHTTPStatus map", code)
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "order not found", "req-1")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeNotFound, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, int64(41), resp.Meta.Total)
}
