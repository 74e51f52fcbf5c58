package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// apiResponse mirrors dto.Response with raw data for decoding in tests
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body io.Reader) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, "req-test")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		exposeMs bool
	}{
		{"not found", integration.ErrOrderNotFound, http.StatusNotFound, dto.ErrCodeNotFound, true},
		{"invalid window", integration.ErrInvalidWindow, http.StatusBadRequest, dto.ErrCodeInvalidWindow, true},
		{"remote", fmt.Errorf("%w: 503", integration.ErrRemoteFetch), http.StatusBadGateway, dto.ErrCodeUpstream, true},
		{"persistence", integration.ErrDuplicateRecord, http.StatusInternalServerError, dto.ErrCodePersistence, false},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, dto.ErrCodeTimeout, true},
		{"unknown", errors.New("secret detail"), http.StatusInternalServerError, dto.ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			engine := gin.New()
			engine.GET("/x", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w, resp := doRequest(t, engine, http.MethodGet, "/x", nil)
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-test", resp.Error.RequestID)
			if tt.exposeMs {
				assert.Equal(t, tt.err.Error(), resp.Error.Message)
			} else {
				assert.NotContains(t, resp.Error.Message, "secret detail")
			}
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	engine := gin.New()
	engine.GET("/x", func(c *gin.Context) {
		h.HandleError(c, nil)
		c.Status(http.StatusNoContent)
	})

	w, _ := doRequest(t, engine, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
