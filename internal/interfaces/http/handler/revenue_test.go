package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/backend/internal/application/report"
	"github.com/ordersync/backend/internal/domain/integration"
)

type MockRevenueReporter struct {
	mock.Mock
}

func (m *MockRevenueReporter) GetRevenue(ctx context.Context, merchantID uuid.UUID, filter report.RevenueFilter) (*report.RevenueResponse, error) {
	args := m.Called(ctx, merchantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.RevenueResponse), args.Error(1)
}

func (m *MockRevenueReporter) GetTotalRevenue(ctx context.Context, filter report.RevenueFilter) (*report.TotalRevenueResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.TotalRevenueResponse), args.Error(1)
}

func (m *MockRevenueReporter) ListMerchantRevenue(ctx context.Context, filter report.RevenueFilter) ([]report.MerchantRevenueResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]report.MerchantRevenueResponse), args.Error(1)
}

func newRevenueEngine(reporter RevenueReporter) *gin.Engine {
	h := NewRevenueHandler(reporter)
	engine := gin.New()
	engine.GET("/api/v1/merchants/revenue", h.GetTotalRevenue)
	engine.GET("/api/v1/merchants/revenue/breakdown", h.ListMerchantRevenue)
	engine.GET("/api/v1/merchants/:id/revenue", h.GetRevenue)
	return engine
}

func TestRevenueHandler_GetRevenue(t *testing.T) {
	merchantID := uuid.New()

	t.Run("unbounded", func(t *testing.T) {
		reporter := new(MockRevenueReporter)
		reporter.On("GetRevenue", mock.Anything, merchantID, report.RevenueFilter{}).Return(&report.RevenueResponse{
			MerchantID: merchantID.String(),
			OrderCount: 3,
			GMV:        decimal.RequireFromString("100"),
			AOV:        decimal.RequireFromString("33.33"),
		}, nil)

		w, resp := doRequest(t, newRevenueEngine(reporter), http.MethodGet, "/api/v1/merchants/"+merchantID.String()+"/revenue", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got map[string]any
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, "100", got["gmv"])
		assert.Equal(t, "33.33", got["aov"])
	})

	t.Run("bounded", func(t *testing.T) {
		reporter := new(MockRevenueReporter)
		reporter.On("GetRevenue", mock.Anything, merchantID, mock.MatchedBy(func(f report.RevenueFilter) bool {
			return f.From != nil && f.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) &&
				f.To != nil && f.To.Equal(time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC))
		})).Return(&report.RevenueResponse{MerchantID: merchantID.String()}, nil)

		w, _ := doRequest(t, newRevenueEngine(reporter), http.MethodGet,
			"/api/v1/merchants/"+merchantID.String()+"/revenue?from=2024-01-01&to=2024-02-01T12:00:00Z", nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("unknown merchant", func(t *testing.T) {
		reporter := new(MockRevenueReporter)
		reporter.On("GetRevenue", mock.Anything, merchantID, mock.Anything).Return(nil, integration.ErrMerchantNotFound)

		w, _ := doRequest(t, newRevenueEngine(reporter), http.MethodGet, "/api/v1/merchants/"+merchantID.String()+"/revenue", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed input", func(t *testing.T) {
		engine := newRevenueEngine(new(MockRevenueReporter))

		w, _ := doRequest(t, engine, http.MethodGet, "/api/v1/merchants/abc/revenue", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = doRequest(t, engine, http.MethodGet, "/api/v1/merchants/"+merchantID.String()+"/revenue?to=soon", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRevenueHandler_GetTotalRevenue(t *testing.T) {
	t.Run("unbounded", func(t *testing.T) {
		reporter := new(MockRevenueReporter)
		reporter.On("GetTotalRevenue", mock.Anything, report.RevenueFilter{}).Return(&report.TotalRevenueResponse{
			OrderCount: 4,
			GMV:        decimal.RequireFromString("90"),
			AOV:        decimal.RequireFromString("22.5"),
		}, nil)

		w, resp := doRequest(t, newRevenueEngine(reporter), http.MethodGet, "/api/v1/merchants/revenue", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got map[string]any
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, "90", got["gmv"])
		assert.Equal(t, "22.5", got["aov"])
		assert.EqualValues(t, 4, got["order_count"])
	})

	t.Run("bounded", func(t *testing.T) {
		reporter := new(MockRevenueReporter)
		reporter.On("GetTotalRevenue", mock.Anything, mock.MatchedBy(func(f report.RevenueFilter) bool {
			return f.From != nil && f.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) && f.To == nil
		})).Return(&report.TotalRevenueResponse{}, nil)

		w, _ := doRequest(t, newRevenueEngine(reporter), http.MethodGet, "/api/v1/merchants/revenue?from=2024-01-01", nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		reporter.AssertExpectations(t)
	})

	t.Run("bad bound", func(t *testing.T) {
		reporter := new(MockRevenueReporter)

		w, _ := doRequest(t, newRevenueEngine(reporter), http.MethodGet, "/api/v1/merchants/revenue?from=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		reporter.AssertNotCalled(t, "GetTotalRevenue", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		reporter := new(MockRevenueReporter)
		reporter.On("GetTotalRevenue", mock.Anything, mock.Anything).Return(nil, integration.ErrPersistence)

		w, _ := doRequest(t, newRevenueEngine(reporter), http.MethodGet, "/api/v1/merchants/revenue", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRevenueHandler_ListMerchantRevenue(t *testing.T) {
	reporter := new(MockRevenueReporter)
	merchantID := uuid.New()
	reporter.On("ListMerchantRevenue", mock.Anything, report.RevenueFilter{}).Return([]report.MerchantRevenueResponse{
		{MerchantID: merchantID.String(), Name: "Acme", OrderCount: 3, GMV: decimal.NewFromInt(100), AOV: decimal.RequireFromString("33.33")},
		{MerchantID: uuid.NewString(), Name: "Bazaar", GMV: decimal.Zero, AOV: decimal.Zero},
	}, nil)

	w, resp := doRequest(t, newRevenueEngine(reporter), http.MethodGet, "/api/v1/merchants/revenue/breakdown", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, merchantID.String(), rows[0]["merchant_id"])
	assert.Equal(t, "33.33", rows[0]["aov"])
	assert.Equal(t, "0", rows[1]["gmv"])
}
