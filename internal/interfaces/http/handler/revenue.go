package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ordersync/backend/internal/application/report"
	"github.com/ordersync/backend/internal/interfaces/http/dto"
)

// RevenueReporter computes merchant revenue figures
type RevenueReporter interface {
	GetRevenue(ctx context.Context, merchantID uuid.UUID, filter report.RevenueFilter) (*report.RevenueResponse, error)
	GetTotalRevenue(ctx context.Context, filter report.RevenueFilter) (*report.TotalRevenueResponse, error)
	ListMerchantRevenue(ctx context.Context, filter report.RevenueFilter) ([]report.MerchantRevenueResponse, error)
}

// RevenueHandler serves GMV and AOV per merchant and across merchants
type RevenueHandler struct {
	BaseHandler
	reports RevenueReporter
}

// NewRevenueHandler creates a new RevenueHandler
func NewRevenueHandler(reports RevenueReporter) *RevenueHandler {
	return &RevenueHandler{reports: reports}
}

// bindRange reads the optional from/to query parameters
func (h *RevenueHandler) bindRange(c *gin.Context) (report.RevenueFilter, bool) {
	var query dto.RangeQuery
	var filter report.RevenueFilter
	if err := c.ShouldBindQuery(&query); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return filter, false
	}

	var err error
	if filter.From, err = dto.ParseTimeParam(query.From); err != nil {
		h.HandleError(c, err)
		return filter, false
	}
	if filter.To, err = dto.ParseTimeParam(query.To); err != nil {
		h.HandleError(c, err)
		return filter, false
	}
	return filter, true
}

// GetRevenue godoc
// @ID           getMerchantRevenue
// @Summary      Get GMV and AOV of a merchant
// @Tags         reports
// @Produce      json
// @Param        id   path  string true  "Merchant ID"
// @Param        from query string false "Lower bound on Shopify creation time"
// @Param        to   query string false "Upper bound on Shopify creation time"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /merchants/{id}/revenue [get]
func (h *RevenueHandler) GetRevenue(c *gin.Context) {
	merchantID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	filter, ok := h.bindRange(c)
	if !ok {
		return
	}

	resp, err := h.reports.GetRevenue(c.Request.Context(), merchantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetTotalRevenue godoc
// @ID           getTotalRevenue
// @Summary      Get GMV and AOV across every merchant
// @Tags         reports
// @Produce      json
// @Param        from query string false "Lower bound on Shopify creation time"
// @Param        to   query string false "Upper bound on Shopify creation time"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /merchants/revenue [get]
func (h *RevenueHandler) GetTotalRevenue(c *gin.Context) {
	filter, ok := h.bindRange(c)
	if !ok {
		return
	}

	resp, err := h.reports.GetTotalRevenue(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMerchantRevenue godoc
// @ID           listMerchantRevenue
// @Summary      List GMV and AOV of each merchant
// @Tags         reports
// @Produce      json
// @Param        from query string false "Lower bound on Shopify creation time"
// @Param        to   query string false "Upper bound on Shopify creation time"
// @Success      200 {object} dto.Response
// @Router       /merchants/revenue/breakdown [get]
func (h *RevenueHandler) ListMerchantRevenue(c *gin.Context) {
	filter, ok := h.bindRange(c)
	if !ok {
		return
	}

	rows, err := h.reports.ListMerchantRevenue(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}
