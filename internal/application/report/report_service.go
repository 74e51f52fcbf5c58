package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/domain/integration"
)

// ReportService computes merchant revenue figures over stored orders
type ReportService struct {
	merchants integration.MerchantRepository
	revenue   integration.RevenueReader
	cache     integration.RevenueCache
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService creates a new ReportService. cache may be nil.
func NewReportService(
	merchants integration.MerchantRepository,
	revenue integration.RevenueReader,
	cache integration.RevenueCache,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		merchants: merchants,
		revenue:   revenue,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// ===================== Revenue Operations =====================

// RevenueResponse represents GMV and AOV for a merchant
type RevenueResponse struct {
	MerchantID string          `json:"merchant_id"`
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
	OrderCount int64           `json:"order_count"`
	GMV        decimal.Decimal `json:"gmv"`
	AOV        decimal.Decimal `json:"aov"`
	ComputedAt time.Time       `json:"computed_at"`
	Cached     bool            `json:"cached"`
}

// RevenueFilter bounds a revenue query by order creation time; nil bounds are open
type RevenueFilter struct {
	From *time.Time
	To   *time.Time
}

// GetRevenue returns GMV and AOV of a merchant's orders. Unbounded queries are
// served from the cache when possible.
func (s *ReportService) GetRevenue(ctx context.Context, merchantID uuid.UUID, filter RevenueFilter) (*RevenueResponse, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if _, err := s.merchants.FindByID(ctx, merchantID); err != nil {
		return nil, err
	}

	unbounded := filter.From == nil && filter.To == nil
	if unbounded && s.cache != nil {
		summary, ok, err := s.cache.Get(ctx, merchantID)
		if err != nil {
			s.logger.Warn("Revenue cache read failed",
				zap.String("merchant_id", merchantID.String()),
				zap.Error(err),
			)
		} else if ok {
			return toRevenueResponse(summary, true), nil
		}
	}

	totals, err := s.revenue.SumOrders(ctx, merchantID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	summary := integration.NewRevenueSummary(merchantID, *totals, filter.From, filter.To, s.now())

	if unbounded && s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			s.logger.Warn("Revenue cache write failed",
				zap.String("merchant_id", merchantID.String()),
				zap.Error(err),
			)
		}
	}
	return toRevenueResponse(summary, false), nil
}

// TotalRevenueResponse represents GMV and AOV across every merchant
type TotalRevenueResponse struct {
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
	OrderCount int64           `json:"order_count"`
	GMV        decimal.Decimal `json:"gmv"`
	AOV        decimal.Decimal `json:"aov"`
	ComputedAt time.Time       `json:"computed_at"`
}

// MerchantRevenueResponse is one row of the per-merchant revenue listing
type MerchantRevenueResponse struct {
	MerchantID string          `json:"merchant_id"`
	Name       string          `json:"name"`
	ShopifyID  string          `json:"shopify_id"`
	OrderCount int64           `json:"order_count"`
	GMV        decimal.Decimal `json:"gmv"`
	AOV        decimal.Decimal `json:"aov"`
}

func validateFilter(filter RevenueFilter) error {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return fmt.Errorf("%w: to is before from", integration.ErrInvalidWindow)
	}
	return nil
}

// GetTotalRevenue returns GMV and AOV over the orders of every merchant
func (s *ReportService) GetTotalRevenue(ctx context.Context, filter RevenueFilter) (*TotalRevenueResponse, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	totals, err := s.revenue.SumAllOrders(ctx, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	summary := integration.NewRevenueSummary(uuid.Nil, *totals, filter.From, filter.To, s.now())
	return &TotalRevenueResponse{
		From:       summary.From,
		To:         summary.To,
		OrderCount: summary.OrderCount,
		GMV:        summary.GMV,
		AOV:        summary.AOV,
		ComputedAt: summary.ComputedAt,
	}, nil
}

// ListMerchantRevenue returns GMV and AOV of each merchant, ordered by
// merchant name. Merchants without orders in range report zeros.
func (s *ReportService) ListMerchantRevenue(ctx context.Context, filter RevenueFilter) ([]MerchantRevenueResponse, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	merchants, err := s.merchants.List(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.revenue.SumOrdersByMerchant(ctx, filter.From, filter.To)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows := make([]MerchantRevenueResponse, len(merchants))
	for i, m := range merchants {
		summary := integration.NewRevenueSummary(m.ID, totals[m.ID], filter.From, filter.To, now)
		rows[i] = MerchantRevenueResponse{
			MerchantID: m.ID.String(),
			Name:       m.Name,
			ShopifyID:  m.ShopifyID,
			OrderCount: summary.OrderCount,
			GMV:        summary.GMV,
			AOV:        summary.AOV,
		}
	}
	return rows, nil
}

// OnCredentialSynced drops the cached summary of a merchant that gained orders
func (s *ReportService) OnCredentialSynced(ctx context.Context, cred *integration.Credential, result *integration.SyncResult, _ error) {
	if s.cache == nil || result == nil || result.CreatedCount == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, cred.MerchantID); err != nil {
		s.logger.Warn("Revenue cache invalidation failed",
			zap.String("merchant_id", cred.MerchantID.String()),
			zap.Error(err),
		)
	}
}

func toRevenueResponse(s *integration.RevenueSummary, cached bool) *RevenueResponse {
	return &RevenueResponse{
		MerchantID: s.MerchantID.String(),
		From:       s.From,
		To:         s.To,
		OrderCount: s.OrderCount,
		GMV:        s.GMV,
		AOV:        s.AOV,
		ComputedAt: s.ComputedAt,
		Cached:     cached,
	}
}
