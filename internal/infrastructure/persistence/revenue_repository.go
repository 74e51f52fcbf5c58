package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormRevenueRepository implements integration.RevenueReader using GORM
type GormRevenueRepository struct {
	db *gorm.DB
}

// NewGormRevenueRepository creates a new GormRevenueRepository
func NewGormRevenueRepository(db *gorm.DB) *GormRevenueRepository {
	return &GormRevenueRepository{db: db}
}

type revenueRow struct {
	MerchantID uuid.UUID
	OrderCount int64
	Gross      decimal.Decimal
}

const revenueColumns = "COUNT(*) AS order_count, COALESCE(SUM(total_price), 0) AS gross"

// ranged starts an orders aggregate bounded by Shopify creation time
func (r *GormRevenueRepository) ranged(ctx context.Context, from, to *time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if from != nil {
		query = query.Where("shopify_created_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("shopify_created_at <= ?", to.UTC())
	}
	return query
}

// SumOrders counts a merchant's orders and sums their totals, bounded by
// Shopify creation time. Nil bounds are open.
func (r *GormRevenueRepository) SumOrders(ctx context.Context, merchantID uuid.UUID, from, to *time.Time) (*integration.RevenueTotals, error) {
	var row revenueRow
	if err := r.ranged(ctx, from, to).
		Select(revenueColumns).
		Where("merchant_id = ?", merchantID).
		Scan(&row).Error; err != nil {
		return nil, persistenceError("sum orders", err)
	}
	return &integration.RevenueTotals{OrderCount: row.OrderCount, Gross: row.Gross}, nil
}

// SumAllOrders counts and sums orders of every merchant
func (r *GormRevenueRepository) SumAllOrders(ctx context.Context, from, to *time.Time) (*integration.RevenueTotals, error) {
	var row revenueRow
	if err := r.ranged(ctx, from, to).
		Select(revenueColumns).
		Scan(&row).Error; err != nil {
		return nil, persistenceError("sum all orders", err)
	}
	return &integration.RevenueTotals{OrderCount: row.OrderCount, Gross: row.Gross}, nil
}

// SumOrdersByMerchant counts and sums orders grouped by merchant
func (r *GormRevenueRepository) SumOrdersByMerchant(ctx context.Context, from, to *time.Time) (map[uuid.UUID]integration.RevenueTotals, error) {
	var rows []revenueRow
	if err := r.ranged(ctx, from, to).
		Select("merchant_id, " + revenueColumns).
		Group("merchant_id").
		Scan(&rows).Error; err != nil {
		return nil, persistenceError("sum orders by merchant", err)
	}

	totals := make(map[uuid.UUID]integration.RevenueTotals, len(rows))
	for _, row := range rows {
		totals[row.MerchantID] = integration.RevenueTotals{OrderCount: row.OrderCount, Gross: row.Gross}
	}
	return totals, nil
}

// Ensure GormRevenueRepository implements the port
var _ integration.RevenueReader = (*GormRevenueRepository)(nil)
