package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AOVPlaces is the number of decimal places AOV is rounded to
const AOVPlaces = 2

// RevenueSummary reports gross merchandise value and average order value of a
// merchant's stored orders. Nil bounds are open.
type RevenueSummary struct {
	MerchantID uuid.UUID
	From       *time.Time
	To         *time.Time
	OrderCount int64
	GMV        decimal.Decimal
	AOV        decimal.Decimal
	ComputedAt time.Time
}

// NewRevenueSummary derives GMV and AOV from raw totals. AOV is zero when there are no orders.
func NewRevenueSummary(merchantID uuid.UUID, totals RevenueTotals, from, to *time.Time, computedAt time.Time) *RevenueSummary {
	aov := decimal.Zero
	if totals.OrderCount > 0 {
		aov = totals.Gross.Div(decimal.NewFromInt(totals.OrderCount)).Round(AOVPlaces)
	}
	return &RevenueSummary{
		MerchantID: merchantID,
		From:       from,
		To:         to,
		OrderCount: totals.OrderCount,
		GMV:        totals.Gross,
		AOV:        aov,
		ComputedAt: computedAt,
	}
}

// Unbounded reports whether the summary covers every stored order
func (s *RevenueSummary) Unbounded() bool {
	return s.From == nil && s.To == nil
}

// RevenueCache keeps unbounded revenue summaries per merchant
type RevenueCache interface {
	// Get returns ok=false on a miss
	Get(ctx context.Context, merchantID uuid.UUID) (summary *RevenueSummary, ok bool, err error)
	Set(ctx context.Context, summary *RevenueSummary) error
	Invalidate(ctx context.Context, merchantID uuid.UUID) error
}
