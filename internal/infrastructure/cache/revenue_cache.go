package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// DefaultKeyPrefix namespaces revenue summaries in a shared Redis
const DefaultKeyPrefix = "revenue:"

// DefaultTTL bounds how stale a cached summary can get when no sync invalidates it
const DefaultTTL = 10 * time.Minute

// cachedSummary is the serialized form of a RevenueSummary
type cachedSummary struct {
	MerchantID uuid.UUID       `json:"merchant_id"`
	OrderCount int64           `json:"order_count"`
	GMV        decimal.Decimal `json:"gmv"`
	AOV        decimal.Decimal `json:"aov"`
	ComputedAt time.Time       `json:"computed_at"`
}

func encodeSummary(s *integration.RevenueSummary) ([]byte, error) {
	data, err := json.Marshal(cachedSummary{
		MerchantID: s.MerchantID,
		OrderCount: s.OrderCount,
		GMV:        s.GMV,
		AOV:        s.AOV,
		ComputedAt: s.ComputedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode revenue summary: %w", err)
	}
	return data, nil
}

func decodeSummary(data []byte) (*integration.RevenueSummary, error) {
	var c cachedSummary
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode revenue summary: %w", err)
	}
	return &integration.RevenueSummary{
		MerchantID: c.MerchantID,
		OrderCount: c.OrderCount,
		GMV:        c.GMV,
		AOV:        c.AOV,
		ComputedAt: c.ComputedAt,
	}, nil
}

func checkCacheable(s *integration.RevenueSummary) error {
	if s == nil || s.MerchantID == uuid.Nil {
		return fmt.Errorf("revenue summary without merchant cannot be cached")
	}
	if !s.Unbounded() {
		return fmt.Errorf("only unbounded revenue summaries are cached")
	}
	return nil
}
