package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ordersync/backend/internal/domain/integration"
)

// OrderListQuery holds the query string of GET /orders
type OrderListQuery struct {
	ListRequest
	MerchantID string `form:"merchant_id" binding:"omitempty,uuid"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// RangeQuery holds optional from/to query parameters
type RangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// ParseTimeParam parses an RFC 3339 timestamp or a YYYY-MM-DD date (UTC midnight).
// An empty value yields nil.
func ParseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is neither RFC 3339 nor YYYY-MM-DD", integration.ErrInvalidWindow, value)
	}
	return &t, nil
}

// OrderResponse represents a stored order
type OrderResponse struct {
	ID                string          `json:"id"`
	MerchantID        string          `json:"merchant_id"`
	ShopifyOrderID    string          `json:"shopify_order_id"`
	ShopifyName       string          `json:"shopify_name,omitempty"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	CurrencyCode      string          `json:"currency_code,omitempty"`
	FinancialStatus   string          `json:"financial_status"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	ShopifyCreatedAt  time.Time       `json:"shopify_created_at"`
	ProcessedAt       *time.Time      `json:"processed_at,omitempty"`
	ShopifyUpdatedAt  *time.Time      `json:"shopify_updated_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// OrderItemResponse represents a stored line item
type OrderItemResponse struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"order_id"`
	ShopifyLineItemID string          `json:"shopify_line_item_id"`
	Name              string          `json:"name"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	TotalDiscount     decimal.Decimal `json:"total_discount"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	CurrencyCode      string          `json:"currency_code"`
	SKU               *string         `json:"sku,omitempty"`
	ProductID         *string         `json:"product_id,omitempty"`
	VariantID         *string         `json:"variant_id,omitempty"`
	ShopifyCreatedAt  time.Time       `json:"shopify_created_at"`
}

// NewOrderResponse converts a domain order
func NewOrderResponse(o *integration.Order) OrderResponse {
	return OrderResponse{
		ID:                o.ID.String(),
		MerchantID:        o.MerchantID.String(),
		ShopifyOrderID:    o.ShopifyOrderID,
		ShopifyName:       o.ShopifyName,
		TotalPrice:        o.TotalPrice,
		CurrencyCode:      o.CurrencyCode,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		ShopifyCreatedAt:  o.ShopifyCreatedAt,
		ProcessedAt:       o.ProcessedAt,
		ShopifyUpdatedAt:  o.ShopifyUpdatedAt,
		CreatedAt:         o.CreatedAt,
	}
}

// NewOrderResponses converts a slice of domain orders
func NewOrderResponses(orders []integration.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = NewOrderResponse(&orders[i])
	}
	return out
}

// NewOrderItemResponses converts domain line items
func NewOrderItemResponses(items []integration.OrderItem) []OrderItemResponse {
	out := make([]OrderItemResponse, len(items))
	for i, it := range items {
		out[i] = OrderItemResponse{
			ID:                it.ID.String(),
			OrderID:           it.OrderID.String(),
			ShopifyLineItemID: it.ShopifyLineItemID,
			Name:              it.Name,
			Quantity:          it.Quantity,
			UnitPrice:         it.UnitPrice,
			TotalPrice:        it.TotalPrice,
			TotalDiscount:     it.TotalDiscount,
			TotalTax:          it.TotalTax,
			CurrencyCode:      it.CurrencyCode,
			SKU:               it.SKU,
			ProductID:         it.ProductID,
			VariantID:         it.VariantID,
			ShopifyCreatedAt:  it.ShopifyCreatedAt,
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Sync
// ---------------------------------------------------------------------------

// SyncWindowRequest is the optional body of the sync endpoints. Omitting both
// bounds syncs every order.
type SyncWindowRequest struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// Window converts the request into a domain window; nil means unbounded
func (r SyncWindowRequest) Window() (*integration.SyncWindow, error) {
	if r.From == nil && r.To == nil {
		return nil, nil
	}
	if r.From == nil || r.To == nil {
		return nil, integration.ErrInvalidWindow
	}
	return integration.NewSyncWindow(*r.From, *r.To)
}

// SyncResultResponse summarizes one credential pass
type SyncResultResponse struct {
	CredentialID    string          `json:"credential_id"`
	MerchantID      string          `json:"merchant_id"`
	CreatedCount    int             `json:"created_count"`
	SkippedCount    int             `json:"skipped_count"`
	FailedItemCount int             `json:"failed_item_count"`
	Pages           int             `json:"pages"`
	CreatedOrders   []OrderResponse `json:"created_orders"`
	Error           string          `json:"error,omitempty"`
	DurationMs      int64           `json:"duration_ms"`
}

// NewSyncResultResponse converts a credential result
func NewSyncResultResponse(r *integration.SyncResult) SyncResultResponse {
	created := make([]OrderResponse, len(r.CreatedOrders))
	for i, o := range r.CreatedOrders {
		created[i] = NewOrderResponse(o)
	}
	return SyncResultResponse{
		CredentialID:    r.CredentialID.String(),
		MerchantID:      r.MerchantID.String(),
		CreatedCount:    r.CreatedCount,
		SkippedCount:    r.SkippedCount,
		FailedItemCount: r.FailedItemCount,
		Pages:           r.Pages,
		CreatedOrders:   created,
		DurationMs:      r.Duration().Milliseconds(),
	}
}

// SyncBatchResponse summarizes a pass over every active credential
type SyncBatchResponse struct {
	CreatedCount int                  `json:"created_count"`
	Succeeded    int                  `json:"succeeded"`
	Failed       int                  `json:"failed"`
	Credentials  []SyncResultResponse `json:"credentials"`
}

// NewSyncBatchResponse converts a batch result
func NewSyncBatchResponse(b *integration.SyncBatchResult) SyncBatchResponse {
	creds := make([]SyncResultResponse, 0, len(b.Outcomes))
	for _, o := range b.Outcomes {
		r := SyncResultResponse{
			CredentialID:  o.CredentialID.String(),
			MerchantID:    o.MerchantID.String(),
			CreatedOrders: []OrderResponse{},
		}
		if o.Result != nil {
			r = NewSyncResultResponse(o.Result)
			r.CredentialID = o.CredentialID.String()
			r.MerchantID = o.MerchantID.String()
		}
		if o.Err != nil {
			r.Error = o.Err.Error()
		}
		creds = append(creds, r)
	}
	return SyncBatchResponse{
		CreatedCount: b.CreatedCount,
		Succeeded:    b.Succeeded(),
		Failed:       b.Failed(),
		Credentials:  creds,
	}
}
