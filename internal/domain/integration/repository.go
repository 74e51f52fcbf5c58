package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Credential provider
// ---------------------------------------------------------------------------

// CredentialRepository is the read side of credential storage used by the pipeline
type CredentialRepository interface {
	// ListActive returns every credential with Active set
	ListActive(ctx context.Context) ([]Credential, error)

	// FindByID returns ErrCredentialNotFound when no credential matches
	FindByID(ctx context.Context, id uuid.UUID) (*Credential, error)

	// FindByMerchantID returns ErrCredentialNotFound when the merchant has none
	FindByMerchantID(ctx context.Context, merchantID uuid.UUID) (*Credential, error)
}

// MerchantRepository looks up merchants
type MerchantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Merchant, error)
	FindByShopifyID(ctx context.Context, shopifyID string) (*Merchant, error)
	// List returns every merchant ordered by name
	List(ctx context.Context) ([]Merchant, error)
}

// ---------------------------------------------------------------------------
// Persistence gateway
// ---------------------------------------------------------------------------

// OrderGateway is the idempotent write side used by the orchestrator
type OrderGateway interface {
	// UpsertOrder inserts the order unless one with the same ShopifyOrderID exists.
	// It returns the stored row and whether this call created it. Existing rows
	// are returned unchanged.
	UpsertOrder(ctx context.Context, order *Order) (*Order, bool, error)

	// CreateOrderItem inserts unconditionally. A second insert of the same
	// ShopifyLineItemID fails with ErrDuplicateRecord.
	CreateOrderItem(ctx context.Context, item *OrderItem) error
}

// ---------------------------------------------------------------------------
// Read side
// ---------------------------------------------------------------------------

// OrderFilter narrows order listings. Page is 1-based.
type OrderFilter struct {
	MerchantID *uuid.UUID
	From       *time.Time // inclusive lower bound on ShopifyCreatedAt
	To         *time.Time // inclusive upper bound on ShopifyCreatedAt
	Page       int
	PageSize   int
	SortBy     string // column name; unknown values fall back to shopify_created_at
	SortOrder  string // ASC or DESC
}

const (
	// DefaultPageSize is used when a listing does not set PageSize
	DefaultPageSize = 20
	// MaxPageSize caps PageSize
	MaxPageSize = 100
)

// Normalize clamps paging to valid values
func (f OrderFilter) Normalize() OrderFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

// Offset returns the row offset of the page
func (f OrderFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// OrderReader serves stored orders back to API callers
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByShopifyOrderID(ctx context.Context, shopifyOrderID string) (*Order, error)
	// FindLast returns the order with the latest Shopify creation time
	FindLast(ctx context.Context) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	// ItemsByOrderID returns ErrOrderNotFound when the order itself does not exist
	ItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)
}

// RevenueTotals is the raw aggregate behind GMV/AOV
type RevenueTotals struct {
	OrderCount int64
	Gross      decimal.Decimal
}

// RevenueReader aggregates stored order totals. Nil bounds are open.
type RevenueReader interface {
	SumOrders(ctx context.Context, merchantID uuid.UUID, from, to *time.Time) (*RevenueTotals, error)
	// SumAllOrders aggregates across every merchant
	SumAllOrders(ctx context.Context, from, to *time.Time) (*RevenueTotals, error)
	// SumOrdersByMerchant groups totals by merchant. Merchants without orders
	// in range are absent from the map.
	SumOrdersByMerchant(ctx context.Context, from, to *time.Time) (map[uuid.UUID]RevenueTotals, error)
}
