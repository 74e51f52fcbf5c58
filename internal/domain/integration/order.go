package integration

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusUnknown is stored when Shopify omits a financial or fulfillment status
const StatusUnknown = "unknown"

// Order is one Shopify order imported for a merchant.
// ShopifyOrderID is the natural key: at most one Order exists per value.
type Order struct {
	ID                uuid.UUID
	MerchantID        uuid.UUID `validate:"required"`
	ShopifyOrderID    string    `validate:"required"`
	ShopifyName       string
	TotalPrice        decimal.Decimal
	CurrencyCode      string `validate:"omitempty,len=3"`
	FinancialStatus   string
	FulfillmentStatus string
	ShopifyCreatedAt  time.Time `validate:"required"`
	ProcessedAt       *time.Time
	ShopifyUpdatedAt  *time.Time
	CreatedAt         time.Time

	// Items is populated by the mapper and by item lookups; it is not persisted
	// together with the order.
	Items []OrderItem `validate:"-"`
}

// Validate checks the invariants required before the order is stored
func (o *Order) Validate() error {
	if o.TotalPrice.IsNegative() {
		return fmt.Errorf("%w: total price must not be negative", ErrInvalidOrder)
	}
	return validationError(ErrInvalidOrder, validate.Struct(o))
}

// OrderItem is one line item of an imported order.
// ShopifyLineItemID is the natural key. Items are never updated once stored.
type OrderItem struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ShopifyLineItemID string `validate:"required"`
	Name              string `validate:"required"`
	Quantity          int    `validate:"gte=0"`
	UnitPrice         decimal.Decimal
	TotalPrice        decimal.Decimal
	TotalDiscount     decimal.Decimal
	// TotalTax is always zero: the Admin GraphQL order query used here does not
	// expose per-line tax.
	TotalTax         decimal.Decimal
	CurrencyCode     string    `validate:"len=3"`
	ShopifyCreatedAt time.Time `validate:"required"`
	SKU              *string
	ProductID        *string
	VariantID        *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the invariants required before the item is stored
func (i *OrderItem) Validate() error {
	return validationError(ErrInvalidOrderItem, validate.Struct(i))
}
