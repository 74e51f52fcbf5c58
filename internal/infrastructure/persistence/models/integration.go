package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Merchant
// ---------------------------------------------------------------------------

// MerchantModel is the persistence model for the Merchant domain entity.
type MerchantModel struct {
	BaseModel
	Name      string `gorm:"type:text;not null"`
	ShopifyID string `gorm:"type:text;not null;uniqueIndex:idx_merchants_shopify_id"`
}

// TableName returns the table name for GORM
func (MerchantModel) TableName() string {
	return "merchants"
}

// ToDomain converts the persistence model to a domain Merchant.
func (m *MerchantModel) ToDomain() *integration.Merchant {
	return &integration.Merchant{
		ID:        m.ID,
		Name:      m.Name,
		ShopifyID: m.ShopifyID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Merchant.
func (m *MerchantModel) FromDomain(merchant *integration.Merchant) {
	m.ID = merchant.ID
	m.Name = merchant.Name
	m.ShopifyID = merchant.ShopifyID
	m.CreatedAt = merchant.CreatedAt
	m.UpdatedAt = merchant.UpdatedAt
}

// ---------------------------------------------------------------------------
// Credential
// ---------------------------------------------------------------------------

// CredentialModel is the persistence model for a merchant's Shopify credential.
// One credential per merchant.
type CredentialModel struct {
	BaseModel
	MerchantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_shopify_credentials_merchant"`
	ShopDomain   string    `gorm:"type:varchar(255);not null"`
	APIKey       string    `gorm:"type:varchar(255);not null;default:''"`
	APISecretKey string    `gorm:"type:varchar(255);not null;default:''"`
	AccessToken  string    `gorm:"type:varchar(255);not null"`
	Active       bool      `gorm:"not null;default:false;index:idx_shopify_credentials_active"`
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "shopify_credentials"
}

// ToDomain converts the persistence model to a domain Credential.
func (m *CredentialModel) ToDomain() *integration.Credential {
	return &integration.Credential{
		ID:           m.ID,
		MerchantID:   m.MerchantID,
		ShopDomain:   m.ShopDomain,
		APIKey:       m.APIKey,
		APISecretKey: m.APISecretKey,
		AccessToken:  m.AccessToken,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Credential.
func (m *CredentialModel) FromDomain(c *integration.Credential) {
	m.ID = c.ID
	m.MerchantID = c.MerchantID
	m.ShopDomain = c.ShopDomain
	m.APIKey = c.APIKey
	m.APISecretKey = c.APISecretKey
	m.AccessToken = c.AccessToken
	m.Active = c.Active
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// ---------------------------------------------------------------------------
// Order
// ---------------------------------------------------------------------------

// OrderModel is the persistence model for the Order domain entity.
// shopify_order_id is the natural key.
type OrderModel struct {
	BaseModel
	MerchantID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_orders_merchant_created,priority:1"`
	ShopifyOrderID    string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_shopify_order_id"`
	ShopifyName       string          `gorm:"type:varchar(64)"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	CurrencyCode      string          `gorm:"type:varchar(3)"`
	FinancialStatus   string          `gorm:"type:varchar(64);not null;default:'unknown'"`
	FulfillmentStatus string          `gorm:"type:varchar(64);not null;default:'unknown'"`
	ShopifyCreatedAt  time.Time       `gorm:"not null;index:idx_orders_merchant_created,priority:2"`
	ProcessedAt       *time.Time
	ShopifyUpdatedAt  *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order without items.
func (m *OrderModel) ToDomain() *integration.Order {
	return &integration.Order{
		ID:                m.ID,
		MerchantID:        m.MerchantID,
		ShopifyOrderID:    m.ShopifyOrderID,
		ShopifyName:       m.ShopifyName,
		TotalPrice:        m.TotalPrice,
		CurrencyCode:      m.CurrencyCode,
		FinancialStatus:   m.FinancialStatus,
		FulfillmentStatus: m.FulfillmentStatus,
		ShopifyCreatedAt:  m.ShopifyCreatedAt,
		ProcessedAt:       m.ProcessedAt,
		ShopifyUpdatedAt:  m.ShopifyUpdatedAt,
		CreatedAt:         m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Order. Items are not copied.
func (m *OrderModel) FromDomain(o *integration.Order) {
	m.ID = o.ID
	m.MerchantID = o.MerchantID
	m.ShopifyOrderID = o.ShopifyOrderID
	m.ShopifyName = o.ShopifyName
	m.TotalPrice = o.TotalPrice
	m.CurrencyCode = o.CurrencyCode
	m.FinancialStatus = o.FinancialStatus
	m.FulfillmentStatus = o.FulfillmentStatus
	m.ShopifyCreatedAt = o.ShopifyCreatedAt.UTC()
	m.ProcessedAt = utcPtr(o.ProcessedAt)
	m.ShopifyUpdatedAt = utcPtr(o.ShopifyUpdatedAt)
	m.CreatedAt = o.CreatedAt
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *integration.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// ---------------------------------------------------------------------------
// OrderItem
// ---------------------------------------------------------------------------

// OrderItemModel is the persistence model for the OrderItem domain entity.
// shopify_line_item_id is the natural key.
type OrderItemModel struct {
	BaseModel
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_order_items_order"`
	ShopifyLineItemID string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_order_items_shopify_line_item_id"`
	Name              string          `gorm:"type:varchar(255);not null"`
	SKU               *string         `gorm:"column:sku;type:varchar(255)"`
	ProductID         *string         `gorm:"type:varchar(255)"`
	VariantID         *string         `gorm:"type:varchar(255)"`
	Quantity          int             `gorm:"not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	TotalDiscount     decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	TotalTax          decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	CurrencyCode      string          `gorm:"type:varchar(3);not null"`
	ShopifyCreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() integration.OrderItem {
	return integration.OrderItem{
		ID:                m.ID,
		OrderID:           m.OrderID,
		ShopifyLineItemID: m.ShopifyLineItemID,
		Name:              m.Name,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		TotalPrice:        m.TotalPrice,
		TotalDiscount:     m.TotalDiscount,
		TotalTax:          m.TotalTax,
		CurrencyCode:      m.CurrencyCode,
		ShopifyCreatedAt:  m.ShopifyCreatedAt,
		SKU:               m.SKU,
		ProductID:         m.ProductID,
		VariantID:         m.VariantID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderItem.
func (m *OrderItemModel) FromDomain(i *integration.OrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ShopifyLineItemID = i.ShopifyLineItemID
	m.Name = i.Name
	m.SKU = i.SKU
	m.ProductID = i.ProductID
	m.VariantID = i.VariantID
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.TotalPrice = i.TotalPrice
	m.TotalDiscount = i.TotalDiscount
	m.TotalTax = i.TotalTax
	m.CurrencyCode = i.CurrencyCode
	m.ShopifyCreatedAt = i.ShopifyCreatedAt.UTC()
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// OrderItemModelFromDomain creates a new persistence model from a domain OrderItem.
func OrderItemModelFromDomain(i *integration.OrderItem) *OrderItemModel {
	m := &OrderItemModel{}
	m.FromDomain(i)
	return m
}

// utcPtr normalizes stored instants so range filters compare consistently
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// All returns every model, in dependency order, for AutoMigrate in tests.
func All() []any {
	return []any{&MerchantModel{}, &CredentialModel{}, &OrderModel{}, &OrderItemModel{}}
}
