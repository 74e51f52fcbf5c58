package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory sqlite database with the schema migrated.
// A single connection keeps every goroutine on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(sqlite.Open(":memory:"), nil, false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedMerchant(t *testing.T, db *gorm.DB, shopifyID string) *models.MerchantModel {
	t.Helper()
	m := &models.MerchantModel{Name: "Merchant " + shopifyID, ShopifyID: shopifyID}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedCredential(t *testing.T, db *gorm.DB, merchantID uuid.UUID, active bool) *models.CredentialModel {
	t.Helper()
	c := &models.CredentialModel{
		MerchantID:  merchantID,
		ShopDomain:  "shop-" + merchantID.String()[:8] + ".myshopify.com",
		AccessToken: "shpat_" + merchantID.String()[:8],
		Active:      active,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func newTestOrder(merchantID uuid.UUID, shopifyID string, createdAt time.Time, total string) *integration.Order {
	return &integration.Order{
		MerchantID:        merchantID,
		ShopifyOrderID:    shopifyID,
		ShopifyName:       "#" + shopifyID,
		TotalPrice:        decimal.RequireFromString(total),
		CurrencyCode:      "AUD",
		FinancialStatus:   "PAID",
		FulfillmentStatus: integration.StatusUnknown,
		ShopifyCreatedAt:  createdAt,
	}
}

func newTestItem(orderID uuid.UUID, lineItemID string) *integration.OrderItem {
	sku := "SKU-" + lineItemID
	return &integration.OrderItem{
		OrderID:           orderID,
		ShopifyLineItemID: lineItemID,
		Name:              "Item " + lineItemID,
		Quantity:          2,
		UnitPrice:         decimal.RequireFromString("12.5"),
		TotalPrice:        decimal.RequireFromString("25"),
		TotalDiscount:     decimal.Zero,
		TotalTax:          decimal.Zero,
		CurrencyCode:      "AUD",
		ShopifyCreatedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		SKU:               &sku,
	}
}
