package ecommerce

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/backend/internal/domain/integration"
)

const shopifyOrderPageFixture = `{
  "orders": {
    "edges": [
      {
        "cursor": "c1",
        "node": {
          "id": "gid://shopify/Order/1001",
          "name": "#1001",
          "createdAt": "2024-03-01T10:00:00Z",
          "processedAt": "2024-03-01T10:00:05Z",
          "updatedAt": "2024-03-02T08:00:00Z",
          "totalPriceSet": {"shopMoney": {"amount": "59.90", "currencyCode": "AUD"}},
          "displayFinancialStatus": "PAID",
          "displayFulfillmentStatus": "FULFILLED",
          "lineItems": {
            "edges": [
              {
                "cursor": "l1",
                "node": {
                  "id": "gid://shopify/LineItem/1",
                  "name": "Coffee Beans 1kg",
                  "quantity": 2,
                  "originalUnitPriceSet": {"shopMoney": {"amount": "24.95", "currencyCode": "AUD"}},
                  "totalPriceSet": {"shopMoney": {"amount": "49.90", "currencyCode": "AUD"}},
                  "totalDiscountSet": {"shopMoney": {"amount": "5.00", "currencyCode": "AUD"}},
                  "variant": {
                    "id": "gid://shopify/ProductVariant/11",
                    "sku": "BEAN-1KG",
                    "product": {"id": "gid://shopify/Product/7"}
                  }
                }
              },
              {
                "cursor": "l2",
                "node": {
                  "id": "gid://shopify/LineItem/2",
                  "name": "Custom engraving",
                  "quantity": 1,
                  "originalUnitPriceSet": {"shopMoney": {"amount": "10.00", "currencyCode": "AUD"}},
                  "totalPriceSet": {"shopMoney": {"amount": "10.00", "currencyCode": "AUD"}},
                  "totalDiscountSet": null,
                  "variant": null
                }
              }
            ],
            "pageInfo": {"hasNextPage": false, "hasPreviousPage": false, "startCursor": "l1", "endCursor": "l2"}
          }
        }
      }
    ],
    "pageInfo": {"hasNextPage": false, "hasPreviousPage": false, "startCursor": "c1", "endCursor": "c1"}
  }
}`

func decodeShopifyPage(t *testing.T, raw string) *ShopifyOrdersPage {
	t.Helper()
	var page ShopifyOrdersPage
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	return &page
}

func strPtr(s string) *string { return &s }

func TestMapShopifyOrdersPage(t *testing.T) {
	merchantID := uuid.New()
	page := decodeShopifyPage(t, shopifyOrderPageFixture)

	orders, err := MapShopifyOrdersPage(page, merchantID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	order := orders[0]
	assert.Equal(t, merchantID, order.MerchantID)
	assert.Equal(t, "gid://shopify/Order/1001", order.ShopifyOrderID)
	assert.Equal(t, "#1001", order.ShopifyName)
	assert.True(t, decimal.RequireFromString("59.90").Equal(order.TotalPrice))
	assert.Equal(t, "AUD", order.CurrencyCode)
	assert.Equal(t, "PAID", order.FinancialStatus)
	assert.Equal(t, "FULFILLED", order.FulfillmentStatus)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), order.ShopifyCreatedAt.UTC())
	require.NotNil(t, order.ProcessedAt)
	require.NotNil(t, order.ShopifyUpdatedAt)
	require.Len(t, order.Items, 2)

	t.Run("item with variant", func(t *testing.T) {
		item := order.Items[0]
		assert.Equal(t, "gid://shopify/LineItem/1", item.ShopifyLineItemID)
		assert.Equal(t, "Coffee Beans 1kg", item.Name)
		assert.Equal(t, 2, item.Quantity)
		assert.True(t, decimal.RequireFromString("24.95").Equal(item.UnitPrice))
		assert.True(t, decimal.RequireFromString("49.90").Equal(item.TotalPrice))
		assert.True(t, decimal.RequireFromString("5").Equal(item.TotalDiscount))
		assert.True(t, item.TotalTax.IsZero())
		assert.Equal(t, "AUD", item.CurrencyCode)
		assert.Equal(t, order.ShopifyCreatedAt, item.ShopifyCreatedAt)
		require.NotNil(t, item.SKU)
		assert.Equal(t, "BEAN-1KG", *item.SKU)
		require.NotNil(t, item.VariantID)
		assert.Equal(t, "gid://shopify/ProductVariant/11", *item.VariantID)
		require.NotNil(t, item.ProductID)
		assert.Equal(t, "gid://shopify/Product/7", *item.ProductID)
	})

	t.Run("item without variant", func(t *testing.T) {
		item := order.Items[1]
		assert.Nil(t, item.SKU)
		assert.Nil(t, item.VariantID)
		assert.Nil(t, item.ProductID)
		assert.True(t, item.TotalDiscount.IsZero())
		assert.True(t, item.TotalTax.IsZero())
	})

	t.Run("mapped values pass domain validation", func(t *testing.T) {
		assert.NoError(t, order.Validate())
		for i := range order.Items {
			assert.NoError(t, order.Items[i].Validate())
		}
	})
}

func TestMapShopifyOrdersPage_Defaults(t *testing.T) {
	node := ShopifyOrderNode{
		ID:              "gid://shopify/Order/2",
		Name:            "#2",
		CreatedAt:       "2024-03-01T10:00:00+11:00",
		TotalPriceSet:   ShopifyMoneyBag{ShopMoney: ShopifyMoney{Amount: "0.00", CurrencyCode: "AUD"}},
		FinancialStatus: strPtr(""),
	}
	page := &ShopifyOrdersPage{Orders: ShopifyOrderConnection{Edges: []ShopifyOrderEdge{{Node: node}}}}

	orders, err := MapShopifyOrdersPage(page, uuid.New())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, integration.StatusUnknown, orders[0].FinancialStatus)
	assert.Equal(t, integration.StatusUnknown, orders[0].FulfillmentStatus)
	assert.Nil(t, orders[0].ProcessedAt)
	assert.Nil(t, orders[0].ShopifyUpdatedAt)
	assert.Empty(t, orders[0].Items)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC), orders[0].ShopifyCreatedAt.UTC())
}

func TestMapShopifyOrdersPage_VariantWithoutSKUOrProduct(t *testing.T) {
	line := ShopifyLineItemNode{
		ID:                   "gid://shopify/LineItem/9",
		Name:                 "Gift card",
		Quantity:             1,
		OriginalUnitPriceSet: ShopifyMoneyBag{ShopMoney: ShopifyMoney{Amount: "50", CurrencyCode: "AUD"}},
		TotalPriceSet:        ShopifyMoneyBag{ShopMoney: ShopifyMoney{Amount: "50", CurrencyCode: "AUD"}},
		TotalDiscountSet:     &ShopifyMoneyBag{},
		Variant:              &ShopifyVariant{ID: "gid://shopify/ProductVariant/3"},
	}

	item, err := mapShopifyLineItem(&line, time.Now())
	require.NoError(t, err)
	assert.Nil(t, item.SKU)
	assert.Nil(t, item.ProductID)
	require.NotNil(t, item.VariantID)
	assert.Equal(t, "gid://shopify/ProductVariant/3", *item.VariantID)
	assert.True(t, item.TotalDiscount.IsZero())
}

func TestMapShopifyOrdersPage_InvalidPayload(t *testing.T) {
	valid := func() ShopifyOrderNode {
		return ShopifyOrderNode{
			ID:            "gid://shopify/Order/3",
			CreatedAt:     "2024-03-01T10:00:00Z",
			TotalPriceSet: ShopifyMoneyBag{ShopMoney: ShopifyMoney{Amount: "1.00", CurrencyCode: "AUD"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(n *ShopifyOrderNode)
	}{
		{"bad createdAt", func(n *ShopifyOrderNode) { n.CreatedAt = "yesterday" }},
		{"bad total", func(n *ShopifyOrderNode) { n.TotalPriceSet.ShopMoney.Amount = "abc" }},
		{"bad processedAt", func(n *ShopifyOrderNode) { n.ProcessedAt = strPtr("2024-13-01") }},
		{"bad line item price", func(n *ShopifyOrderNode) {
			n.LineItems.Edges = []ShopifyLineItemEdge{{Node: ShopifyLineItemNode{
				ID:                   "gid://shopify/LineItem/1",
				OriginalUnitPriceSet: ShopifyMoneyBag{ShopMoney: ShopifyMoney{Amount: "x"}},
			}}}
		}},
		{"bad line item discount", func(n *ShopifyOrderNode) {
			n.LineItems.Edges = []ShopifyLineItemEdge{{Node: ShopifyLineItemNode{
				ID:                   "gid://shopify/LineItem/1",
				OriginalUnitPriceSet: ShopifyMoneyBag{ShopMoney: ShopifyMoney{Amount: "1"}},
				TotalPriceSet:        ShopifyMoneyBag{ShopMoney: ShopifyMoney{Amount: "1"}},
				TotalDiscountSet:     &ShopifyMoneyBag{ShopMoney: ShopifyMoney{Amount: "-"}},
			}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := valid()
			tt.mutate(&node)
			page := &ShopifyOrdersPage{Orders: ShopifyOrderConnection{Edges: []ShopifyOrderEdge{{Node: node}}}}

			orders, err := MapShopifyOrdersPage(page, uuid.New())
			assert.Nil(t, orders)
			assert.ErrorIs(t, err, integration.ErrInvalidRemotePayload)
			assert.ErrorIs(t, err, integration.ErrRemoteFetch)
		})
	}
}

func TestMapShopifyOrdersPage_NilPage(t *testing.T) {
	orders, err := MapShopifyOrdersPage(nil, uuid.New())
	assert.NoError(t, err)
	assert.Empty(t, orders)
}
