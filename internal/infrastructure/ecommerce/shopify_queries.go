package ecommerce

import (
	"fmt"
	"time"

	"github.com/ordersync/backend/internal/domain/integration"
)

// shopifyOrderFields is the order selection shared by both query shapes
const shopifyOrderFields = `
      edges {
        cursor
        node {
          id
          name
          createdAt
          processedAt
          updatedAt
          totalPriceSet { shopMoney { amount currencyCode } }
          displayFinancialStatus
          displayFulfillmentStatus
          lineItems(first: $lineItems) {
            edges {
              cursor
              node {
                id
                name
                quantity
                originalUnitPriceSet { shopMoney { amount currencyCode } }
                totalPriceSet { shopMoney { amount currencyCode } }
                totalDiscountSet { shopMoney { amount currencyCode } }
                variant {
                  id
                  sku
                  product { id }
                }
              }
            }
            pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
          }
        }
      }
      pageInfo { hasNextPage hasPreviousPage startCursor endCursor }`

// ShopifyFetchOrdersQuery pages through every order of the shop
const ShopifyFetchOrdersQuery = `
  query fetchOrders($first: Int!, $after: String, $lineItems: Int!) {
    orders(first: $first, after: $after) {` + shopifyOrderFields + `
    }
  }
`

// ShopifyFetchOrdersByDateRangeQuery pages through orders matching a search query
const ShopifyFetchOrdersByDateRangeQuery = `
  query fetchOrdersByDateRange($first: Int!, $after: String, $lineItems: Int!, $query: String) {
    orders(first: $first, after: $after, query: $query) {` + shopifyOrderFields + `
    }
  }
`

// shopifyCreatedAtSearch renders a window as an orders search string, both ends inclusive
func shopifyCreatedAtSearch(window *integration.SyncWindow) string {
	return fmt.Sprintf("created_at:>='%s' AND created_at:<='%s'",
		window.Start.UTC().Format(time.RFC3339),
		window.End.UTC().Format(time.RFC3339),
	)
}

// shopifyOrdersRequest selects the query shape and variables for one page
func shopifyOrdersRequest(pageSize, lineItems int, cursor string, window *integration.SyncWindow) (string, map[string]any) {
	var after *string
	if cursor != "" {
		after = &cursor
	}
	vars := map[string]any{
		"first":     pageSize,
		"after":     after,
		"lineItems": lineItems,
	}
	if window == nil {
		return ShopifyFetchOrdersQuery, vars
	}
	vars["query"] = shopifyCreatedAtSearch(window)
	return ShopifyFetchOrdersByDateRangeQuery, vars
}
