package ecommerce

// ---------------------------------------------------------------------------
// Shopify Admin GraphQL response types
// ---------------------------------------------------------------------------

// ShopifyOrdersPage is the `data` object of one orders query
type ShopifyOrdersPage struct {
	Orders ShopifyOrderConnection `json:"orders"`
}

// ShopifyOrderConnection is a page of the orders connection
type ShopifyOrderConnection struct {
	Edges    []ShopifyOrderEdge `json:"edges"`
	PageInfo ShopifyPageInfo    `json:"pageInfo"`
}

// ShopifyPageInfo is the pagination envelope of a connection
type ShopifyPageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// NextCursor returns the cursor to request the following page with, or "" when
// there is none.
func (p ShopifyPageInfo) NextCursor() string {
	if p.EndCursor == nil {
		return ""
	}
	return *p.EndCursor
}

// ShopifyOrderEdge wraps one order node
type ShopifyOrderEdge struct {
	Cursor string           `json:"cursor"`
	Node   ShopifyOrderNode `json:"node"`
}

// ShopifyOrderNode is one order as returned by the orders query
type ShopifyOrderNode struct {
	ID                string                    `json:"id"`
	Name              string                    `json:"name"`
	CreatedAt         string                    `json:"createdAt"`
	ProcessedAt       *string                   `json:"processedAt"`
	UpdatedAt         *string                   `json:"updatedAt"`
	TotalPriceSet     ShopifyMoneyBag           `json:"totalPriceSet"`
	FinancialStatus   *string                   `json:"displayFinancialStatus"`
	FulfillmentStatus *string                   `json:"displayFulfillmentStatus"`
	LineItems         ShopifyLineItemConnection `json:"lineItems"`
}

// ShopifyLineItemConnection is the nested line item connection of an order
type ShopifyLineItemConnection struct {
	Edges    []ShopifyLineItemEdge `json:"edges"`
	PageInfo ShopifyPageInfo       `json:"pageInfo"`
}

// ShopifyLineItemEdge wraps one line item node
type ShopifyLineItemEdge struct {
	Cursor string              `json:"cursor"`
	Node   ShopifyLineItemNode `json:"node"`
}

// ShopifyLineItemNode is one line item of an order
type ShopifyLineItemNode struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Quantity             int              `json:"quantity"`
	OriginalUnitPriceSet ShopifyMoneyBag  `json:"originalUnitPriceSet"`
	TotalPriceSet        ShopifyMoneyBag  `json:"totalPriceSet"`
	TotalDiscountSet     *ShopifyMoneyBag `json:"totalDiscountSet"`
	Variant              *ShopifyVariant  `json:"variant"`
}

// ShopifyVariant is the product variant a line item was sold as
type ShopifyVariant struct {
	ID      string          `json:"id"`
	SKU     *string         `json:"sku"`
	Product *ShopifyProduct `json:"product"`
}

// ShopifyProduct carries the product id of a variant
type ShopifyProduct struct {
	ID string `json:"id"`
}

// ShopifyMoneyBag holds an amount in shop and presentment currencies
type ShopifyMoneyBag struct {
	ShopMoney ShopifyMoney `json:"shopMoney"`
}

// ShopifyMoney is a decimal amount encoded as a string plus its ISO currency code
type ShopifyMoney struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}
