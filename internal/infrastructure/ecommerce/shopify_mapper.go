package ecommerce

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// MapShopifyOrdersPage converts one orders page into domain orders with their
// nested items, preserving order. It has no side effects.
func MapShopifyOrdersPage(page *ShopifyOrdersPage, merchantID uuid.UUID) ([]*integration.Order, error) {
	if page == nil {
		return nil, nil
	}
	orders := make([]*integration.Order, 0, len(page.Orders.Edges))
	for i := range page.Orders.Edges {
		order, err := mapShopifyOrder(&page.Orders.Edges[i].Node, merchantID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func mapShopifyOrder(node *ShopifyOrderNode, merchantID uuid.UUID) (*integration.Order, error) {
	createdAt, err := parseShopifyTime(node.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s createdAt: %v", integration.ErrInvalidRemotePayload, node.ID, err)
	}
	total, err := parseShopifyAmount(node.TotalPriceSet.ShopMoney.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s total: %v", integration.ErrInvalidRemotePayload, node.ID, err)
	}
	processedAt, err := parseOptionalShopifyTime(node.ProcessedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s processedAt: %v", integration.ErrInvalidRemotePayload, node.ID, err)
	}
	updatedAt, err := parseOptionalShopifyTime(node.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s updatedAt: %v", integration.ErrInvalidRemotePayload, node.ID, err)
	}

	order := &integration.Order{
		MerchantID:        merchantID,
		ShopifyOrderID:    node.ID,
		ShopifyName:       node.Name,
		TotalPrice:        total,
		CurrencyCode:      node.TotalPriceSet.ShopMoney.CurrencyCode,
		FinancialStatus:   statusOrUnknown(node.FinancialStatus),
		FulfillmentStatus: statusOrUnknown(node.FulfillmentStatus),
		ShopifyCreatedAt:  createdAt,
		ProcessedAt:       processedAt,
		ShopifyUpdatedAt:  updatedAt,
		Items:             make([]integration.OrderItem, 0, len(node.LineItems.Edges)),
	}

	for i := range node.LineItems.Edges {
		item, err := mapShopifyLineItem(&node.LineItems.Edges[i].Node, createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w (order %s)", err, node.ID)
		}
		order.Items = append(order.Items, item)
	}
	return order, nil
}

func mapShopifyLineItem(line *ShopifyLineItemNode, orderCreatedAt time.Time) (integration.OrderItem, error) {
	unitPrice, err := parseShopifyAmount(line.OriginalUnitPriceSet.ShopMoney.Amount)
	if err != nil {
		return integration.OrderItem{}, fmt.Errorf("%w: line item %s unit price: %v", integration.ErrInvalidRemotePayload, line.ID, err)
	}
	totalPrice, err := parseShopifyAmount(line.TotalPriceSet.ShopMoney.Amount)
	if err != nil {
		return integration.OrderItem{}, fmt.Errorf("%w: line item %s total: %v", integration.ErrInvalidRemotePayload, line.ID, err)
	}
	discount := decimal.Zero
	if line.TotalDiscountSet != nil && line.TotalDiscountSet.ShopMoney.Amount != "" {
		discount, err = parseShopifyAmount(line.TotalDiscountSet.ShopMoney.Amount)
		if err != nil {
			return integration.OrderItem{}, fmt.Errorf("%w: line item %s discount: %v", integration.ErrInvalidRemotePayload, line.ID, err)
		}
	}

	item := integration.OrderItem{
		ShopifyLineItemID: line.ID,
		Name:              line.Name,
		Quantity:          line.Quantity,
		UnitPrice:         unitPrice,
		TotalPrice:        totalPrice,
		TotalDiscount:     discount,
		TotalTax:          decimal.Zero,
		CurrencyCode:      line.OriginalUnitPriceSet.ShopMoney.CurrencyCode,
		ShopifyCreatedAt:  orderCreatedAt,
	}
	if v := line.Variant; v != nil {
		if v.SKU != nil {
			sku := *v.SKU
			item.SKU = &sku
		}
		variantID := v.ID
		item.VariantID = &variantID
		if v.Product != nil {
			productID := v.Product.ID
			item.ProductID = &productID
		}
	}
	return item, nil
}

// statusOrUnknown maps a missing or empty status to integration.StatusUnknown
func statusOrUnknown(status *string) string {
	if status == nil || *status == "" {
		return integration.StatusUnknown
	}
	return *status
}

func parseShopifyAmount(amount string) (decimal.Decimal, error) {
	return decimal.NewFromString(amount)
}

func parseShopifyTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func parseOptionalShopifyTime(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseShopifyTime(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
