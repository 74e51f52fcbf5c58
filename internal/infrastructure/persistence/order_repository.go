package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements integration.OrderGateway and integration.OrderReader using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// ---------------------------------------------------------------------------
// OrderGateway implementation
// ---------------------------------------------------------------------------

// UpsertOrder returns the stored order with the same Shopify id, or inserts order
// when there is none. An insert that loses a unique race to a concurrent writer
// re-reads the winner and reports created=false.
func (r *GormOrderRepository) UpsertOrder(ctx context.Context, order *integration.Order) (*integration.Order, bool, error) {
	if err := order.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := r.findModelByShopifyOrderID(ctx, order.ShopifyOrderID)
	if err == nil {
		return existing.ToDomain(), false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, persistenceError("find order", err)
	}

	model := models.OrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if !isUniqueViolation(err) {
			return nil, false, persistenceError("create order", err)
		}
		winner, findErr := r.findModelByShopifyOrderID(ctx, order.ShopifyOrderID)
		if findErr != nil {
			return nil, false, persistenceError("re-read order after duplicate insert", findErr)
		}
		return winner.ToDomain(), false, nil
	}

	return model.ToDomain(), true, nil
}

// CreateOrderItem inserts an item. A repeated Shopify line item id fails with
// integration.ErrDuplicateRecord.
func (r *GormOrderRepository) CreateOrderItem(ctx context.Context, item *integration.OrderItem) error {
	if item.OrderID == uuid.Nil {
		return fmt.Errorf("%w: order id is required", integration.ErrInvalidOrderItem)
	}
	if err := item.Validate(); err != nil {
		return err
	}

	model := models.OrderItemModelFromDomain(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return duplicateError("order item", item.ShopifyLineItemID)
		}
		return persistenceError("create order item", err)
	}

	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt
	return nil
}

// ---------------------------------------------------------------------------
// OrderReader implementation
// ---------------------------------------------------------------------------

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, orderLookupError(err)
	}
	return model.ToDomain(), nil
}

// FindByShopifyOrderID finds an order by its Shopify GID
func (r *GormOrderRepository) FindByShopifyOrderID(ctx context.Context, shopifyOrderID string) (*integration.Order, error) {
	model, err := r.findModelByShopifyOrderID(ctx, shopifyOrderID)
	if err != nil {
		return nil, orderLookupError(err)
	}
	return model.ToDomain(), nil
}

// FindLast returns the most recently created order on Shopify's clock
func (r *GormOrderRepository) FindLast(ctx context.Context) (*integration.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Order("shopify_created_at DESC").
		Order("id DESC").
		First(&model).Error; err != nil {
		return nil, orderLookupError(err)
	}
	return model.ToDomain(), nil
}

// List returns one page of orders and the total matching the filter
func (r *GormOrderRepository) List(ctx context.Context, filter integration.OrderFilter) ([]integration.Order, int64, error) {
	filter = filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.MerchantID != nil {
		query = query.Where("merchant_id = ?", *filter.MerchantID)
	}
	if filter.From != nil {
		query = query.Where("shopify_created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("shopify_created_at <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, persistenceError("count orders", err)
	}

	sortField := ValidateSortField(filter.SortBy, OrderSortFields, "shopify_created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)

	var orderModels []models.OrderModel
	if err := query.
		Order(sortField + " " + sortOrder).
		Order("id " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&orderModels).Error; err != nil {
		return nil, 0, persistenceError("list orders", err)
	}

	orders := make([]integration.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, total, nil
}

// ItemsByOrderID returns the items of an order. An existing order without
// items yields an empty slice.
func (r *GormOrderRepository) ItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]integration.OrderItem, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, persistenceError("find order", err)
	}
	if count == 0 {
		return nil, integration.ErrOrderNotFound
	}

	var itemModels []models.OrderItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("shopify_line_item_id ASC").
		Find(&itemModels).Error; err != nil {
		return nil, persistenceError("list order items", err)
	}

	items := make([]integration.OrderItem, len(itemModels))
	for i := range itemModels {
		items[i] = itemModels[i].ToDomain()
	}
	return items, nil
}

func (r *GormOrderRepository) findModelByShopifyOrderID(ctx context.Context, shopifyOrderID string) (*models.OrderModel, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "shopify_order_id = ?", shopifyOrderID).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

func orderLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return integration.ErrOrderNotFound
	}
	return persistenceError("find order", err)
}

// Ensure GormOrderRepository implements both ports
var (
	_ integration.OrderGateway = (*GormOrderRepository)(nil)
	_ integration.OrderReader  = (*GormOrderRepository)(nil)
)
