package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMerchantRepository implements integration.MerchantRepository using GORM
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewGormMerchantRepository creates a new GormMerchantRepository
func NewGormMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// FindByID finds a merchant by its ID
func (r *GormMerchantRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Merchant, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByShopifyID finds a merchant by its Shopify shop id
func (r *GormMerchantRepository) FindByShopifyID(ctx context.Context, shopifyID string) (*integration.Merchant, error) {
	return r.first(ctx, "shopify_id = ?", shopifyID)
}

// List returns every merchant ordered by name
func (r *GormMerchantRepository) List(ctx context.Context) ([]integration.Merchant, error) {
	var merchantModels []models.MerchantModel
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Order("id ASC").
		Find(&merchantModels).Error; err != nil {
		return nil, persistenceError("list merchants", err)
	}

	merchants := make([]integration.Merchant, len(merchantModels))
	for i := range merchantModels {
		merchants[i] = *merchantModels[i].ToDomain()
	}
	return merchants, nil
}

func (r *GormMerchantRepository) first(ctx context.Context, query string, arg any) (*integration.Merchant, error) {
	var model models.MerchantModel
	if err := r.db.WithContext(ctx).First(&model, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrMerchantNotFound
		}
		return nil, persistenceError("find merchant", err)
	}
	return model.ToDomain(), nil
}

// Ensure GormMerchantRepository implements the port
var _ integration.MerchantRepository = (*GormMerchantRepository)(nil)
