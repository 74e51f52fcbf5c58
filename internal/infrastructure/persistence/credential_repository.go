package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCredentialRepository implements integration.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// ListActive returns active credentials, oldest first so passes visit merchants in a stable order
func (r *GormCredentialRepository) ListActive(ctx context.Context) ([]integration.Credential, error) {
	var credentialModels []models.CredentialModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&credentialModels).Error; err != nil {
		return nil, persistenceError("list active credentials", err)
	}

	credentials := make([]integration.Credential, len(credentialModels))
	for i := range credentialModels {
		credentials[i] = *credentialModels[i].ToDomain()
	}
	return credentials, nil
}

// FindByID finds a credential by its ID
func (r *GormCredentialRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Credential, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByMerchantID finds the credential of a merchant
func (r *GormCredentialRepository) FindByMerchantID(ctx context.Context, merchantID uuid.UUID) (*integration.Credential, error) {
	return r.first(ctx, "merchant_id = ?", merchantID)
}

func (r *GormCredentialRepository) first(ctx context.Context, query string, arg any) (*integration.Credential, error) {
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).First(&model, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrCredentialNotFound
		}
		return nil, persistenceError("find credential", err)
	}
	return model.ToDomain(), nil
}

// Ensure GormCredentialRepository implements the port
var _ integration.CredentialRepository = (*GormCredentialRepository)(nil)
