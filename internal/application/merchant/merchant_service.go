package merchant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/domain/integration"
)

// MerchantService serves merchant lookups to API callers
type MerchantService struct {
	merchants integration.MerchantRepository
	logger    *zap.Logger
}

// NewMerchantService creates a new MerchantService
func NewMerchantService(merchants integration.MerchantRepository, logger *zap.Logger) *MerchantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MerchantService{merchants: merchants, logger: logger}
}

// MerchantResponse represents a merchant in API responses
type MerchantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ShopifyID string    `json:"shopify_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List returns every merchant ordered by name
func (s *MerchantService) List(ctx context.Context) ([]MerchantResponse, error) {
	merchants, err := s.merchants.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]MerchantResponse, len(merchants))
	for i := range merchants {
		resp[i] = toMerchantResponse(&merchants[i])
	}
	return resp, nil
}

// GetByID returns ErrMerchantNotFound for unknown ids
func (s *MerchantService) GetByID(ctx context.Context, id uuid.UUID) (*MerchantResponse, error) {
	m, err := s.merchants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toMerchantResponse(m)
	return &resp, nil
}

// GetByShopifyID looks a merchant up by its Shopify shop id
func (s *MerchantService) GetByShopifyID(ctx context.Context, shopifyID string) (*MerchantResponse, error) {
	shopifyID = strings.TrimSpace(shopifyID)
	if shopifyID == "" {
		return nil, fmt.Errorf("%w: shopify id is required", integration.ErrMerchantNotFound)
	}
	m, err := s.merchants.FindByShopifyID(ctx, shopifyID)
	if err != nil {
		s.logger.Debug("Merchant lookup by Shopify id failed",
			zap.String("shopify_id", shopifyID),
			zap.Error(err),
		)
		return nil, err
	}
	resp := toMerchantResponse(m)
	return &resp, nil
}

func toMerchantResponse(m *integration.Merchant) MerchantResponse {
	return MerchantResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		ShopifyID: m.ShopifyID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
