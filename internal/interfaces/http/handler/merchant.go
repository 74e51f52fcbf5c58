package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ordersync/backend/internal/application/merchant"
)

// MerchantQuerier reads merchants
type MerchantQuerier interface {
	List(ctx context.Context) ([]merchant.MerchantResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*merchant.MerchantResponse, error)
	GetByShopifyID(ctx context.Context, shopifyID string) (*merchant.MerchantResponse, error)
}

// MerchantHandler serves merchant lookups
type MerchantHandler struct {
	BaseHandler
	merchants MerchantQuerier
}

// NewMerchantHandler creates a new MerchantHandler
func NewMerchantHandler(merchants MerchantQuerier) *MerchantHandler {
	return &MerchantHandler{merchants: merchants}
}

// List godoc
// @ID           listMerchants
// @Summary      List merchants
// @Tags         merchants
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /merchants [get]
func (h *MerchantHandler) List(c *gin.Context) {
	merchants, err := h.merchants.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, merchants)
}

// GetByID godoc
// @ID           getMerchant
// @Summary      Get a merchant
// @Tags         merchants
// @Produce      json
// @Param        id path string true "Merchant ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /merchants/{id} [get]
func (h *MerchantHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	m, err := h.merchants.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}

// GetByShopifyID looks a merchant up by its Shopify shop id, which may be a
// GID with slashes, hence the catch-all parameter.
func (h *MerchantHandler) GetByShopifyID(c *gin.Context) {
	shopifyID := strings.TrimPrefix(c.Param("shopifyId"), "/")
	if shopifyID == "" {
		h.BadRequest(c, "shopify id is required")
		return
	}
	m, err := h.merchants.GetByShopifyID(c.Request.Context(), shopifyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}
