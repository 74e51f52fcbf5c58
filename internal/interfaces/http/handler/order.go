package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/interfaces/http/dto"
)

// OrderHandler serves stored Shopify orders
type OrderHandler struct {
	BaseHandler
	orders integration.OrderReader
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders integration.OrderReader) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List godoc
// @ID           listOrders
// @Summary      List stored orders
// @Tags         orders
// @Produce      json
// @Param        merchant_id query string false "Merchant ID"
// @Param        from        query string false "Lower bound on Shopify creation time"
// @Param        to          query string false "Upper bound on Shopify creation time"
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Success      200 {object} dto.Response
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	query := dto.OrderListQuery{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, err.Error())
		return
	}

	filter := integration.OrderFilter{
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.OrderBy,
		SortOrder: strings.ToUpper(query.OrderDir),
	}
	if query.MerchantID != "" {
		id := uuid.MustParse(query.MerchantID)
		filter.MerchantID = &id
	}
	var err error
	if filter.From, err = dto.ParseTimeParam(query.From); err != nil {
		h.HandleError(c, err)
		return
	}
	if filter.To, err = dto.ParseTimeParam(query.To); err != nil {
		h.HandleError(c, err)
		return
	}
	filter = filter.Normalize()

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewOrderResponses(orders), total, filter.Page, filter.PageSize)
}

// GetLast godoc
// @ID           getLastOrder
// @Summary      Get the most recently created order
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /orders/last [get]
func (h *OrderHandler) GetLast(c *gin.Context) {
	order, err := h.orders.FindLast(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewOrderResponse(order))
}

// GetByID godoc
// @ID           getOrder
// @Summary      Get an order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewOrderResponse(order))
}

// GetByShopifyID looks an order up by its Shopify GID. The GID contains
// slashes, so the route uses a catch-all parameter.
func (h *OrderHandler) GetByShopifyID(c *gin.Context) {
	shopifyID := strings.TrimPrefix(c.Param("shopifyOrderId"), "/")
	if shopifyID == "" {
		h.BadRequest(c, "shopify order id is required")
		return
	}
	order, err := h.orders.FindByShopifyOrderID(c.Request.Context(), shopifyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewOrderResponse(order))
}

// ListItems godoc
// @ID           listOrderItems
// @Summary      List the line items of an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /orders/{id}/items [get]
func (h *OrderHandler) ListItems(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.orders.ItemsByOrderID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewOrderItemResponses(items))
}
