package integration

import (
	"time"

	"github.com/google/uuid"
)

// Merchant owns one Shopify store, its credential and its imported orders
type Merchant struct {
	ID        uuid.UUID
	Name      string
	ShopifyID string
	CreatedAt time.Time
	UpdatedAt time.Time
}
