package integration

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const shopifyDomainSuffix = ".myshopify.com"

// Credential grants access to one merchant's Shopify Admin API.
// Credentials are created out of band; the sync pipeline only reads them.
type Credential struct {
	ID           uuid.UUID
	MerchantID   uuid.UUID `validate:"required"`
	ShopDomain   string    `validate:"required"`
	APIKey       string
	APISecretKey string
	AccessToken  string `validate:"required"`
	// Active gates inclusion in scheduled passes
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks that the credential carries enough to open an API session
func (c *Credential) Validate() error {
	return validationError(ErrInvalidCredential, validate.Struct(c))
}

// ShopName returns the store handle without scheme or the myshopify suffix,
// e.g. "acme" for "https://acme.myshopify.com/".
func (c *Credential) ShopName() string {
	name := strings.ToLower(strings.TrimSpace(c.ShopDomain))
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.TrimSuffix(name, "/")
	return strings.TrimSuffix(name, shopifyDomainSuffix)
}
