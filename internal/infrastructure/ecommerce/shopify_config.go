package ecommerce

import (
	"errors"
	"fmt"
	"time"
)

const (
	// ShopifyDefaultAPIVersion is the Admin API version requested when none is configured
	ShopifyDefaultAPIVersion = "2024-10"
	// ShopifyMaxPageSize is the largest `first` the orders connection accepts
	ShopifyMaxPageSize = 250
	// ShopifyDefaultPageDelay is the fixed pause between page requests
	ShopifyDefaultPageDelay = 500 * time.Millisecond
)

// Errors for Shopify configuration
var (
	ErrShopifyConfigInvalidPageSize  = errors.New("shopify: page size must be between 1 and 250")
	ErrShopifyConfigInvalidLineItems = errors.New("shopify: line items per order must be between 1 and 250")
	ErrShopifyConfigInvalidDelay     = errors.New("shopify: page delay cannot be negative")
)

// ShopifyConfig holds settings shared by every merchant's Shopify session.
// Per-merchant secrets live on integration.Credential.
type ShopifyConfig struct {
	// APIKey and APISecret identify the app; optional for custom-app access tokens
	APIKey    string
	APISecret string
	// APIVersion is the Admin API version, e.g. "2024-10"
	APIVersion string
	// PageSize is the number of orders requested per page
	PageSize int
	// LineItemsPerOrder is the number of line items requested per order
	LineItemsPerOrder int
	// PageDelay is waited between consecutive page requests
	PageDelay time.Duration
	// MaxRetries is passed to the client for throttled/5xx responses
	MaxRetries int
	// RequestTimeout bounds each HTTP request
	RequestTimeout time.Duration
}

// DefaultShopifyConfig returns the defaults used by the sync pipeline
func DefaultShopifyConfig() ShopifyConfig {
	return ShopifyConfig{
		APIVersion:        ShopifyDefaultAPIVersion,
		PageSize:          ShopifyMaxPageSize,
		LineItemsPerOrder: 100,
		PageDelay:         ShopifyDefaultPageDelay,
		MaxRetries:        3,
		RequestTimeout:    30 * time.Second,
	}
}

// Validate validates the configuration, filling unset optional values
func (c *ShopifyConfig) Validate() error {
	if c.PageSize < 1 || c.PageSize > ShopifyMaxPageSize {
		return fmt.Errorf("%w: got %d", ErrShopifyConfigInvalidPageSize, c.PageSize)
	}
	if c.LineItemsPerOrder < 1 || c.LineItemsPerOrder > ShopifyMaxPageSize {
		return fmt.Errorf("%w: got %d", ErrShopifyConfigInvalidLineItems, c.LineItemsPerOrder)
	}
	if c.PageDelay < 0 {
		return ErrShopifyConfigInvalidDelay
	}
	if c.APIVersion == "" {
		c.APIVersion = ShopifyDefaultAPIVersion
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return nil
}
