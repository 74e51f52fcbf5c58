package ecommerce

import (
	"context"
	"fmt"
	"net/http"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/ordersync/backend/internal/domain/integration"
)

// ShopifyGraphQLQuerier runs one GraphQL query and decodes its `data` object into resp.
// goshopify's GraphQLService satisfies it.
type ShopifyGraphQLQuerier interface {
	Query(ctx context.Context, query string, vars, resp any) error
}

// ShopifyQuerierFactory opens a GraphQL session for a credential
type ShopifyQuerierFactory interface {
	NewQuerier(cred *integration.Credential) (ShopifyGraphQLQuerier, error)
}

// GoShopifyQuerierFactory builds go-shopify clients per credential
type GoShopifyQuerierFactory struct {
	config     ShopifyConfig
	httpClient *http.Client
}

// NewGoShopifyQuerierFactory creates a factory sharing one HTTP client across shops
func NewGoShopifyQuerierFactory(config ShopifyConfig) *GoShopifyQuerierFactory {
	return &GoShopifyQuerierFactory{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}
}

// NewQuerier implements ShopifyQuerierFactory
func (f *GoShopifyQuerierFactory) NewQuerier(cred *integration.Credential) (ShopifyGraphQLQuerier, error) {
	app := goshopify.App{
		ApiKey:    firstNonEmpty(cred.APIKey, f.config.APIKey),
		ApiSecret: firstNonEmpty(cred.APISecretKey, f.config.APISecret),
	}
	client, err := goshopify.NewClient(app, cred.ShopName(), cred.AccessToken,
		goshopify.WithVersion(f.config.APIVersion),
		goshopify.WithRetry(f.config.MaxRetries),
		goshopify.WithHTTPClient(f.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create shopify client for %s: %w", cred.ShopName(), err)
	}
	return client.GraphQL, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ ShopifyQuerierFactory = (*GoShopifyQuerierFactory)(nil)
