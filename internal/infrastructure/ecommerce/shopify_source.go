package ecommerce

import (
	"context"
	"fmt"
	"time"

	"github.com/ordersync/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Pacer
// ---------------------------------------------------------------------------

// Pacer delays the next page request
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedPacer waits a constant delay. It does not adapt to rate-limit headers.
type FixedPacer struct {
	Delay time.Duration
}

// Wait implements Pacer
func (p FixedPacer) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ---------------------------------------------------------------------------
// ShopifyOrderSource
// ---------------------------------------------------------------------------

// ShopifyOrderSource pages through a shop's orders over the Admin GraphQL API
type ShopifyOrderSource struct {
	config  ShopifyConfig
	factory ShopifyQuerierFactory
	pacer   Pacer
	logger  *zap.Logger
	now     func() time.Time
}

// ShopifyOrderSourceOption configures a ShopifyOrderSource
type ShopifyOrderSourceOption func(*ShopifyOrderSource)

// WithPacer replaces the fixed page delay
func WithPacer(p Pacer) ShopifyOrderSourceOption {
	return func(s *ShopifyOrderSource) {
		s.pacer = p
	}
}

// WithClock replaces time.Now for recent-window computation
func WithClock(now func() time.Time) ShopifyOrderSourceOption {
	return func(s *ShopifyOrderSource) {
		s.now = now
	}
}

// NewShopifyOrderSource creates a new order source
func NewShopifyOrderSource(config ShopifyConfig, factory ShopifyQuerierFactory, logger *zap.Logger, opts ...ShopifyOrderSourceOption) (*ShopifyOrderSource, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &ShopifyOrderSource{
		config:  config,
		factory: factory,
		pacer:   FixedPacer{Delay: config.PageDelay},
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FetchPage issues a single orders request. An empty cursor requests the first page;
// a nil window requests all orders.
func (s *ShopifyOrderSource) FetchPage(ctx context.Context, cred *integration.Credential, cursor string, window *integration.SyncWindow) (*ShopifyOrdersPage, error) {
	querier, err := s.factory.NewQuerier(cred)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrRemoteFetch, err)
	}
	return s.fetchPage(ctx, querier, cred, cursor, window)
}

func (s *ShopifyOrderSource) fetchPage(ctx context.Context, querier ShopifyGraphQLQuerier, cred *integration.Credential, cursor string, window *integration.SyncWindow) (*ShopifyOrdersPage, error) {
	query, vars := shopifyOrdersRequest(s.config.PageSize, s.config.LineItemsPerOrder, cursor, window)

	var page ShopifyOrdersPage
	if err := querier.Query(ctx, query, vars, &page); err != nil {
		return nil, fmt.Errorf("%w: shop %s: %v", integration.ErrRemoteFetch, cred.ShopName(), err)
	}
	return &page, nil
}

// Walk implements integration.OrderSource
func (s *ShopifyOrderSource) Walk(ctx context.Context, cred *integration.Credential, window *integration.SyncWindow, fn integration.PageHandler) error {
	querier, err := s.factory.NewQuerier(cred)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrRemoteFetch, err)
	}

	cursor := ""
	for pageNo := 1; ; pageNo++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if pageNo > 1 {
			if err := s.pacer.Wait(ctx); err != nil {
				return err
			}
		}

		page, err := s.fetchPage(ctx, querier, cred, cursor, window)
		if err != nil {
			return err
		}

		orders, err := MapShopifyOrdersPage(page, cred.MerchantID)
		if err != nil {
			return err
		}

		s.logger.Debug("Fetched Shopify orders page",
			zap.String("shop", cred.ShopName()),
			zap.Int("page_no", pageNo),
			zap.Int("orders", len(orders)),
			zap.Bool("has_next_page", page.Orders.PageInfo.HasNextPage),
		)

		if err := fn(ctx, orders); err != nil {
			return err
		}

		if !page.Orders.PageInfo.HasNextPage {
			return nil
		}
		next := page.Orders.PageInfo.NextCursor()
		if next == "" {
			return fmt.Errorf("%w: page %d has a next page but no end cursor", integration.ErrInvalidRemotePayload, pageNo)
		}
		cursor = next
	}
}

// FetchAll returns every order of the shop
func (s *ShopifyOrderSource) FetchAll(ctx context.Context, cred *integration.Credential) ([]*integration.Order, error) {
	return s.collect(ctx, cred, nil)
}

// FetchByDateRange returns the orders created within [start, end]
func (s *ShopifyOrderSource) FetchByDateRange(ctx context.Context, cred *integration.Credential, start, end time.Time) ([]*integration.Order, error) {
	window, err := integration.NewSyncWindow(start, end)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, cred, window)
}

// FetchRecent returns the orders created in the last days days (30 when days <= 0)
func (s *ShopifyOrderSource) FetchRecent(ctx context.Context, cred *integration.Credential, days int) ([]*integration.Order, error) {
	window := integration.RecentWindow(s.now(), days)
	return s.collect(ctx, cred, &window)
}

func (s *ShopifyOrderSource) collect(ctx context.Context, cred *integration.Credential, window *integration.SyncWindow) ([]*integration.Order, error) {
	var all []*integration.Order
	err := s.Walk(ctx, cred, window, func(_ context.Context, orders []*integration.Order) error {
		all = append(all, orders...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fetched orders from Shopify",
		zap.String("shop", cred.ShopName()),
		zap.Int("orders", len(all)),
	)
	return all, nil
}

var _ integration.OrderSource = (*ShopifyOrderSource)(nil)
