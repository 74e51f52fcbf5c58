package ordersync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/infrastructure/logger"
)

// Config holds orchestrator tuning
type Config struct {
	// ItemConcurrency bounds concurrent item inserts per order; 0 means unbounded
	ItemConcurrency int
	// RecentDays is the look-back of SyncRecent when the caller passes 0
	RecentDays int
}

// DefaultConfig returns the default orchestrator configuration
func DefaultConfig() Config {
	return Config{
		ItemConcurrency: 8,
		RecentDays:      integration.DefaultRecentDays,
	}
}

// Observer is notified after every credential pass, successful or not
type Observer interface {
	OnCredentialSynced(ctx context.Context, cred *integration.Credential, result *integration.SyncResult, err error)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, cred *integration.Credential, result *integration.SyncResult, err error)

// OnCredentialSynced calls f
func (f ObserverFunc) OnCredentialSynced(ctx context.Context, cred *integration.Credential, result *integration.SyncResult, err error) {
	f(ctx, cred, result, err)
}

// Option configures a Service
type Option func(*Service)

// WithObserver registers an observer
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observers = append(s.observers, o)
	}
}

// WithClock overrides the clock used for result timestamps and recent windows
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service is the ingestion orchestrator
type Service struct {
	source      integration.OrderSource
	gateway     integration.OrderGateway
	credentials integration.CredentialRepository
	config      Config
	observers   []Observer
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates an orchestrator
func NewService(
	source integration.OrderSource,
	gateway integration.OrderGateway,
	credentials integration.CredentialRepository,
	config Config,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ItemConcurrency < 0 {
		config.ItemConcurrency = 0
	}
	s := &Service{
		source:      source,
		gateway:     gateway,
		credentials: credentials,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---------------------------------------------------------------------------
// Single credential
// ---------------------------------------------------------------------------

// SyncCredential imports the credential's orders inside window (nil = all orders).
// Orders that already exist are skipped without touching their items. A failed
// order upsert or remote fetch aborts the pass; orders stored before the failure
// stay stored and are reported in the partial result.
func (s *Service) SyncCredential(ctx context.Context, cred *integration.Credential, window *integration.SyncWindow) (*integration.SyncResult, error) {
	if cred == nil {
		return nil, fmt.Errorf("%w: credential is nil", integration.ErrInvalidCredential)
	}
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	ctx, log := logger.WithCredentialID(ctx, s.loggerFor(ctx), cred.ID.String())
	ctx, log = logger.WithMerchantID(ctx, log, cred.MerchantID.String())

	result := &integration.SyncResult{
		CredentialID:  cred.ID,
		MerchantID:    cred.MerchantID,
		CreatedOrders: make([]*integration.Order, 0),
		StartedAt:     s.now(),
	}

	log.Info("Starting credential sync", windowFields(window)...)

	err := s.source.Walk(ctx, cred, window, func(ctx context.Context, orders []*integration.Order) error {
		result.Pages++
		for _, order := range orders {
			if err := s.storeOrder(ctx, log, order, result); err != nil {
				return err
			}
		}
		return nil
	})
	result.CompletedAt = s.now()

	fields := []zap.Field{
		zap.Int("created", result.CreatedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed_items", result.FailedItemCount),
		zap.Int("pages", result.Pages),
		zap.Duration("duration", result.Duration()),
	}
	if err != nil {
		log.Error("Credential sync failed", append(fields, zap.Error(err))...)
		s.notify(ctx, cred, result, err)
		return result, err
	}

	log.Info("Credential sync completed", fields...)
	s.notify(ctx, cred, result, nil)
	return result, nil
}

// SyncCredentialByID looks the credential up and syncs it
func (s *Service) SyncCredentialByID(ctx context.Context, id uuid.UUID, window *integration.SyncWindow) (*integration.SyncResult, error) {
	cred, err := s.credentials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SyncCredential(ctx, cred, window)
}

// SyncMerchant looks the merchant's credential up and syncs it. Inactive
// credentials are refused with ErrCredentialInactive.
func (s *Service) SyncMerchant(ctx context.Context, merchantID uuid.UUID, window *integration.SyncWindow) (*integration.SyncResult, error) {
	cred, err := s.credentials.FindByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !cred.Active {
		return nil, fmt.Errorf("%w: merchant %s", integration.ErrCredentialInactive, merchantID)
	}
	return s.SyncCredential(ctx, cred, window)
}

// SyncRecent syncs the last days of orders; days <= 0 uses the configured default
func (s *Service) SyncRecent(ctx context.Context, cred *integration.Credential, days int) (*integration.SyncResult, error) {
	if days <= 0 {
		days = s.config.RecentDays
	}
	window := integration.RecentWindow(s.now(), days)
	return s.SyncCredential(ctx, cred, &window)
}

func (s *Service) storeOrder(ctx context.Context, log *zap.Logger, order *integration.Order, result *integration.SyncResult) error {
	if order.MerchantID == uuid.Nil {
		order.MerchantID = result.MerchantID
	}

	stored, created, err := s.gateway.UpsertOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", order.ShopifyOrderID, err)
	}
	if !created {
		result.SkippedCount++
		log.Debug("Order already stored", zap.String("shopify_order_id", order.ShopifyOrderID))
		return nil
	}

	items, itemErrs := s.createItems(ctx, stored.ID, order.Items)
	stored.Items = items
	result.CreatedCount++
	result.CreatedOrders = append(result.CreatedOrders, stored)
	if len(itemErrs) > 0 {
		result.FailedItemCount += len(itemErrs)
		result.ItemErrors = append(result.ItemErrors, itemErrs...)
		log.Warn("Some order items were not stored",
			zap.String("shopify_order_id", order.ShopifyOrderID),
			zap.Int("failed", len(itemErrs)),
			zap.Error(errors.Join(itemErrs...)),
		)
	}
	return nil
}

// createItems inserts every item of a newly created order concurrently and waits
// for all of them. Failures do not cancel sibling inserts. The returned items are
// the stored ones, in input order.
func (s *Service) createItems(ctx context.Context, orderID uuid.UUID, items []integration.OrderItem) ([]integration.OrderItem, []error) {
	if len(items) == 0 {
		return []integration.OrderItem{}, nil
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
		ok   = make([]bool, len(items))
	)
	if s.config.ItemConcurrency > 0 {
		g.SetLimit(s.config.ItemConcurrency)
	}

	for i := range items {
		items[i].OrderID = orderID
		item := &items[i]
		g.Go(func() error {
			if err := s.gateway.CreateOrderItem(ctx, item); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("line item %s: %w", item.ShopifyLineItemID, err))
				mu.Unlock()
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	stored := make([]integration.OrderItem, 0, len(items))
	for i := range items {
		if ok[i] {
			stored = append(stored, items[i])
		}
	}
	return stored, errs
}

// ---------------------------------------------------------------------------
// All credentials
// ---------------------------------------------------------------------------

// SyncAllActiveCredentials syncs every active credential one after another over
// the same window. A failing credential is recorded in its outcome and does not
// stop the others. The error is non-nil only when the credential list cannot be
// read or ctx is cancelled.
func (s *Service) SyncAllActiveCredentials(ctx context.Context, window *integration.SyncWindow) (*integration.SyncBatchResult, error) {
	ctx, log := logger.WithSyncRunID(ctx, s.loggerFor(ctx), uuid.NewString())

	batch := &integration.SyncBatchResult{
		Window:    window,
		Outcomes:  make([]integration.CredentialSyncOutcome, 0),
		StartedAt: s.now(),
	}

	creds, err := s.credentials.ListActive(ctx)
	if err != nil {
		batch.CompletedAt = s.now()
		log.Error("Failed to list active credentials", zap.Error(err))
		return batch, err
	}

	log.Info("Starting sync pass", append(windowFields(window), zap.Int("credentials", len(creds)))...)

	for i := range creds {
		if err := ctx.Err(); err != nil {
			batch.CompletedAt = s.now()
			log.Warn("Sync pass cancelled", zap.Int("remaining", len(creds)-i), zap.Error(err))
			return batch, err
		}

		cred := &creds[i]
		result, err := s.syncIsolated(ctx, cred, window)
		batch.Outcomes = append(batch.Outcomes, integration.CredentialSyncOutcome{
			CredentialID: cred.ID,
			MerchantID:   cred.MerchantID,
			Result:       result,
			Err:          err,
		})
		if result != nil {
			batch.CreatedCount += result.CreatedCount
		}
	}

	batch.CompletedAt = s.now()
	log.Info("Sync pass completed",
		zap.Int("created", batch.CreatedCount),
		zap.Int("succeeded", batch.Succeeded()),
		zap.Int("failed", batch.Failed()),
		zap.Duration("duration", batch.CompletedAt.Sub(batch.StartedAt)),
	)
	return batch, nil
}

// syncIsolated runs one credential and converts a panic into an error
func (s *Service) syncIsolated(ctx context.Context, cred *integration.Credential, window *integration.SyncWindow) (result *integration.SyncResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("credential %s: panic: %v", cred.ID, r)
			logger.FromContext(ctx).Error("Credential sync panicked",
				zap.String("credential_id", cred.ID.String()),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	return s.SyncCredential(ctx, cred, window)
}

func (s *Service) notify(ctx context.Context, cred *integration.Credential, result *integration.SyncResult, err error) {
	for _, o := range s.observers {
		o.OnCredentialSynced(ctx, cred, result, err)
	}
}

// loggerFor prefers the logger carried by ctx so run ids propagate
func (s *Service) loggerFor(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(logger.LoggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return s.logger
}

func windowFields(window *integration.SyncWindow) []zap.Field {
	if window == nil {
		return []zap.Field{zap.String("window", "all")}
	}
	return []zap.Field{
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End),
	}
}
