package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// OrderSyncRunner runs one pass over every active credential
type OrderSyncRunner interface {
	SyncAllActiveCredentials(ctx context.Context, window *integration.SyncWindow) (*integration.SyncBatchResult, error)
}

// TickRecorder receives pass lifecycle events, typically metrics
type TickRecorder interface {
	TickStarted()
	TickSkipped()
	TickFinished(at time.Time, duration time.Duration, err error, panicked bool)
}

type noopRecorder struct{}

func (noopRecorder) TickStarted()                                       {}
func (noopRecorder) TickSkipped()                                       {}
func (noopRecorder) TickFinished(time.Time, time.Duration, error, bool) {}

// ---------------------------------------------------------------------------
// OrderSyncSchedulerConfig
// ---------------------------------------------------------------------------

// OrderSyncSchedulerConfig holds configuration for the order sync scheduler
type OrderSyncSchedulerConfig struct {
	// CronSchedule is a standard 5-field cron expression
	CronSchedule string
	// Location is the timezone CronSchedule is evaluated in
	Location *time.Location
	// Window is the trailing range synced by each tick
	Window time.Duration
	// RunTimeout bounds a single pass; zero means no limit
	RunTimeout time.Duration
	// RunOnStartup triggers one pass as soon as Start is called
	RunOnStartup bool
}

// DefaultOrderSyncSchedulerConfig returns default configuration
func DefaultOrderSyncSchedulerConfig() OrderSyncSchedulerConfig {
	loc, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		loc = time.UTC
	}
	return OrderSyncSchedulerConfig{
		CronSchedule: "*/30 * * * *",
		Location:     loc,
		Window:       time.Hour,
	}
}

// Validate validates the configuration
func (c *OrderSyncSchedulerConfig) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("%w: location is required", ErrInvalidConfig)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("%w: run timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := cron.ParseStandard(c.CronSchedule); err != nil {
		return fmt.Errorf("%w: cron schedule %q: %v", ErrInvalidConfig, c.CronSchedule, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// OrderSyncScheduler
// ---------------------------------------------------------------------------

// Option configures an OrderSyncScheduler
type Option func(*OrderSyncScheduler)

// WithTickRecorder reports pass lifecycle events to r
func WithTickRecorder(r TickRecorder) Option {
	return func(s *OrderSyncScheduler) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock replaces time.Now when computing tick windows
func WithClock(now func() time.Time) Option {
	return func(s *OrderSyncScheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// OrderSyncScheduler fires a sync pass on a cron cadence. Each tick syncs the
// trailing window ending at the tick time. A tick that fires while a pass is
// still running is dropped.
type OrderSyncScheduler struct {
	config   OrderSyncSchedulerConfig
	runner   OrderSyncRunner
	recorder TickRecorder
	logger   *zap.Logger
	now      func() time.Time

	syncing atomic.Bool

	mu        sync.Mutex
	isRunning bool
	cron      *cron.Cron
	cancel    context.CancelFunc
	startup   sync.WaitGroup
	ctx       context.Context
}

// NewOrderSyncScheduler creates a new order sync scheduler
func NewOrderSyncScheduler(config OrderSyncSchedulerConfig, runner OrderSyncRunner, logger *zap.Logger, opts ...Option) (*OrderSyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &OrderSyncScheduler{
		config:   config,
		runner:   runner,
		recorder: noopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start registers the cron entry and starts firing ticks. ctx is the parent
// of every scheduled pass. Calling Start twice is a no-op.
func (s *OrderSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	c := cron.New(cron.WithLocation(s.config.Location))
	if _, err := c.AddFunc(s.config.CronSchedule, s.tick); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron = c
	s.isRunning = true
	c.Start()

	if s.config.RunOnStartup {
		s.startup.Add(1)
		go func() {
			defer s.startup.Done()
			s.tick()
		}()
	}

	s.logger.Info("Order sync scheduler started",
		zap.String("cron_schedule", s.config.CronSchedule),
		zap.String("timezone", s.config.Location.String()),
		zap.Duration("window", s.config.Window),
		zap.Bool("run_on_startup", s.config.RunOnStartup),
	)
	return nil
}

// Stop stops firing ticks and waits for an in-flight pass. When ctx expires
// first, the in-flight pass is cancelled and ctx's error is returned.
func (s *OrderSyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.isRunning = false
	c, cancel := s.cron, s.cancel
	s.mu.Unlock()

	jobsDone := c.Stop()
	done := make(chan struct{})
	go func() {
		<-jobsDone.Done()
		s.startup.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancel()
		s.logger.Info("Order sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		cancel()
		s.logger.Warn("Order sync scheduler stop timed out, cancelling in-flight pass")
		return ctx.Err()
	}
}

// IsRunning reports whether the cron cadence is active
func (s *OrderSyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// IsSyncing reports whether a pass is in flight
func (s *OrderSyncScheduler) IsSyncing() bool {
	return s.syncing.Load()
}

// NextRun returns the next scheduled tick, or the zero time when stopped
func (s *OrderSyncScheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return time.Time{}
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// tick is the cron callback. Failures are logged and never propagate, so
// later ticks keep firing.
func (s *OrderSyncScheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	_, err := s.RunOnce(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrOrderSyncAlreadyInProgress):
		s.logger.Warn("Skipping scheduled order sync, previous pass still running")
	default:
		s.logger.Error("Scheduled order sync failed", zap.Error(err))
	}
}

// RunOnce runs one pass over the trailing window ending now. It returns
// ErrOrderSyncAlreadyInProgress without doing anything when a pass is already
// running. A panicking pass is recovered and reported as ErrOrderSyncFailed.
func (s *OrderSyncScheduler) RunOnce(ctx context.Context) (batch *integration.SyncBatchResult, err error) {
	if !s.syncing.CompareAndSwap(false, true) {
		s.recorder.TickSkipped()
		return nil, ErrOrderSyncAlreadyInProgress
	}
	defer s.syncing.Store(false)

	tickAt := s.now().In(s.config.Location)
	window := integration.TrailingWindow(tickAt, s.config.Window)

	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	s.recorder.TickStarted()
	started := time.Now()
	panicked := false
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			batch = nil
			err = fmt.Errorf("%w: panic: %v", ErrOrderSyncFailed, r)
			s.logger.Error("Order sync pass panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
		s.recorder.TickFinished(tickAt, time.Since(started), err, panicked)
	}()

	s.logger.Info("Running order sync pass",
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End),
	)

	batch, err = s.runner.SyncAllActiveCredentials(ctx, &window)
	if err != nil {
		return batch, err
	}

	s.logger.Info("Order sync pass finished",
		zap.Int("created", batch.CreatedCount),
		zap.Int("succeeded", batch.Succeeded()),
		zap.Int("failed", batch.Failed()),
	)
	return batch, nil
}
