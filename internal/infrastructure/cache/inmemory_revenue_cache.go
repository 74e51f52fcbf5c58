package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
)

type entry struct {
	summary   integration.RevenueSummary
	expiresAt time.Time
}

// InMemoryRevenueCache implements integration.RevenueCache with a map.
// Suitable for single-instance deployments and testing.
type InMemoryRevenueCache struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]entry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRevenueCache creates the cache and starts its expiry sweeper
func NewInMemoryRevenueCache(ttl time.Duration) *InMemoryRevenueCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &InMemoryRevenueCache{
		entries:  make(map[uuid.UUID]entry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns a copy of the cached summary
func (c *InMemoryRevenueCache) Get(ctx context.Context, merchantID uuid.UUID) (*integration.RevenueSummary, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[merchantID]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	summary := e.summary
	return &summary, true, nil
}

// Set stores a copy of the summary
func (c *InMemoryRevenueCache) Set(ctx context.Context, summary *integration.RevenueSummary) error {
	if err := checkCacheable(summary); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[summary.MerchantID] = entry{
		summary:   *summary,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the merchant's summary
func (c *InMemoryRevenueCache) Invalidate(ctx context.Context, merchantID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, merchantID)
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (c *InMemoryRevenueCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryRevenueCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryRevenueCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// Size returns the number of entries, expired ones included until swept
func (c *InMemoryRevenueCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryRevenueCache implements RevenueCache
var _ integration.RevenueCache = (*InMemoryRevenueCache)(nil)
