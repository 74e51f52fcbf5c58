package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/redis/go-redis/v9"
)

// RedisRevenueCache implements integration.RevenueCache using Redis.
// Summaries are shared by every process pointed at the same Redis.
type RedisRevenueCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRevenueCache connects to Redis and verifies the connection
func NewRedisRevenueCache(cfg RedisConfig, keyPrefix string, ttl time.Duration) (*RedisRevenueCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRevenueCacheWithClient(client, keyPrefix, ttl), nil
}

// NewRedisRevenueCacheWithClient creates a cache over an existing client
func NewRedisRevenueCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisRevenueCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisRevenueCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (c *RedisRevenueCache) key(merchantID uuid.UUID) string {
	return c.keyPrefix + merchantID.String()
}

// Get returns the cached summary of the merchant
func (c *RedisRevenueCache) Get(ctx context.Context, merchantID uuid.UUID) (*integration.RevenueSummary, bool, error) {
	data, err := c.client.Get(ctx, c.key(merchantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read revenue summary: %w", err)
	}

	summary, err := decodeSummary(data)
	if err != nil {
		return nil, false, err
	}
	return summary, true, nil
}

// Set stores the summary with the cache TTL
func (c *RedisRevenueCache) Set(ctx context.Context, summary *integration.RevenueSummary) error {
	if err := checkCacheable(summary); err != nil {
		return err
	}
	data, err := encodeSummary(summary)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(summary.MerchantID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revenue summary: %w", err)
	}
	return nil
}

// Invalidate drops the merchant's summary
func (c *RedisRevenueCache) Invalidate(ctx context.Context, merchantID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(merchantID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate revenue summary: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisRevenueCache) Close() error {
	return c.client.Close()
}

// Ensure RedisRevenueCache implements RevenueCache
var _ integration.RevenueCache = (*RedisRevenueCache)(nil)
