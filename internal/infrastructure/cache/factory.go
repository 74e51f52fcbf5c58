package cache

import (
	"fmt"
	"io"

	"github.com/ordersync/backend/internal/domain/integration"
	"github.com/ordersync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Backend names accepted by CacheConfig.Backend
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// RevenueCacheFactory creates revenue caches based on configuration
type RevenueCacheFactory struct {
	redisConfig           config.RedisConfig
	cacheConfig           config.CacheConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RevenueCacheFactoryOption is a functional option for configuring the factory
type RevenueCacheFactoryOption func(*RevenueCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RevenueCacheFactoryOption {
	return func(f *RevenueCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis is unavailable.
// Defaults to CacheConfig.FallbackToMemory.
func WithInMemoryFallback(allow bool) RevenueCacheFactoryOption {
	return func(f *RevenueCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRevenueCacheFactory creates a new factory
func NewRevenueCacheFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...RevenueCacheFactoryOption) *RevenueCacheFactory {
	f := &RevenueCacheFactory{
		redisConfig:           redisCfg,
		cacheConfig:           cacheCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cacheCfg.FallbackToMemory,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed revenue cache
func (f *RevenueCacheFactory) CreateRedisCache() (*RedisRevenueCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	c, err := NewRedisRevenueCache(redisCfg, f.cacheConfig.KeyPrefix, f.cacheConfig.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis revenue cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates an in-memory revenue cache.
// Summaries are not shared across processes, so one instance may serve a
// summary another instance's sync already invalidated until the TTL expires.
func (f *RevenueCacheFactory) CreateInMemoryCache() *InMemoryRevenueCache {
	return NewInMemoryRevenueCache(f.cacheConfig.TTL)
}

// CreateCache creates the configured cache. With the redis backend it falls
// back to memory when Redis is unreachable and fallback is allowed. The returned
// closer releases the cache's resources.
func (f *RevenueCacheFactory) CreateCache() (integration.RevenueCache, io.Closer, error) {
	switch f.cacheConfig.Backend {
	case BackendMemory:
		f.logger.Info("using in-memory revenue cache")
		c := f.CreateInMemoryCache()
		return c, c, nil
	case BackendRedis, "":
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", f.cacheConfig.Backend)
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis revenue cache")
		return c, c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("Redis required for revenue cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory revenue cache",
		zap.Error(err),
	)
	mem := f.CreateInMemoryCache()
	return mem, mem, nil
}
