package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearSyncEnv blanks every variable the tests touch; viper treats empty values as unset
func clearSyncEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SYNC_APP_NAME", "SYNC_APP_ENV", "SYNC_APP_PORT",
		"SYNC_DATABASE_HOST", "SYNC_DATABASE_PORT", "SYNC_DATABASE_USER",
		"SYNC_DATABASE_PASSWORD", "SYNC_DATABASE_DBNAME", "SYNC_DATABASE_SSLMODE",
		"SYNC_DATABASE_MAX_OPEN_CONNS", "SYNC_DATABASE_MAX_IDLE_CONNS",
		"SYNC_SHOPIFY_PAGE_SIZE", "SYNC_SHOPIFY_PAGE_DELAY",
		"SYNC_SCHEDULER_ENABLED", "SYNC_SCHEDULER_CRON_SCHEDULE", "SYNC_SCHEDULER_TIMEZONE",
		"SYNC_SCHEDULER_WINDOW", "CRON_SCHEDULE",
		"SYNC_CACHE_BACKEND", "SYNC_METRICS_ENABLED", "SYNC_HTTP_CORS_ALLOW_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearSyncEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "order-sync", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "order_sync", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)

		assert.Equal(t, 250, cfg.Shopify.PageSize)
		assert.Equal(t, 100, cfg.Shopify.LineItemsPerOrder)
		assert.Equal(t, 500*time.Millisecond, cfg.Shopify.PageDelay)
		assert.Equal(t, 8, cfg.Sync.ItemConcurrency)

		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, "*/30 * * * *", cfg.Scheduler.CronSchedule)
		assert.Equal(t, "Australia/Sydney", cfg.Scheduler.Timezone)
		assert.Equal(t, time.Hour, cfg.Scheduler.Window)

		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "/metrics", cfg.Metrics.Path)
		assert.Equal(t, "redis", cfg.Cache.Backend)
		assert.True(t, cfg.Cache.FallbackToMemory)
	})

	t.Run("loads values from environment variables with SYNC prefix", func(t *testing.T) {
		clearSyncEnv(t)
		t.Setenv("SYNC_APP_PORT", "9000")
		t.Setenv("SYNC_DATABASE_HOST", "testdb.local")
		t.Setenv("SYNC_DATABASE_PORT", "5433")
		t.Setenv("SYNC_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("SYNC_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("SYNC_SHOPIFY_PAGE_SIZE", "100")
		t.Setenv("SYNC_SHOPIFY_PAGE_DELAY", "1s")
		t.Setenv("SYNC_SCHEDULER_ENABLED", "false")
		t.Setenv("SYNC_SCHEDULER_TIMEZONE", "UTC")
		t.Setenv("SYNC_SCHEDULER_WINDOW", "2h")
		t.Setenv("SYNC_CACHE_BACKEND", "memory")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 100, cfg.Shopify.PageSize)
		assert.Equal(t, time.Second, cfg.Shopify.PageDelay)
		assert.False(t, cfg.Scheduler.Enabled)
		assert.Equal(t, time.UTC, cfg.Scheduler.Location())
		assert.Equal(t, 2*time.Hour, cfg.Scheduler.Window)
		assert.Equal(t, "memory", cfg.Cache.Backend)
	})

	t.Run("honours the unprefixed CRON_SCHEDULE", func(t *testing.T) {
		clearSyncEnv(t)
		t.Setenv("CRON_SCHEDULE", "0 * * * *")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "0 * * * *", cfg.Scheduler.CronSchedule)
	})

	t.Run("prefixed cron schedule wins over CRON_SCHEDULE", func(t *testing.T) {
		clearSyncEnv(t)
		t.Setenv("CRON_SCHEDULE", "0 * * * *")
		t.Setenv("SYNC_SCHEDULER_CRON_SCHEDULE", "*/5 * * * *")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "*/5 * * * *", cfg.Scheduler.CronSchedule)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearSyncEnv(t)
		t.Setenv("SYNC_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("SYNC_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"invalid cron expression", map[string]string{"CRON_SCHEDULE": "every half hour"}, "scheduler.cron_schedule"},
		{"invalid timezone", map[string]string{"SYNC_SCHEDULER_TIMEZONE": "Mars/Olympus"}, "scheduler.timezone"},
		{"negative window", map[string]string{"SYNC_SCHEDULER_WINDOW": "-1h"}, "scheduler.window"},
		{"page size above limit", map[string]string{"SYNC_SHOPIFY_PAGE_SIZE": "500"}, "shopify.page_size"},
		{"negative page delay", map[string]string{"SYNC_SHOPIFY_PAGE_DELAY": "-1s"}, "shopify.page_delay"},
		{"unknown cache backend", map[string]string{"SYNC_CACHE_BACKEND": "memcached"}, "cache.backend"},
		{"negative idle conns", map[string]string{"SYNC_DATABASE_MAX_IDLE_CONNS": "-1"}, "max_idle_conns cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSyncEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearSyncEnv(t)
		t.Setenv("SYNC_APP_ENV", "production")
		t.Setenv("SYNC_DATABASE_PASSWORD", "secure-password")
		t.Setenv("SYNC_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SYNC_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SYNC_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects wildcard CORS in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SYNC_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}

func TestSchedulerConfig_Location(t *testing.T) {
	cfg := SchedulerConfig{Timezone: "Australia/Sydney"}
	assert.Equal(t, "Australia/Sydney", cfg.Location().String())

	cfg.Timezone = "Nowhere/Invalid"
	assert.Equal(t, time.UTC, cfg.Location())
}
