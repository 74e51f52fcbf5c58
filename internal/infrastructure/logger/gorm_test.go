package logger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Options(t *testing.T) {
	logger, _ := newObservedLogger()
	gl := NewGormLogger(logger, gormlogger.Info,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
		WithDuplicateKeyAsDebug(false),
	)

	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
	assert.False(t, gl.duplicateKeyAsDebug)

	warn, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, warn.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.WithValue(context.Background(), CredentialIDKey, "cred-1")

	t.Run("query logged at debug with context ids", func(t *testing.T) {
		logger, recorded := newObservedLogger()
		NewGormLogger(logger, gormlogger.Info).Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)

		entry := findEntry(t, recorded, "SQL Query")
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.Equal(t, "cred-1", entry.ContextMap()["credential_id"])
		assert.Equal(t, "SELECT 1", entry.ContextMap()["sql"])
	})

	t.Run("error logged at error", func(t *testing.T) {
		logger, recorded := newObservedLogger()
		NewGormLogger(logger, gormlogger.Warn).Trace(ctx, time.Now(), sqlFn("INSERT", 0), errors.New("connection reset"))

		entry := findEntry(t, recorded, "SQL Error")
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	})

	t.Run("record not found ignored", func(t *testing.T) {
		logger, recorded := newObservedLogger()
		NewGormLogger(logger, gormlogger.Warn).Trace(ctx, time.Now(), sqlFn("SELECT", 0), gorm.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("duplicate key downgraded to debug", func(t *testing.T) {
		for _, err := range []error{
			gorm.ErrDuplicatedKey,
			fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}),
		} {
			logger, recorded := newObservedLogger()
			NewGormLogger(logger, gormlogger.Warn).Trace(ctx, time.Now(), sqlFn("INSERT", 0), err)

			entry := findEntry(t, recorded, "SQL duplicate key")
			assert.Equal(t, zapcore.DebugLevel, entry.Level)
		}
	})

	t.Run("slow query logged at warn", func(t *testing.T) {
		logger, recorded := newObservedLogger()
		gl := NewGormLogger(logger, gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gl.Trace(ctx, time.Now().Add(-time.Second), sqlFn("SELECT pg_sleep(1)", 1), nil)

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, zapcore.WarnLevel, recorded.All()[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		logger, recorded := newObservedLogger()
		NewGormLogger(logger, gormlogger.Silent).Trace(ctx, time.Now(), sqlFn("SELECT", 0), errors.New("x"))
		assert.Zero(t, recorded.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}
