package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig holds configuration for database metrics collection
type DBMetricsConfig struct {
	// SlowQueryThreshold defines the threshold for slow query detection (default: 200ms)
	SlowQueryThreshold time.Duration
	// DBName labels the connection pool collector
	DBName string
}

// DefaultDBMetricsConfig returns default configuration for database metrics
func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{
		SlowQueryThreshold: 200 * time.Millisecond,
		DBName:             "order_sync",
	}
}

// DBMetrics records gorm query counts and latencies
type DBMetrics struct {
	queryTotal     *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	slowQueryTotal *prometheus.CounterVec
	config         DBMetricsConfig
}

// NewDBMetrics creates the query metrics and registers them on reg
func NewDBMetrics(reg *Registry, cfg DBMetricsConfig) (*DBMetrics, error) {
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = DefaultDBMetricsConfig().SlowQueryThreshold
	}
	ns := reg.Namespace()
	m := &DBMetrics{
		queryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Database statements by operation, table and result.",
		}, []string{"operation", "table", "result"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database statement latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		slowQueryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "db",
			Name:      "slow_queries_total",
			Help:      "Database statements slower than the configured threshold.",
		}, []string{"table"}),
		config: cfg,
	}
	if err := reg.Register(m.queryTotal, m.queryDuration, m.slowQueryTotal); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordQuery records one statement
func (m *DBMetrics) RecordQuery(operation, table string, duration time.Duration, err error) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "UNKNOWN"
	}
	if table == "" {
		table = "unknown"
	}

	result := "ok"
	switch {
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
	case errors.Is(err, gorm.ErrDuplicatedKey):
		result = "duplicate"
	default:
		result = "error"
	}

	m.queryTotal.WithLabelValues(operation, table, result).Inc()
	m.queryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if duration > m.config.SlowQueryThreshold {
		m.slowQueryTotal.WithLabelValues(table).Inc()
	}
}

// RegisterPoolStats exports database/sql pool statistics of sqlDB
func RegisterPoolStats(reg *Registry, sqlDB *sql.DB, dbName string) error {
	return reg.Register(collectors.NewDBStatsCollector(sqlDB, dbName))
}

// ---------------------------------------------------------------------------
// GORM plugin
// ---------------------------------------------------------------------------

// DBMetricsPlugin is a GORM plugin that feeds DBMetrics
type DBMetricsPlugin struct {
	metrics *DBMetrics
	logger  *zap.Logger
}

// NewDBMetricsPlugin creates a new GORM plugin for database metrics
func NewDBMetricsPlugin(metrics *DBMetrics, logger *zap.Logger) *DBMetricsPlugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBMetricsPlugin{metrics: metrics, logger: logger}
}

// Name returns the plugin name
func (p *DBMetricsPlugin) Name() string {
	return "db_metrics"
}

type dbMetricsContextKey string

const dbMetricsStartTimeKey dbMetricsContextKey = "db_metrics_start_time"

// Initialize registers before/after callbacks around every gorm processor
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	before := func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db.Statement.Context = context.WithValue(ctx, dbMetricsStartTimeKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			op := operation
			if op == "" {
				op = detectOperationType(db.Statement.SQL.String())
			}
			p.record(db, op)
		}
	}

	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("db_metrics:before_create", before),
		cb.Create().After("gorm:create").Register("db_metrics:after_create", after("INSERT")),
		cb.Query().Before("gorm:query").Register("db_metrics:before_query", before),
		cb.Query().After("gorm:query").Register("db_metrics:after_query", after("SELECT")),
		cb.Update().Before("gorm:update").Register("db_metrics:before_update", before),
		cb.Update().After("gorm:update").Register("db_metrics:after_update", after("UPDATE")),
		cb.Delete().Before("gorm:delete").Register("db_metrics:before_delete", before),
		cb.Delete().After("gorm:delete").Register("db_metrics:after_delete", after("DELETE")),
		cb.Row().Before("gorm:row").Register("db_metrics:before_row", before),
		cb.Row().After("gorm:row").Register("db_metrics:after_row", after("")),
		cb.Raw().Before("gorm:raw").Register("db_metrics:before_raw", before),
		cb.Raw().After("gorm:raw").Register("db_metrics:after_raw", after("")),
	)
	if err != nil {
		return err
	}

	p.logger.Debug("Database metrics plugin initialized")
	return nil
}

func (p *DBMetricsPlugin) record(db *gorm.DB, operation string) {
	var duration time.Duration
	if ctx := db.Statement.Context; ctx != nil {
		if start, ok := ctx.Value(dbMetricsStartTimeKey).(time.Time); ok {
			duration = time.Since(start)
		}
	}
	p.metrics.RecordQuery(operation, db.Statement.Table, duration, db.Error)
}

// detectOperationType derives the SQL verb of a raw statement
func detectOperationType(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))

	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, verb) {
			return verb
		}
	}
	return "OTHER"
}
