package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for the HTTP request ID
	RequestIDKey contextKey = "request_id"
	// SyncRunIDKey is the context key for the id of a sync pass
	SyncRunIDKey contextKey = "sync_run_id"
	// MerchantIDKey is the context key for the merchant being synced or queried
	MerchantIDKey contextKey = "merchant_id"
	// CredentialIDKey is the context key for the credential being synced
	CredentialIDKey contextKey = "credential_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, RequestIDKey, requestID)
}

// WithSyncRunID tags every entry of one scheduled or manual sync pass
func WithSyncRunID(ctx context.Context, logger *zap.Logger, runID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, SyncRunIDKey, runID)
}

// WithMerchantID adds merchant ID to context and returns enriched logger
func WithMerchantID(ctx context.Context, logger *zap.Logger, merchantID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, MerchantIDKey, merchantID)
}

// WithCredentialID adds credential ID to context and returns enriched logger
func WithCredentialID(ctx context.Context, logger *zap.Logger, credentialID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, CredentialIDKey, credentialID)
}

func withField(ctx context.Context, logger *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, key, value)
	enriched := logger.With(zap.String(string(key), value))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// GetSyncRunID retrieves the sync pass ID from context
func GetSyncRunID(ctx context.Context) string {
	return stringValue(ctx, SyncRunIDKey)
}

// GetMerchantID retrieves merchant ID from context
func GetMerchantID(ctx context.Context) string {
	return stringValue(ctx, MerchantIDKey)
}

// GetCredentialID retrieves credential ID from context
func GetCredentialID(ctx context.Context) string {
	return stringValue(ctx, CredentialIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// contextFields returns the correlation fields present in ctx
func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	for _, key := range []contextKey{RequestIDKey, SyncRunIDKey, MerchantIDKey, CredentialIDKey} {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}
	return fields
}

// ContextLogger logs with the correlation ids carried by a context.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
	// enrich is false when logger already carries the context's ids
	enrich bool
}

// L returns a ContextLogger from the given context.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{
		ctx:    ctx,
		logger: FromContext(ctx),
	}
}

// WithLogger returns a ContextLogger using the provided logger instead of
// extracting from context. Correlation ids found in ctx are added to every entry.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{
		ctx:    ctx,
		logger: logger,
		enrich: true,
	}
}

// Zap returns the underlying logger with the context's correlation ids attached.
func (cl *ContextLogger) Zap() *zap.Logger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}
	if !cl.enrich {
		return l
	}
	return l.With(contextFields(cl.ctx)...)
}

// With creates a child ContextLogger with additional fields.
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{
		ctx:    cl.ctx,
		logger: cl.Zap().With(fields...),
	}
}

// Debug logs a debug level message.
func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.Zap().Debug(msg, fields...)
}

// Info logs an info level message.
func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.Zap().Info(msg, fields...)
}

// Warn logs a warning level message.
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.Zap().Warn(msg, fields...)
}

// Error logs an error level message.
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.Zap().Error(msg, fields...)
}
