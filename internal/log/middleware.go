package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	LoggerContextKey    ContextKey = "logger"
	RequestIDContextKey ContextKey = "request_id"
)

// NewContext stores logger in ctx.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts the request-scoped logger, falling back to the default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// WithRequestID stores the request id and attaches it to the context logger.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, RequestIDContextKey, requestID)
	return NewContext(ctx, FromContext(ctx).With(FieldRequestID, requestID))
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// StructuredLogger groups the domain events the application logs repeatedly.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs request completion at a level derived from the status.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, method, path string, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}
	fields := NewFields().
		With(FieldMethod, method).
		With(FieldPath, path).
		With(FieldStatusCode, statusCode).
		With(FieldDuration, durationMs).
		With(FieldClientIP, clientIP)
	if id := RequestID(ctx); id != "" {
		fields.With(FieldRequestID, id)
	}
	sl.logger.WithComponent(ComponentHTTP).LogContext(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogMutation logs a successful ledger change.
func (sl *StructuredLogger) LogMutation(ctx context.Context, op, id, category, amount string, rev uint64) {
	fields := NewFields().
		WithOperation(op).
		WithTransaction(id, category, amount).
		WithRevision(rev)
	sl.logger.WithComponent(ComponentLedger).InfoContext(ctx, "Ledger updated", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.WithError(err).WithOperation(operation)
	sl.logger.WithComponent(component).ErrorContext(ctx, msg, fields.ToSlice()...)
}
