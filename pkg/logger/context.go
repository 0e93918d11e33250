package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// With returns a new context that includes a logger with fields.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey, l)
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return LoggerWrapper()
	}
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}

// WithIdentity tags the request logger with the resolved caller.
func WithIdentity(ctx context.Context, userID int64, organizationID *int64, role string) context.Context {
	fields := []any{"user_id", userID, "role", role}
	if organizationID != nil {
		fields = append(fields, "organization_id", *organizationID)
	}
	return With(ctx, fields...)
}
