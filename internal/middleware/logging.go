package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// loggerKey is the key used to store the logger in the context.
// Using a custom type prevents collisions.
type contextKey string

const loggerKey = contextKey("logger")

// StructuredLoggingMiddleware starts an operation-scoped logger enriched with a
// request id and the operation name, stores it in the returned context and
// returns a completion func that logs the outcome and latency.
func StructuredLoggingMiddleware(ctx context.Context, baseLogger *slog.Logger, operation string) (context.Context, func(err error)) {
	start := time.Now()
	requestID := uuid.NewString()

	requestLogger := baseLogger.With(
		slog.String("request_id", requestID),
		slog.String("operation", operation),
	)

	ctx = WithLogger(ctx, requestLogger)

	return ctx, func(err error) {
		latency := time.Since(start)
		if err != nil {
			requestLogger.Warn("Operation failed",
				slog.String("error", err.Error()),
				slog.Duration("latency", latency),
			)
			return
		}
		requestLogger.Info("Operation completed", slog.Duration("latency", latency))
	}
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLoggerFromCtx retrieves the operation-scoped logger from the context.
// It returns the default logger if none is found.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}
