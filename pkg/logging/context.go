package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
)

// WithLogger adds a logger to the context. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the context logger, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithRequestID records the ID of the HTTP request being served and adds it
// to the context logger as request_id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return withField(ctx, "request_id", requestID)
}

// RequestID returns the request ID stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithDrive adds drive_id to the context logger.
func WithDrive(ctx context.Context, driveID string) context.Context {
	return withField(ctx, "drive_id", driveID)
}

// WithCompany adds company_id to the context logger.
func WithCompany(ctx context.Context, companyID string) context.Context {
	return withField(ctx, "company_id", companyID)
}

// WithJob adds job_id to the context logger.
func WithJob(ctx context.Context, jobID string) context.Context {
	return withField(ctx, "job_id", jobID)
}

// WithOperation adds operation to the context logger.
func WithOperation(ctx context.Context, operation string) context.Context {
	return withField(ctx, "operation", operation)
}

func withField(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}
