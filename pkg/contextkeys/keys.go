// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the gateway must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//   import "github.com/vitalmesh/vitalmesh/pkg/contextkeys"
//   ctx = contextkeys.WithRequestID(ctx, requestID)
//   requestID := contextkeys.GetRequestID(ctx)
//
// The decoded session identity is NOT carried in the context: it travels
// explicitly on the pipeline request state so every consumer is visible.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// RequestIDKey contains request ID string (UUID)
	// Set by: request-id middleware
	// Used by: logger, error envelopes, downstream X-Request-ID header
	RequestIDKey Key = "request_id"

	// LoggerKey contains *observability.Logger
	// Set by: logging middleware
	// Used by: handlers that need structured logging with request context
	LoggerKey Key = "logger"
)

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithLogger adds a logger to the context. The value must be an
// *observability.Logger; the parameter stays untyped because observability
// imports this package for its keys, and a typed signature would close an
// import cycle. FromContext in pkg/observability performs the assertion.
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
