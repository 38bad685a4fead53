// Package observability provides structured logging, Prometheus metrics, and graceful shutdown.
//
// # Overview
//
// This package centralizes observability infrastructure for the gateway: JSON
// logging over stdlib slog, request/downstream metrics, and signal-driven shutdown.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("route", "/user/me").Info("request forwarded")
//
// Context-aware logging (request id attached by the pipeline):
//
//	observability.FromContext(ctx, logger).Warn("authorization denied")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics()
//	metrics.ObserveRequest("GET", "/user/me", 200, elapsed)
//	metrics.ObserveDownstream("user", 200, elapsed, nil)
//	mux.Handle("/metrics", metrics.Handler())
//
// # Shutdown
//
//	sm := observability.NewShutdownManager(logger, server, 30*time.Second)
//	sm.RegisterShutdownFunc(func(ctx context.Context) error { return redisClient.Close() })
//	sm.WaitForShutdown()
//
// # Related Packages
//
//   - pkg/gateway: records metrics and uses context loggers per request
//   - pkg/config: supplies log level and metrics settings
package observability
