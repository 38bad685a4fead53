package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vitalmesh/vitalmesh/pkg/config"
	"github.com/vitalmesh/vitalmesh/pkg/gateway"
	"github.com/vitalmesh/vitalmesh/pkg/observability"
	"github.com/vitalmesh/vitalmesh/pkg/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.InfoLevel, os.Stderr).
			WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	limiter, cleanup, err := buildLimiter(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("rate limiter initialization failed")
		os.Exit(1)
	}

	srv, err := gateway.NewServer(cfg, logger, limiter)
	if err != nil {
		logger.WithError(err).Error("gateway initialization failed")
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	if cleanup != nil {
		shutdown.RegisterShutdownFunc(cleanup)
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("gateway listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		os.Exit(1)
	}
}

// buildLimiter selects the Redis-backed limiter when a Redis URL is
// configured and falls back to the in-process limiter otherwise. The
// fallback keeps single-instance deployments working without Redis but
// does not share budgets across replicas.
func buildLimiter(cfg *config.Config, logger *observability.Logger) (ratelimit.Limiter, observability.ShutdownFunc, error) {
	if cfg.RateLimit.RedisURL == "" {
		logger.Info("no Redis URL configured, using in-process rate limiter")
		return ratelimit.NewLocalLimiter(cfg.RateLimit.RequestsPerMinute), nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisURL,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).WithField("addr", cfg.RateLimit.RedisURL).
			Warn("Redis unreachable at startup, continuing")
	}

	limiter := ratelimit.NewRedisLimiter(client, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.WindowSlack)
	cleanup := func(ctx context.Context) error {
		return client.Close()
	}
	return limiter, cleanup, nil
}
