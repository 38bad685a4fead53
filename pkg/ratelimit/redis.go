package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter throttles requests per client and route. Allow reports whether
// the call fits within the budget; a non-nil error means the counter store
// could not answer and the caller must apply its fail-open/fail-closed
// policy explicitly.
type Limiter interface {
	Allow(ctx context.Context, clientID, routePath string) (bool, error)
	Ping(ctx context.Context) error
}

// RedisLimiter implements fixed-window rate limiting over a shared Redis
// counter store, so the budget holds across gateway replicas.
type RedisLimiter struct {
	client      *redis.Client
	perMinute   int
	windowSlack time.Duration
	prefix      string
	now         func() time.Time
}

// Option configures a RedisLimiter
type Option func(*RedisLimiter)

// WithClock overrides the wall clock, used by tests to cross window boundaries
func WithClock(now func() time.Time) Option {
	return func(rl *RedisLimiter) {
		rl.now = now
	}
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter. A perMinute
// budget of zero or negative disables limiting entirely; that is the
// operational escape hatch, not an error.
func NewRedisLimiter(client *redis.Client, perMinute int, windowSlack time.Duration, opts ...Option) *RedisLimiter {
	rl := &RedisLimiter{
		client:      client,
		perMinute:   perMinute,
		windowSlack: windowSlack,
		prefix:      "ratelimit",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Allow counts this request against the (client, route, minute) window and
// reports whether the post-increment count is within budget. INCR and EXPIRE
// run in one pipeline: the key is created on first hit with a TTL slightly
// longer than the window so minor clock drift cannot leak keys.
func (rl *RedisLimiter) Allow(ctx context.Context, clientID, routePath string) (bool, error) {
	if rl.perMinute <= 0 {
		return true, nil
	}

	window := rl.now().Unix() / 60
	key := fmt.Sprintf("%s:%s:%s:%d", rl.prefix, clientID, routePath, window)

	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Minute+rl.windowSlack)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit store: %w", err)
	}

	return incr.Val() <= int64(rl.perMinute), nil
}

// Ping checks counter-store liveness for the readiness probe
func (rl *RedisLimiter) Ping(ctx context.Context) error {
	return rl.client.Ping(ctx).Err()
}

// ClientID derives the rate-limit client identifier from a request, falling
// back through the forwarded-address headers to the raw connection address.
func ClientID(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, ok := strings.Cut(forwarded, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
