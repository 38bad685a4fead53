package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// LocalLimiter is an in-process limiter for single-instance deployments
// that run without Redis. It keeps one token bucket per (client, route)
// key, refilled at the per-minute budget. It never returns a store error.
type LocalLimiter struct {
	perMinute int
	mu        sync.Mutex
	buckets   map[string]*rate.Limiter
}

// NewLocalLimiter creates an in-process limiter. As with the Redis limiter,
// a budget of zero or negative disables limiting.
func NewLocalLimiter(perMinute int) *LocalLimiter {
	return &LocalLimiter{
		perMinute: perMinute,
		buckets:   make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the request fits within the per-minute budget
func (ll *LocalLimiter) Allow(_ context.Context, clientID, routePath string) (bool, error) {
	if ll.perMinute <= 0 {
		return true, nil
	}

	key := clientID + ":" + routePath

	ll.mu.Lock()
	bucket, ok := ll.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(rate.Limit(float64(ll.perMinute)/60.0), ll.perMinute)
		ll.buckets[key] = bucket
	}
	ll.mu.Unlock()

	return bucket.Allow(), nil
}

// Ping always succeeds: there is no external store to probe
func (ll *LocalLimiter) Ping(context.Context) error {
	return nil
}
