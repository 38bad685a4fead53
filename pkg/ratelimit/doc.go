// Package ratelimit provides per-client, per-route request throttling.
//
// # Overview
//
// The primary implementation is a Redis-backed fixed-window counter keyed by
// (client id, route path, current minute): INCR plus EXPIRE in one pipeline,
// allowed iff the post-increment count is within the per-minute budget.
// The key TTL exceeds the window by a small slack so clock drift neither
// rejects early nor leaks keys.
//
// A store error is returned to the caller rather than silently swallowed;
// the pipeline applies the deployment's fail-open or fail-closed policy.
//
// # Limiters
//
// Redis-backed (shared budget across replicas):
//
//	limiter := ratelimit.NewRedisLimiter(redisClient, 120, 10*time.Second)
//	allowed, err := limiter.Allow(ctx, ratelimit.ClientID(r), r.URL.Path)
//
// In-process fallback (single instance, no Redis configured):
//
//	limiter := ratelimit.NewLocalLimiter(120)
//
// A budget of zero or negative disables limiting entirely on either
// implementation.
//
// # Related Packages
//
//   - pkg/gateway: runs the limiter as the rate gate and applies the
//     fail-open/fail-closed knob
package ratelimit
