package http

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// RateLimiter decides whether another request for key fits the current window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisRateLimiter is a fixed window counter shared by every replica.
type RedisRateLimiter struct {
	client  *redis.Client
	limit   int64
	window  time.Duration
	prefix  string
	timeout time.Duration
}

// NewRedisRateLimiter allows limit requests per window and key.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:  client,
		limit:   int64(limit),
		window:  window,
		prefix:  "event-service:ratelimit:",
		timeout: 250 * time.Millisecond,
	}
}

// fixedWindowScript increments the window counter and arms its expiry in one
// round trip. A key found without a TTL gets one, so a counter can never
// outlive its window.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// Allow increments the counter for key and reports whether it is within limit.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	counter, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return true, err
	}
	return counter <= l.limit, nil
}

// MemoryRateLimiter keeps a token bucket per key in process memory. It serves
// single instance deployments and the case where Redis is unreachable.
type MemoryRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*bucket
	every     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryRateLimiter allows limit requests per window and key.
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &MemoryRateLimiter{
		limiters: make(map[string]*bucket),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		ttl:      2 * window,
		now:      time.Now,
	}
}

// Allow reports whether key may proceed.
func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.limiters[key]
	if !ok {
		l.evictLocked(now)
		b = &bucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

func (l *MemoryRateLimiter) evictLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.ttl {
		return
	}
	l.lastSweep = now
	for key, b := range l.limiters {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.limiters, key)
		}
	}
}

// RateLimit rejects callers that exceed limiter with 429. Keys combine the
// route with the client IP. Limiter errors fail open.
func RateLimit(limiter RateLimiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Route().Path + ":" + c.IP()
		allowed, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, "60")
			return apperrors.NewTooManyRequests("too many requests, try again later")
		}
		return c.Next()
	}
}
