package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window counter kept in Redis, so every API replica
// shares the same budget.
type RateLimiter struct {
	Redis  *redis.Client
	Prefix string
	Limit  int // requests per window, 0 disables
	Window time.Duration
	Log    *zap.SugaredLogger
}

func NewRateLimiter(r *redis.Client, prefix string, limit int, window time.Duration, log *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{Redis: r, Prefix: prefix, Limit: limit, Window: window, Log: log}
}

// ByIP limits by client address.
func (r *RateLimiter) ByIP() fiber.Handler {
	return r.MiddlewareByKey(func(c *fiber.Ctx) string { return c.IP() })
}

func (r *RateLimiter) MiddlewareByKey(keyFunc func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r.Limit <= 0 {
			return c.Next()
		}
		ctx := c.UserContext()
		redisKey := r.key(keyFunc(c))

		count, err := r.Redis.Incr(ctx, redisKey).Result()
		if err != nil {
			// a Redis outage must not take uploads down with it
			r.Log.Warnw("rate limiter unavailable, letting request through", "key", redisKey, "err", err)
			return c.Next()
		}
		if count == 1 {
			if err := r.Redis.Expire(ctx, redisKey, r.Window).Err(); err != nil {
				r.Log.Warnw("rate limiter window not set", "key", redisKey, "err", err)
			}
		}
		if count > int64(r.Limit) {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(r.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many uploads, try again later"})
		}
		return c.Next()
	}
}

func (r *RateLimiter) key(k string) string {
	return fmt.Sprintf("%s:%s", r.Prefix, k)
}
