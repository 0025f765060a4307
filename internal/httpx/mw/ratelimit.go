package mw

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"jrm-intake-api/internal/redisx"
)

var incrScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then redis.call('PEXPIRE', KEYS[1], ARGV[1]) end
return current`)

// RateLimiter limits requests per ip+subject over a fixed window. Counters
// live in Redis when a client is given, in process memory otherwise. Limits
// can be changed at runtime with Update.
type RateLimiter struct {
	rdb *redisx.Client
	h   atomic.Pointer[fiber.Handler]
}

// NewRateLimiter builds a limiter allowing max requests per windowSec.
// max <= 0 disables limiting.
func NewRateLimiter(rdb *redisx.Client, max, windowSec int) *RateLimiter {
	rl := &RateLimiter{rdb: rdb}
	rl.Update(max, windowSec)
	return rl
}

// Handler returns the middleware. It always delegates to the latest limits.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return (*rl.h.Load())(c)
	}
}

// Update swaps in new limits. In-memory counters start over.
func (rl *RateLimiter) Update(max, windowSec int) {
	windowSec = lo.Ternary(windowSec > 0, windowSec, 60)
	var h fiber.Handler
	switch {
	case max <= 0:
		h = func(c *fiber.Ctx) error { return c.Next() }
	case rl.rdb == nil:
		h = limiter.New(limiter.Config{
			Max:          max,
			Expiration:   time.Duration(windowSec) * time.Second,
			KeyGenerator: rateKey,
			LimitReached: func(_ *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
			},
		})
	default:
		h = redisLimiter(rl.rdb, max, windowSec)
	}
	rl.h.Store(&h)
}

func rateKey(c *fiber.Ctx) string {
	return fmt.Sprintf("ip:%s|sub:%s", c.IP(), Subject(c))
}

func redisLimiter(rdb *redisx.Client, limit, windowSec int) fiber.Handler {
	ttlMs := int64(windowSec) * 1000
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 200*time.Millisecond)
		defer cancel()
		res, err := incrScript.Run(ctx, rdb, []string{"rl:" + rateKey(c)}, ttlMs).Result()
		if err != nil {
			// fail open
			return c.Next()
		}
		n, _ := res.(int64)
		c.Set("X-RateLimit-Limit", fmt.Sprint(limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprint(lo.Max([]int64{0, int64(limit) - n})))
		if n > int64(limit) {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprint(windowSec))
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
