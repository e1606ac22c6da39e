package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/redis/go-redis/v9"

	"github.com/imedbrahmi/hospital_backend/config"
	redispkg "github.com/imedbrahmi/hospital_backend/pkg/redis"
)

const (
	MsgTooManyRequests = "Too many requests, please try again later"
	MsgTooManyLogins   = "Too many login attempts, please try again later"
)

func window(cfg config.RateLimitConfig, max int, expiration time.Duration) (int, time.Duration) {
	if cfg.Max > 0 {
		max = cfg.Max
	}
	if cfg.WindowSeconds > 0 {
		expiration = time.Duration(cfg.WindowSeconds) * time.Second
	}
	return max, expiration
}

func reached(msg string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "message": msg})
	}
}

// NewLimiterWithRedis is the global sliding-window limiter. A nil client
// keeps counters in memory.
func NewLimiterWithRedis(rdb *redis.Client, cfg config.RateLimitConfig) fiber.Handler {
	max, exp := window(cfg, 100, time.Minute)
	lc := limiter.Config{
		Max:               max,
		Expiration:        exp,
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached:      reached(MsgTooManyRequests),
	}
	if rdb != nil {
		lc.Storage = redispkg.NewFiberStorage(rdb)
	}
	return limiter.New(lc)
}

// LoginLimiter throttles credential attempts per client IP.
func LoginLimiter(rdb *redis.Client, cfg config.RateLimitConfig) fiber.Handler {
	max, exp := window(cfg, 5, 15*time.Minute)
	lc := limiter.Config{
		Max:        max,
		Expiration: exp,
		KeyGenerator: func(c fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimiterMiddleware: limiter.SlidingWindow{},
		LimitReached:      reached(MsgTooManyLogins),
	}
	if rdb != nil {
		lc.Storage = redispkg.NewFiberStorage(rdb)
	}
	return limiter.New(lc)
}
