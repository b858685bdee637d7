package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	// Max requests per window
	Max int
	// Window duration
	Window time.Duration
	// Key generator function
	KeyGenerator func(*fiber.Ctx) string
	// Skip function
	Skip func(*fiber.Ctx) bool
	// Logger receives redis failures
	Logger *zap.Logger
}

// DefaultRateLimitConfig returns default rate limit config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Max:    100,
		Window: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id, ok := GetUserID(c); ok {
				return "user:" + strconv.Itoa(id)
			}
			return "ip:" + c.IP()
		},
		Skip:   HealthSkipper,
		Logger: zap.NewNop(),
	}
}

// RateLimitMiddleware creates a sliding window rate limiter using Redis
type RateLimitMiddleware struct {
	redis  redis.Cmdable
	config RateLimitConfig
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(client redis.Cmdable, config ...RateLimitConfig) *RateLimitMiddleware {
	cfg := DefaultRateLimitConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &RateLimitMiddleware{
		redis:  client,
		config: cfg,
	}
}

// Handler returns the rate limit handler. Redis failures let the request
// through.
func (m *RateLimitMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.config.Skip != nil && m.config.Skip(c) {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s", m.config.KeyGenerator(c))
		now := time.Now()
		window := int64(m.config.Window.Seconds())
		reset := strconv.FormatInt(now.Unix()+window, 10)

		ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
		defer cancel()

		m.redis.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(now.Unix()-window, 10))

		count, err := m.redis.ZCard(ctx, key).Result()
		if err != nil {
			m.config.Logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(m.config.Max))
		c.Set("X-RateLimit-Reset", reset)

		if count >= int64(m.config.Max) {
			c.Set("X-RateLimit-Remaining", "0")
			c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(window, 10))
			return apperrors.RateLimited()
		}

		pipe := m.redis.TxPipeline()
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(now.Unix()),
			Member: fmt.Sprintf("%d:%s", now.UnixNano(), GetRequestID(c)),
		})
		pipe.Expire(ctx, key, m.config.Window*2)
		if _, err := pipe.Exec(ctx); err != nil {
			m.config.Logger.Warn("rate limiter unavailable", zap.Error(err))
		}

		c.Set("X-RateLimit-Remaining", strconv.Itoa(m.config.Max-int(count)-1))

		return c.Next()
	}
}
