package auth

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fixflow/repair-service/internal/config"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// LoginRateLimiter applies a fixed-window counter per client IP to the auth
// perimeter. Fails open when redis is unreachable: throttling is protection,
// not a dependency.
func LoginRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) fiber.Handler {
	if !cfg.Enabled || rdb == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	window := cfg.AuthWindow()
	max := int64(cfg.AuthMax)
	if max <= 0 {
		max = 5
	}

	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:auth:%s", c.IP())
		ctx := c.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				logger.Warn("rate limiter expire failed", zap.Error(err))
			}
		}
		if count > max {
			return apperrors.NewDomainError(
				"RATE_LIMITED",
				"too many authentication attempts, please try again later",
				http.StatusTooManyRequests,
				nil,
			)
		}
		return c.Next()
	}
}
