package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"video-transcript/internal/api/errors"
)

// RateLimitConfig bounds acquisition requests per client IP over a fixed
// window. Defaults match the documented public limit of 50 requests per
// hour.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// DefaultRateLimitConfig returns the standard acquisition limit.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  50,
		Window: time.Hour,
	}
}

// RateLimit returns a fixed-window limiter keyed by client IP, backed by
// redis so the count is shared across instances. A nil client disables
// limiting entirely; a redis outage fails open rather than rejecting
// traffic.
func RateLimit(client *redis.Client, config RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if client == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if config.Limit <= 0 {
		config = DefaultRateLimitConfig()
	}

	return func(c *gin.Context) {
		window := time.Now().Unix() / int64(config.Window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), window)

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable, failing open", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), key, config.Window)
		}

		if count > int64(config.Limit) {
			HandleError(c, errors.NewRateLimitedError(
				fmt.Sprintf("rate limit of %d requests per %s exceeded", config.Limit, config.Window)))
			return
		}
		c.Next()
	}
}
