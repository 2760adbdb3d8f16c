package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const rateLimitWindow = time.Minute

// RateLimit allows limit requests per client IP per minute using a fixed
// Redis window. When Redis is unavailable requests are let through.
func RateLimit(limit int, redisClient *redis.Client, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		window := time.Now().Truncate(rateLimitWindow)
		key := fmt.Sprintf("rate_limit:%s:%d", c.ClientIP(), window.Unix())

		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			if err := redisClient.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
				logger.WithError(err).Warn("Failed to set rate limit expiry")
			}
		}

		remaining := int64(limit) - count
		if remaining < 0 {
			remaining = 0
		}
		reset := window.Add(rateLimitWindow)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > int64(limit) {
			rateLimitedTotal.Inc()
			c.Header("Retry-After", strconv.Itoa(int(time.Until(reset).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
