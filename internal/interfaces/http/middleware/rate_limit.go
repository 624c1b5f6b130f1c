// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const rateLimitWindow = time.Minute

// Counter counts hits on a key within a window
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter is a fixed window counter kept in Redis
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a Redis backed counter
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Hit increments the key and starts its window on the first hit
func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// RateLimit limits requests per client per minute. Signed-in users are counted
// per account, others per IP. Requests pass when the counter is unavailable.
func RateLimit(limit int, counter Counter, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:ip:%s", c.ClientIP())
		if userID, ok := GetUserIDFromContext(c); ok {
			key = fmt.Sprintf("rate_limit:user:%d", userID)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		current, err := counter.Hit(ctx, key, rateLimitWindow)
		if err != nil {
			logger.WithError(err).Warn("Rate limiter unavailable")
			c.Next()
			return
		}

		remaining := int64(limit) - current
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		// Check if limit exceeded
		if current > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(rateLimitWindow.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
