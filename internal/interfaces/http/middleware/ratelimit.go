package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/channelsync/internal/shared/constants"
	"github.com/orris-inc/channelsync/internal/shared/logger"
	"github.com/orris-inc/channelsync/internal/shared/utils"
)

// RateLimiter provides Redis-backed IP rate limiting using a fixed-window counter.
// Each IP gets a counter key per route with TTL equal to the window duration,
// so all instances sharing the Redis see the same counts.
type RateLimiter struct {
	redisClient *redis.Client
	limit       int
	window      time.Duration
	now         func() time.Time
	logger      logger.Interface
}

// NewRateLimiter creates a new Redis-backed rate limiter. A nil client
// disables limiting.
func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, logger logger.Interface) *RateLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RateLimiter{
		redisClient: redisClient,
		limit:       limit,
		window:      window,
		now:         time.Now,
		logger:      logger,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP and route.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.redisClient == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		windowBucket := rl.now().Unix() / int64(rl.window.Seconds())
		key := fmt.Sprintf("%s%s:%s:%d", constants.RedisPrefixRateLimit, c.FullPath(), c.ClientIP(), windowBucket)
		ctx := c.Request.Context()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down must not take the OAuth routes with it.
			rl.logger.Warnw("rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		if count == 1 {
			rl.redisClient.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			utils.ErrorResponse(c, http.StatusTooManyRequests, constants.ErrMsgRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
