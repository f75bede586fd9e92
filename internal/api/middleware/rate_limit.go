package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"course-ops/backend/pkg/redis"
	"course-ops/backend/pkg/response"
)

const rateLimitPrefix = "course-ops:rate_limit:"

// RateLimit is a sliding-window limiter per caller and route. Authenticated
// callers are counted by user id, login and refresh by client IP.
// A nil rdb or a redis failure lets the request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(window.Seconds())))

	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), rateLimitKey(c), limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", retryAfter)
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

func rateLimitKey(c *gin.Context) string {
	if uid := c.GetString("user_id"); uid != "" {
		return rateLimitPrefix + "user:" + uid + ":" + c.FullPath()
	}
	return rateLimitPrefix + "ip:" + c.ClientIP() + ":" + c.FullPath()
}
