package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// IssueRateLimiter caps how many issues one user may create per window.
// Counts live in redis so the limit holds across replicas.
type IssueRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewIssueRateLimiter builds a per-user limiter with a 24h window.
func NewIssueRateLimiter(rdb *redis.Client, limit int) *IssueRateLimiter {
	return &IssueRateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: 24 * time.Hour,
		prefix: "issue-limit",
	}
}

// Middleware must run after RequireAuth.
func (rl *IssueRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "User not authenticated",
			})
			return
		}

		ctx := c.Request.Context()
		key := rl.prefix + ":" + userID

		count, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false, "message": "Something went wrong",
			})
			return
		}

		// first increment opens the window
		if count == 1 {
			if err := rl.rdb.Expire(ctx, key, rl.window).Err(); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false, "message": "Something went wrong",
				})
				return
			}
		}

		if count > int64(rl.limit) {
			retryAfter, _ := rl.rdb.TTL(ctx, key).Result()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     "Daily issue limit reached",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
