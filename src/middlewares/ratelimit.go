package middlewares

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"rbs/src/lib"

	"github.com/gin-gonic/gin"
)

// RateLimit applies a fixed window per client IP backed by redis. The
// counter key expires with the window, so a restart never leaves a client
// locked out. On redis trouble the request is let through.
func RateLimit(max int64, window time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rd := lib.GetRedisClient()
		if rd == nil {
			return
		}
		key := fmt.Sprintf("ratelimit:%s:%s", ctx.FullPath(), ctx.ClientIP())
		count, err := rd.Incr(context.Background(), key).Result()
		if err != nil {
			log.Printf("[ratelimit] error incrementing %s: %s\n", key, err.Error())
			return
		}
		if count == 1 {
			rd.Expire(context.Background(), key, window)
		}
		if count > max {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
		}
	}
}
