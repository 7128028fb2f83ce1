package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// RateLimiter limits requests per client IP. Counters live in Redis when a
// client is given, otherwise in memory.
func RateLimiter(perMinute int64, rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  perMinute,
	}

	var store limiter.Store = memory.NewStore()
	if rdb != nil {
		s, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "donor_backoffice_limiter"})
		if err != nil {
			logger.Warn("redis rate limit store unavailable, using memory store", zap.Error(err))
		} else {
			store = s
		}
	}

	instance := limiter.New(store, rate, limiter.WithTrustForwardHeader(true))
	return ginlimiter.NewMiddleware(instance)
}
