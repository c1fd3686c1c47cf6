package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fitspace-backend/pkg/logger"
	"fitspace-backend/pkg/metrics"
	"fitspace-backend/pkg/response"
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// tokenBucket refills at rate tokens/s up to capacity and takes one token per
// request. Bucket state is {last_refill, tokens}; it expires once idle long
// enough to be full again.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', now, 'tokens', tokens)
redis.call('EXPIRE', key, ttl)
return allowed
`)

// RateLimiter is a per-client, per-route token bucket kept in Redis.
type RateLimiter struct {
	client  redis.Scripter
	config  RateLimiterConfig
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter. m may be nil.
func NewRateLimiter(client redis.Scripter, config RateLimiterConfig, log *zap.Logger, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		client:  client,
		config:  config,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

func (rl *RateLimiter) ttlSeconds() int {
	ttl := int(float64(rl.config.BurstCapacity)/rl.config.RequestsPerSecond) + 1
	if ttl < 60 {
		ttl = 60
	}
	return ttl
}

// Middleware returns the gin handler. Redis errors let the request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || !rl.config.Enabled || rl.client == nil {
			c.Next()
			return
		}

		r := route(c)
		clientIP := c.ClientIP()
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, r, clientIP)
		now := float64(rl.now().UnixMilli()) / 1000

		allowed, err := tokenBucket.Run(c.Request.Context(), rl.client, []string{key},
			rl.config.RequestsPerSecond,
			rl.config.BurstCapacity,
			now,
			rl.ttlSeconds(),
		).Int64()
		if err != nil {
			logger.WithContext(c.Request.Context(), rl.log).Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("route", r),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if allowed == 0 {
			logger.WithContext(c.Request.Context(), rl.log).Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("route", r),
			)
			rl.metrics.RateLimit(r)
			response.AbortWithError(c, http.StatusTooManyRequests, "Rate limit exceeded",
				fmt.Sprintf("%.2f requests/second (burst capacity: %d)", rl.config.RequestsPerSecond, rl.config.BurstCapacity))
			return
		}

		c.Next()
	}
}
