package middleware

import (
	"math"     // Retry-After rounding
	"net/http" // HTTP status codes
	"strconv"  // Header formatting
	"sync"     // Limiter map guard
	"time"     // Windows and idle eviction

	"music_library/internal/utils" // Redis counters and response helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"golang.org/x/time/rate"       // Token buckets
)

// RedisRateLimit allows limit requests per window for each client IP. Counts
// live in Redis so every server instance shares the same budget.
func RedisRateLimit(rdb *redis.Client, name string, limit int64, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + name + ":" + c.ClientIP()
		n, ttl, err := utils.IncrWindow(c.Request.Context(), rdb, key, window)
		if err != nil {
			// Limiting is best effort, a Redis outage must not take the API down
			logrus.WithFields(logrus.Fields{
				"limiter": name,        // Limiter name
				"error":   err.Error(), // Error message
			}).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(limit-n, 0), 10))
		if n > limit {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			utils.AbortFail(c, http.StatusTooManyRequests, message)
			return
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPLimiter is an in-process token bucket per client IP
type IPLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idle      time.Duration // Buckets unused this long are dropped
	lastSweep time.Time
	now       func() time.Time
}

// NewIPLimiter allows perMinute requests per minute for each IP, in bursts of up to perMinute
func NewIPLimiter(perMinute int) *IPLimiter {
	return &IPLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idle:     3 * time.Minute,
		now:      time.Now,
	}
}

// Allow reports whether the IP may make another request now
func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idle {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idle {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Middleware rejects requests from IPs that ran out of tokens
func (l *IPLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			utils.AbortFail(c, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}
