package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ClientLimiters holds one token bucket per client IP. Buckets idle for longer
// than the idle TTL are evicted, so the set stays bounded by recent clients.
type ClientLimiters struct {
	every   rate.Limit
	burst   int
	mu      sync.Mutex
	buckets *cache.Cache
}

// NewClientLimiters allows perMinute requests per IP with the given burst. A
// non-positive idle derives the TTL from the time a drained bucket needs to
// refill, so eviction never grants more than a full bucket would.
func NewClientLimiters(perMinute, burst int, idle time.Duration) *ClientLimiters {
	if burst <= 0 {
		burst = 1
	}
	interval := time.Minute / time.Duration(perMinute)
	if idle <= 0 {
		idle = max(time.Duration(burst)*interval, time.Minute)
	}
	return &ClientLimiters{
		every:   rate.Every(interval),
		burst:   burst,
		buckets: cache.New(idle, idle),
	}
}

// Allow spends one token from ip's bucket and refreshes its idle deadline.
func (l *ClientLimiters) Allow(ip string) bool {
	l.mu.Lock()
	var lim *rate.Limiter
	if v, ok := l.buckets.Get(ip); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(l.every, l.burst)
	}
	l.buckets.SetDefault(ip, lim)
	l.mu.Unlock()
	return lim.Allow()
}

// Tracked returns the number of buckets currently held.
func (l *ClientLimiters) Tracked() int {
	return l.buckets.ItemCount()
}

// RateLimit limits each client IP to perMinute requests with the given burst.
// A non-positive perMinute disables limiting.
func RateLimit(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return RateLimitWith(NewClientLimiters(perMinute, burst, 0))
}

// RateLimitWith rejects requests once the caller's bucket in limiters is empty.
func RateLimitWith(limiters *ClientLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiters.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   gin.H{"code": "RATE_LIMITED", "message": "too many uploads; try again later"},
			})
			return
		}
		c.Next()
	}
}
