package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-console-navigator/internal/observability"
)

// idleBucketTTL is how long an unused bucket survives; a bucket idle that
// long is full again anyway.
const idleBucketTTL = 10 * time.Minute

// KeyFunc maps a request to the identity whose bucket it draws from.
type KeyFunc func(*gin.Context) string

// KeyByClient buckets by ClientID: the ContextKeyClientID value, the
// X-Client-ID header, or the client IP.
func KeyByClient() KeyFunc {
	return func(c *gin.Context) string {
		return "client:" + ClientID(c)
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token bucket per key. The API uses one for
// all routes and a much stricter one for uploads, since a load rebuilds the
// whole index.
type RateLimiter struct {
	name  string
	rps   rate.Limit
	burst int
	key   KeyFunc
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// NewRateLimiter refills rps tokens per second up to burst (at least 1).
// name labels the navigator_rate_limited_total series.
func NewRateLimiter(name string, rps float64, burst int, key KeyFunc) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		name:    name,
		rps:     rate.Limit(rps),
		burst:   burst,
		key:     key,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// limiter returns the bucket for key, sweeping idle buckets at most once
// per idleBucketTTL.
func (rl *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= idleBucketTTL {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= idleBucketTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.rps, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// IsRateBypass reports whether IdempotencyValidator flagged the request as a
// replay, which costs no tokens.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyRateBypass).(bool)
	return b
}

// Handler rejects requests over the limit with 429 and a Retry-After of
// whole seconds until the next token.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}
		now := rl.now()
		lim := rl.limiter(rl.key(c), now)
		if lim.AllowN(now, 1) {
			c.Next()
			return
		}

		observability.RateLimited.WithLabelValues(rl.name).Inc()
		c.Header("Retry-After", strconv.Itoa(retryAfter(lim, now)))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}

// retryAfter is the wait for one token, rounded up, at least 1s. A limiter
// that never refills reports idleBucketTTL.
func retryAfter(lim *rate.Limiter, now time.Time) int {
	if lim.Limit() == 0 {
		return int(idleBucketTTL.Seconds())
	}
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return int(idleBucketTTL.Seconds())
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	if d == rate.InfDuration {
		return int(idleBucketTTL.Seconds())
	}
	return max(1, int(math.Ceil(d.Seconds())))
}
