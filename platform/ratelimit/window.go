// Package ratelimit provides a Redis-backed fixed window limiter shared by all
// API instances.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Result describes the state of a key's current window.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// Window allows Limit hits per key in each fixed window.
type Window struct {
	rdb    redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewWindow creates a limiter. prefix namespaces keys per use.
func NewWindow(rdb redis.Cmdable, prefix string, limit int, window time.Duration) *Window {
	return &Window{rdb: rdb, prefix: prefix, limit: limit, window: window, now: time.Now}
}

// Allow records a hit for key and reports whether it fits in the window.
func (w *Window) Allow(ctx context.Context, key string) (Result, error) {
	now := w.now()
	bucket := now.UnixNano() / int64(w.window)
	redisKey := fmt.Sprintf("ratelimit:%s:%s:%d", w.prefix, key, bucket)

	pipe := w.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, w.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit %s: %w", w.prefix, err)
	}

	count := int(incr.Val())
	windowEnd := time.Unix(0, (bucket+1)*int64(w.window))
	remaining := w.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= w.limit,
		Limit:     w.limit,
		Remaining: remaining,
		ResetIn:   windowEnd.Sub(now),
	}, nil
}

// Middleware limits requests by the key returned from keyFn. Requests with an
// empty key pass through. Redis failures let the request through and are logged.
func (w *Window) Middleware(keyFn func(*gin.Context) string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		res, err := w.Allow(c.Request.Context(), key)
		if err != nil {
			log.DatabaseError("ratelimit.allow", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			log.RateLimitExceeded(key, c.Request.URL.Path)
			c.Header("Retry-After", strconv.Itoa(int(res.ResetIn.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httpkit.ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
