package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadscope_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newTestWindow(t *testing.T, limit int) (*Window, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clock := time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC)
	w := NewWindow(rdb, "test", limit, time.Hour)
	w.now = func() time.Time { return clock }
	return w, &clock
}

func TestAllowStopsAtLimit(t *testing.T) {
	w, _ := newTestWindow(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := w.Allow(ctx, "key")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("expected hit %d to be allowed", i+1)
		}
	}

	res, err := w.Allow(ctx, "key")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed || res.Remaining != 0 {
		t.Fatalf("expected third hit to be denied, got %+v", res)
	}
	if res.ResetIn != 45*time.Minute {
		t.Fatalf("expected reset in 45m, got %s", res.ResetIn)
	}
}

func TestAllowResetsInNextWindow(t *testing.T) {
	w, clock := newTestWindow(t, 1)
	ctx := context.Background()

	if res, _ := w.Allow(ctx, "key"); !res.Allowed {
		t.Fatalf("expected first hit to be allowed")
	}
	if res, _ := w.Allow(ctx, "key"); res.Allowed {
		t.Fatalf("expected second hit to be denied")
	}

	*clock = clock.Add(time.Hour)
	if res, _ := w.Allow(ctx, "key"); !res.Allowed {
		t.Fatalf("expected hit in next window to be allowed")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	w, _ := newTestWindow(t, 1)
	ctx := context.Background()

	if res, _ := w.Allow(ctx, "a"); !res.Allowed {
		t.Fatalf("expected key a to be allowed")
	}
	if res, _ := w.Allow(ctx, "b"); !res.Allowed {
		t.Fatalf("expected key b to be allowed")
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w, _ := newTestWindow(t, 1)

	r := gin.New()
	r.GET("/", w.Middleware(func(c *gin.Context) string { return "caller" }, logger.Discard()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", first.Code)
	}
	if first.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected remaining 0, got %q", first.Header().Get("X-RateLimit-Remaining"))
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}
