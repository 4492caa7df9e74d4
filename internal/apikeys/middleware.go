package apikeys

import (
	"net/http"
	"time"

	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// HeaderAPIKey carries the plaintext key on public API requests.
const HeaderAPIKey = "X-API-Key"

// APIKeyAuthMiddleware resolves the X-API-Key header to its owner and sets
// the same identity keys the JWT middleware sets.
func APIKeyAuthMiddleware(repo Store, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		plaintext := c.GetHeader(HeaderAPIKey)
		if plaintext == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpkit.ErrorResponse{Error: "missing API key"})
			return
		}

		key, err := repo.GetAPIKeyByHash(c.Request.Context(), HashKey(plaintext))
		if err != nil {
			log.AuthEvent("api_key", "", false, err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, httpkit.ErrorResponse{Error: "invalid API key"})
			return
		}

		repo.TouchAPIKey(c.Request.Context(), key.ID)
		c.Set(httpkit.ContextUserIDKey, key.UserID)
		c.Set(httpkit.ContextAPIKeyIDKey, key.ID)
		c.Next()
	}
}

// PublicMiddleware returns the chain guarding /api/v1/public: key auth
// followed by an hourly per-key quota. A nil rdb disables the quota.
func PublicMiddleware(repo Store, rdb redis.Cmdable, limit int, log *logger.Logger) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{APIKeyAuthMiddleware(repo, log)}
	if rdb == nil || limit <= 0 {
		return chain
	}
	window := ratelimit.NewWindow(rdb, "apikey", limit, time.Hour)
	return append(chain, window.Middleware(apiKeyIDFromContext, log))
}

func apiKeyIDFromContext(c *gin.Context) string {
	raw, ok := c.Get(httpkit.ContextAPIKeyIDKey)
	if !ok {
		return ""
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return ""
	}
	return id.String()
}
