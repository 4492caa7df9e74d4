// Package apikeys manages per-user keys for the public lead API.
package apikeys

import (
	apphttp "leadscope_backend/internal/http"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the apikeys bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(repo, val),
		repo:    repo,
	}
}

func (m *Module) Name() string {
	return "apikeys"
}

// PublicMiddleware builds the guard for the public API group.
func (m *Module) PublicMiddleware(rdb redis.Cmdable, limit int, log *logger.Logger) []gin.HandlerFunc {
	return PublicMiddleware(m.repo, rdb, limit, log)
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	keys := ctx.Protected.Group("/keys")
	keys.GET("", m.handler.HandleListAPIKeys)
	keys.POST("", m.handler.HandleCreateAPIKey)
	keys.POST("/:id/revoke", m.handler.HandleRevokeAPIKey)
}

var _ apphttp.Module = (*Module)(nil)
var _ Store = (*Repository)(nil)
