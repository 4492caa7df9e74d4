// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"leadscope_backend/platform/config"
	"leadscope_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	// Engine is the root Gin engine, used for pages served outside /api.
	Engine *gin.Engine
	// V1 is the unauthenticated /api/v1 group.
	V1 *gin.RouterGroup
	// Protected is the JWT-authenticated group under /api/v1.
	Protected *gin.RouterGroup
	// Public is the API-key-authenticated group under /api/v1/public.
	Public *gin.RouterGroup
	// Config is the JWT configuration for auth middleware.
	Config config.JWTConfig
	// AuthMiddleware validates access tokens. Page routes on Engine use it directly.
	AuthMiddleware gin.HandlerFunc
	// AuthRateLimiter is the stricter rate limiter for auth routes.
	AuthRateLimiter *httpkit.AuthRateLimiter
}
