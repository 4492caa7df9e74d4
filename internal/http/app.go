// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"leadscope_backend/platform/config"
	"leadscope_backend/platform/events"
	"leadscope_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// main.go populates it and hands it to the router.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health is pinged by /api/health.
	Health   HealthChecker
	EventBus events.Bus
	// PublicMiddleware guards /api/v1/public (API key auth, quota).
	PublicMiddleware []gin.HandlerFunc
	Modules          []Module
}
