// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"leadscope_backend/internal/auth/handler"
	"leadscope_backend/internal/auth/repository"
	"leadscope_backend/internal/auth/service"
	"leadscope_backend/internal/events"
	apphttp "leadscope_backend/internal/http"
	"leadscope_backend/platform/config"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Directory returns the user directory for other domains.
func (m *Module) Directory() Directory {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	m.handler.RegisterUserRoutes(ctx.Protected)
}

// Compile-time checks
var (
	_ apphttp.Module = (*Module)(nil)
	_ Directory      = (*service.Service)(nil)
)
