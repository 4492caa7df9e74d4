// Package outreach provides lead conversations and outreach email: an AI
// assistant per lead, AI-drafted emails, SMTP delivery with an audit log, and
// AI lead generation.
package outreach

import (
	"context"

	"leadscope_backend/internal/email"
	"leadscope_backend/internal/events"
	apphttp "leadscope_backend/internal/http"
	"leadscope_backend/internal/leads"
	"leadscope_backend/internal/outreach/drafter"
	"leadscope_backend/internal/outreach/handler"
	"leadscope_backend/internal/outreach/repository"
	"leadscope_backend/internal/outreach/service"
	"leadscope_backend/platform/config"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the outreach bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the outreach module. Without a Gemini key the AI routes
// answer 503 and email delivery still works.
func NewModule(ctx context.Context, pool *pgxpool.Pool, leadSvc leads.Service, sender email.Sender, eventBus events.Bus, val *validator.Validator, cfg config.AIConfig, log *logger.Logger) (*Module, error) {
	var d *drafter.Drafter
	if cfg.IsAIEnabled() {
		model, err := drafter.NewGeminiModel(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
		if err != nil {
			return nil, err
		}
		d = drafter.New(model)
	} else {
		log.Warn("GEMINI_API_KEY not set, AI outreach features disabled")
	}

	svc := service.New(leadSvc, repository.New(pool), d, sender, eventBus, log)
	return &Module{handler: handler.New(svc, val)}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "outreach"
}

// RegisterRoutes mounts outreach routes under the protected leads group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
