package crm

import (
	apphttp "leadscope_backend/internal/http"
	"leadscope_backend/internal/leads"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"
)

// Module is the crm bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

func NewModule(leadSvc leads.Service, svc *Service, queue Enqueuer, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(leadSvc, svc, queue, val, log)}
}

func (m *Module) Name() string {
	return "crm"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
