// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"leadscope_backend/internal/events"
	apphttp "leadscope_backend/internal/http"
	"leadscope_backend/internal/leads/handler"
	"leadscope_backend/internal/leads/management"
	"leadscope_backend/internal/leads/notes"
	"leadscope_backend/internal/leads/repository"
	"leadscope_backend/internal/leads/scraper"
	"leadscope_backend/platform/config"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies are the collaborators the leads module borrows from other domains.
// Archiver and Users may be nil.
type Dependencies struct {
	Archiver handler.ExportArchiver
	Users    handler.UserDirectory
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler      *handler.Handler
	notesHandler *handler.NotesHandler
	importExport *handler.ImportExportHandler
	scrape       *handler.ScrapeHandler
	dashboard    *handler.DashboardHandler
	public       *PublicService
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.LeadsConfig, deps Dependencies, log *logger.Logger) (*Module, error) {
	if err := management.RegisterValidations(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)

	mgmtSvc := management.New(repo, eventBus, val, cfg.GetLeadsPerPage())
	notesSvc := notes.New(repo)
	pageScraper := scraper.New(cfg.GetScraperTimeout(), log)

	return &Module{
		handler:      handler.New(mgmtSvc, val),
		notesHandler: handler.NewNotesHandler(notesSvc, val),
		importExport: handler.NewImportExportHandler(mgmtSvc, val, deps.Archiver, cfg.GetMaxUploadBytes()),
		scrape:       handler.NewScrapeHandler(pageScraper, mgmtSvc, val),
		dashboard:    handler.NewDashboardHandler(mgmtSvc, deps.Users, val, log),
		public:       NewPublicService(repo),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// PublicService returns the cross-domain lead service.
func (m *Module) PublicService() *PublicService {
	return m.public
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
	m.notesHandler.RegisterRoutes(leadsGroup)
	m.importExport.RegisterRoutes(leadsGroup)
	m.scrape.RegisterRoutes(leadsGroup)

	m.handler.RegisterPublicRoutes(ctx.Public.Group("/leads"))
	m.dashboard.RegisterRoutes(ctx.Engine, ctx.AuthMiddleware)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
