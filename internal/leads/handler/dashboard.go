package handler

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"leadscope_backend/internal/leads/management"
	"leadscope_backend/internal/leads/render"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//go:embed static/*
var staticFiles embed.FS

// UserDirectory resolves the display name of a user.
type UserDirectory interface {
	Username(ctx context.Context, id uuid.UUID) (string, error)
}

// DashboardHandler serves the lead dashboard page and its incremental pages.
type DashboardHandler struct {
	mgmt  *management.Service
	users UserDirectory
	val   *validator.Validator
	log   *logger.Logger
}

// NewDashboardHandler creates a dashboard handler. users may be nil.
func NewDashboardHandler(mgmt *management.Service, users UserDirectory, val *validator.Validator, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{mgmt: mgmt, users: users, val: val, log: log}
}

// RegisterRoutes mounts GET /dashboard behind auth and the static loader script.
func (h *DashboardHandler) RegisterRoutes(engine *gin.Engine, auth gin.HandlerFunc) {
	engine.GET("/dashboard", auth, h.Dashboard)

	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	engine.StaticFS("/static", http.FS(sub))
}

// Dashboard renders the full page, or with ajax=1 the next page as JSON.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	req, ok := bindListRequest(c, h.val)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	ctx := c.Request.Context()

	if req.Ajax == "1" {
		result, err := h.mgmt.Page(ctx, identity.UserID(), req)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, result)
		return
	}

	currentPage, preload, err := h.mgmt.Preload(ctx, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	stats, err := h.mgmt.Stats(ctx, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	data := render.DashboardData{
		Username:    h.username(ctx, identity.UserID()),
		Stats:       stats,
		Filters:     req,
		Leads:       preload.Leads,
		CurrentPage: currentPage,
		HasMore:     preload.HasMore,
	}
	if data.Leads == nil {
		data.Leads = []transport.LeadSummary{}
	}

	printer := render.Printer(render.ResolveTag(c.GetHeader("Accept-Language")))
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := render.NewHTML(printer).Dashboard(data).Render(ctx, c.Writer); err != nil {
		h.log.Error("dashboard render failed", "error", err)
	}
}

func (h *DashboardHandler) username(ctx context.Context, id uuid.UUID) string {
	if h.users == nil {
		return ""
	}
	name, err := h.users.Username(ctx, id)
	if err != nil {
		h.log.Warn("dashboard username lookup failed", "error", err)
		return ""
	}
	return name
}
