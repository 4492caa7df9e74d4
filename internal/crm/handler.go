package crm

import (
	"errors"
	"net/http"

	"leadscope_backend/internal/leads"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SyncRequest names the CRMs to push to. Repeated targets are folded.
type SyncRequest struct {
	Targets []string `json:"targets" validate:"required,min=1,dive,oneof=salesforce hubspot"`
}

type SyncResponse struct {
	Queued  []string          `json:"queued"`
	Synced  map[string]string `json:"synced,omitempty"`
	Skipped []string          `json:"skipped"`
}

// Handler serves the per-lead sync endpoint.
type Handler struct {
	leads leads.Service
	svc   *Service
	queue Enqueuer
	val   *validator.Validator
	log   *logger.Logger
}

// NewHandler creates the handler. queue may be nil; pushes then run inline.
func NewHandler(leadSvc leads.Service, svc *Service, queue Enqueuer, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{leads: leadSvc, svc: svc, queue: queue, val: val, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/sync", h.SyncLead)
}

func (h *Handler) SyncLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", validator.Fields(err))
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.leads.GetLead(ctx, leadID, identity.UserID()); err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			err = apperr.NotFound("lead not found")
		}
		httpkit.HandleError(c, err)
		return
	}

	resp := SyncResponse{Queued: []string{}, Skipped: []string{}}
	enabled := make([]string, 0, len(req.Targets))
	for _, name := range dedupe(req.Targets) {
		if !h.svc.Enabled(name) {
			h.log.Warn("crm target not configured, skipping", "target", name, "lead_id", leadID)
			resp.Skipped = append(resp.Skipped, name)
			continue
		}
		enabled = append(enabled, name)
	}

	if h.queue == nil {
		synced, err := h.svc.SyncAll(ctx, leadID, enabled)
		if httpkit.HandleError(c, err) {
			return
		}
		resp.Synced = synced
		httpkit.OK(c, resp)
		return
	}

	for _, name := range enabled {
		if err := h.queue.EnqueueCRMSync(ctx, leadID, name); err != nil {
			h.log.ExternalCallFailed("asynq", "enqueue_crm_sync", err)
			httpkit.HandleError(c, apperr.Unavailable("job queue unavailable"))
			return
		}
		resp.Queued = append(resp.Queued, name)
	}
	httpkit.JSON(c, http.StatusAccepted, resp)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
