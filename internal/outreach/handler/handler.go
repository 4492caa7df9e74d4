// Package handler exposes lead chat, email drafting and delivery, and lead
// generation over HTTP.
package handler

import (
	"net/http"

	"leadscope_backend/internal/outreach/service"
	"leadscope_backend/internal/outreach/transport"
	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
	msgInvalidMessageID = "invalid message id"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the outreach routes on the leads group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.GenerateLeads)
	rg.GET("/:id/chat", h.ChatHistory)
	rg.POST("/:id/chat", h.Chat)
	rg.DELETE("/:id/chat/:messageId", h.DeleteChatMessage)
	rg.POST("/:id/email/draft", h.DraftEmail)
	rg.POST("/:id/email/send", h.SendEmail)
	rg.GET("/:id/emails", h.EmailHistory)
}

func (h *Handler) ChatHistory(c *gin.Context) {
	leadID, ok := parseUUIDParam(c, "id", msgInvalidLeadID)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	history, err := h.svc.ChatHistory(c.Request.Context(), leadID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, history)
}

func (h *Handler) Chat(c *gin.Context) {
	leadID, ok := parseUUIDParam(c, "id", msgInvalidLeadID)
	if !ok {
		return
	}
	var req transport.ChatRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	reply, err := h.svc.Chat(c.Request.Context(), leadID, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, reply)
}

func (h *Handler) DeleteChatMessage(c *gin.Context) {
	leadID, ok := parseUUIDParam(c, "id", msgInvalidLeadID)
	if !ok {
		return
	}
	messageID, ok := parseUUIDParam(c, "messageId", msgInvalidMessageID)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteChatMessage(c.Request.Context(), leadID, messageID, identity.UserID())) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DraftEmail(c *gin.Context) {
	leadID, ok := parseUUIDParam(c, "id", msgInvalidLeadID)
	if !ok {
		return
	}
	var req transport.DraftEmailRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	draft, err := h.svc.DraftEmail(c.Request.Context(), leadID, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, draft)
}

func (h *Handler) SendEmail(c *gin.Context) {
	leadID, ok := parseUUIDParam(c, "id", msgInvalidLeadID)
	if !ok {
		return
	}
	var req transport.SendEmailRequest
	if !h.bindJSON(c, &req) {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	logEntry, err := h.svc.SendEmail(c.Request.Context(), leadID, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, logEntry)
}

func (h *Handler) EmailHistory(c *gin.Context) {
	leadID, ok := parseUUIDParam(c, "id", msgInvalidLeadID)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	logs, err := h.svc.EmailHistory(c.Request.Context(), leadID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": logs})
}

func (h *Handler) GenerateLeads(c *gin.Context) {
	var req transport.GenerateLeadsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	generated, err := h.svc.GenerateLeads(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, generated)
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return false
	}
	return true
}

func parseUUIDParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, message, nil)
		return uuid.Nil, false
	}
	return id, true
}
