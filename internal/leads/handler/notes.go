package handler

import (
	"net/http"

	"leadscope_backend/internal/leads/notes"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotesHandler handles HTTP requests for lead notes.
type NotesHandler struct {
	svc *notes.Service
	val *validator.Validator
}

// NewNotesHandler creates a new notes handler.
func NewNotesHandler(svc *notes.Service, val *validator.Validator) *NotesHandler {
	return &NotesHandler{svc: svc, val: val}
}

// RegisterRoutes mounts the note routes on the leads group.
func (h *NotesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/notes", h.ListNotes)
	rg.POST("/:id/notes", h.AddNote)
	rg.DELETE("/:id/notes/:noteId", h.DeleteNote)
}

func (h *NotesHandler) ListNotes(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	notesList, err := h.svc.List(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, notesList)
}

func (h *NotesHandler) AddNote(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.CreateLeadNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	created, err := h.svc.Add(c.Request.Context(), id, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, created)
}

func (h *NotesHandler) DeleteNote(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}
	noteID, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid note id", nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, noteID, identity.UserID()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
