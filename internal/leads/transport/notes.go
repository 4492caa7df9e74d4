package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateLeadNoteRequest struct {
	Body        string `json:"body" validate:"notblank,max=5000"`
	Type        string `json:"type" validate:"omitempty,oneof=general call meeting email"`
	IsImportant bool   `json:"is_important"`
}

type LeadNoteResponse struct {
	ID          uuid.UUID `json:"id"`
	LeadID      uuid.UUID `json:"lead_id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Type        string    `json:"type"`
	Body        string    `json:"body"`
	IsImportant bool      `json:"is_important"`
	CreatedAt   time.Time `json:"created_at"`
}

type LeadNotesResponse struct {
	Items []LeadNoteResponse `json:"items"`
}
