// Package notes handles lead note operations.
package notes

import (
	"context"
	"errors"
	"strings"

	"leadscope_backend/internal/leads/repository"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/sanitize"

	"github.com/google/uuid"
)

// ValidNoteTypes defines the allowed note types.
var ValidNoteTypes = map[string]bool{
	"general": true,
	"call":    true,
	"meeting": true,
	"email":   true,
}

const maxNoteLength = 5000

// Repository defines the data access interface needed by the notes service.
type Repository interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (repository.Lead, error)
	repository.NoteStore
}

// Service handles lead note operations.
type Service struct {
	repo Repository
}

// New creates a new notes service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add adds a note to one of the user's leads.
func (s *Service) Add(ctx context.Context, leadID, userID uuid.UUID, req transport.CreateLeadNoteRequest) (transport.LeadNoteResponse, error) {
	body := sanitize.Text(req.Body)
	if body == "" || len(body) > maxNoteLength {
		return transport.LeadNoteResponse{}, apperr.Validation("note body must be between 1 and 5000 characters")
	}

	noteType := strings.TrimSpace(req.Type)
	if noteType == "" {
		noteType = "general"
	}
	if !ValidNoteTypes[noteType] {
		return transport.LeadNoteResponse{}, apperr.Validation("invalid note type")
	}

	if err := s.ensureLead(ctx, leadID, userID); err != nil {
		return transport.LeadNoteResponse{}, err
	}

	note, err := s.repo.CreateNote(ctx, repository.CreateNoteParams{
		LeadID:      leadID,
		AuthorID:    userID,
		Body:        body,
		Type:        noteType,
		IsImportant: req.IsImportant,
	})
	if err != nil {
		return transport.LeadNoteResponse{}, err
	}
	return toLeadNoteResponse(note), nil
}

// List returns the notes of one of the user's leads, important ones first.
func (s *Service) List(ctx context.Context, leadID, userID uuid.UUID) (transport.LeadNotesResponse, error) {
	if err := s.ensureLead(ctx, leadID, userID); err != nil {
		return transport.LeadNotesResponse{}, err
	}

	notesList, err := s.repo.ListNotes(ctx, leadID)
	if err != nil {
		return transport.LeadNotesResponse{}, err
	}

	items := make([]transport.LeadNoteResponse, len(notesList))
	for i, note := range notesList {
		items[i] = toLeadNoteResponse(note)
	}
	return transport.LeadNotesResponse{Items: items}, nil
}

// Delete removes a note. Only its author may delete it.
func (s *Service) Delete(ctx context.Context, leadID, noteID, userID uuid.UUID) error {
	if err := s.ensureLead(ctx, leadID, userID); err != nil {
		return err
	}

	note, err := s.repo.GetNote(ctx, noteID, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return apperr.NotFound("note not found")
		}
		return err
	}
	if note.AuthorID != userID {
		return apperr.Forbidden("only the author can delete this note")
	}
	return s.repo.DeleteNote(ctx, noteID)
}

func (s *Service) ensureLead(ctx context.Context, leadID, userID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, leadID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}
	return nil
}

func toLeadNoteResponse(note repository.Note) transport.LeadNoteResponse {
	return transport.LeadNoteResponse{
		ID:          note.ID,
		LeadID:      note.LeadID,
		AuthorID:    note.AuthorID,
		Type:        note.Type,
		Body:        note.Body,
		IsImportant: note.IsImportant,
		CreatedAt:   note.CreatedAt,
	}
}
