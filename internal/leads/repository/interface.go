package repository

import (
	"context"

	"github.com/google/uuid"
)

// LeadReader provides read-only access to a user's leads.
type LeadReader interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
	ListByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]Lead, error)
	Exists(ctx context.Context, userID uuid.UUID, username, platform string) (bool, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	Update(ctx context.Context, id, userID uuid.UUID, params UpdateLeadParams) (Lead, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
	AddTags(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, tags []string) (int, error)
	RemoveTags(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, tags []string) (int, error)
}

// StatsReader provides the aggregates shown on the dashboard header.
type StatsReader interface {
	PlatformBreakdown(ctx context.Context, userID uuid.UUID) ([]PlatformAggregate, error)
	Totals(ctx context.Context, userID uuid.UUID) (Totals, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]Lead, error)
	TopPerformers(ctx context.Context, userID uuid.UUID, limit int) ([]Lead, error)
	ListTags(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// CRMLinker records the ids a lead received in external CRMs.
type CRMLinker interface {
	SetSalesforceID(ctx context.Context, id uuid.UUID, remoteID string) error
	SetHubSpotID(ctx context.Context, id uuid.UUID, remoteID string) error
	// GetForSync loads a lead without an owner check; only background jobs use it.
	GetForSync(ctx context.Context, id uuid.UUID) (Lead, error)
}

// NoteStore persists lead notes.
type NoteStore interface {
	CreateNote(ctx context.Context, params CreateNoteParams) (Note, error)
	ListNotes(ctx context.Context, leadID uuid.UUID) ([]Note, error)
	GetNote(ctx context.Context, id, leadID uuid.UUID) (Note, error)
	DeleteNote(ctx context.Context, id uuid.UUID) error
}

// LeadsRepository is the full repository surface.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	StatsReader
	CRMLinker
	NoteStore
}

var _ LeadsRepository = (*Repository)(nil)
