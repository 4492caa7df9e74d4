package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNoteNotFound = errors.New("note not found")

type Note struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	AuthorID    uuid.UUID
	Body        string
	Type        string
	IsImportant bool
	CreatedAt   time.Time
}

type CreateNoteParams struct {
	LeadID      uuid.UUID
	AuthorID    uuid.UUID
	Body        string
	Type        string
	IsImportant bool
}

func (r *Repository) CreateNote(ctx context.Context, params CreateNoteParams) (Note, error) {
	var n Note
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_notes (id, lead_id, author_id, body, type, is_important)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, author_id, body, type, is_important, created_at
	`, uuid.New(), params.LeadID, params.AuthorID, params.Body, params.Type, params.IsImportant).Scan(
		&n.ID, &n.LeadID, &n.AuthorID, &n.Body, &n.Type, &n.IsImportant, &n.CreatedAt,
	)
	return n, err
}

func (r *Repository) ListNotes(ctx context.Context, leadID uuid.UUID) ([]Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, author_id, body, type, is_important, created_at
		FROM lead_notes
		WHERE lead_id = $1
		ORDER BY is_important DESC, created_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.LeadID, &n.AuthorID, &n.Body, &n.Type, &n.IsImportant, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return notes, nil
}

func (r *Repository) GetNote(ctx context.Context, id, leadID uuid.UUID) (Note, error) {
	var n Note
	err := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, author_id, body, type, is_important, created_at
		FROM lead_notes
		WHERE id = $1 AND lead_id = $2
	`, id, leadID).Scan(&n.ID, &n.LeadID, &n.AuthorID, &n.Body, &n.Type, &n.IsImportant, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Note{}, ErrNoteNotFound
	}
	return n, err
}

func (r *Repository) DeleteNote(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lead_notes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}
