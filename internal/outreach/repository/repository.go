// Package repository persists lead chat history and the outreach email log.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMessageNotFound = errors.New("chat message not found")

const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

type ChatMessage struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	UserID    uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}

type EmailLog struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	UserID    uuid.UUID
	Recipient string
	Subject   string
	Body      string
	Status    string
	Error     *string
	CreatedAt time.Time
}

// Store is the persistence surface of the outreach service.
type Store interface {
	AddChatMessage(ctx context.Context, msg ChatMessage) (ChatMessage, error)
	ListChatMessages(ctx context.Context, leadID, userID uuid.UUID, limit int) ([]ChatMessage, error)
	GetChatMessage(ctx context.Context, id, leadID uuid.UUID) (ChatMessage, error)
	DeleteChatMessage(ctx context.Context, id uuid.UUID) error
	AddEmailLog(ctx context.Context, entry EmailLog) (EmailLog, error)
	ListEmailLogs(ctx context.Context, leadID, userID uuid.UUID) ([]EmailLog, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const chatColumns = `id, lead_id, user_id, role, content, created_at`

func scanChat(row pgx.Row) (ChatMessage, error) {
	var m ChatMessage
	err := row.Scan(&m.ID, &m.LeadID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChatMessage{}, ErrMessageNotFound
	}
	return m, err
}

func (r *Repository) AddChatMessage(ctx context.Context, msg ChatMessage) (ChatMessage, error) {
	return scanChat(r.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (id, lead_id, user_id, role, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+chatColumns,
		uuid.New(), msg.LeadID, msg.UserID, msg.Role, msg.Content,
	))
}

// ListChatMessages returns the newest limit messages in chronological order.
func (r *Repository) ListChatMessages(ctx context.Context, leadID, userID uuid.UUID, limit int) ([]ChatMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+chatColumns+` FROM (
			SELECT `+chatColumns+`
			FROM chat_messages
			WHERE lead_id = $1 AND user_id = $2
			ORDER BY created_at DESC, id DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC, id ASC
	`, leadID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]ChatMessage, 0)
	for rows.Next() {
		m, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *Repository) GetChatMessage(ctx context.Context, id, leadID uuid.UUID) (ChatMessage, error) {
	return scanChat(r.pool.QueryRow(ctx,
		`SELECT `+chatColumns+` FROM chat_messages WHERE id = $1 AND lead_id = $2`, id, leadID))
}

func (r *Repository) DeleteChatMessage(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

const emailColumns = `id, lead_id, user_id, recipient, subject, body, status, error, created_at`

func scanEmail(row pgx.Row) (EmailLog, error) {
	var e EmailLog
	err := row.Scan(&e.ID, &e.LeadID, &e.UserID, &e.Recipient, &e.Subject, &e.Body, &e.Status, &e.Error, &e.CreatedAt)
	return e, err
}

func (r *Repository) AddEmailLog(ctx context.Context, entry EmailLog) (EmailLog, error) {
	return scanEmail(r.pool.QueryRow(ctx, `
		INSERT INTO email_logs (id, lead_id, user_id, recipient, subject, body, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+emailColumns,
		uuid.New(), entry.LeadID, entry.UserID, entry.Recipient, entry.Subject, entry.Body, entry.Status, entry.Error,
	))
}

func (r *Repository) ListEmailLogs(ctx context.Context, leadID, userID uuid.UUID) ([]EmailLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+emailColumns+`
		FROM email_logs
		WHERE lead_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`, leadID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]EmailLog, 0)
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

var _ Store = (*Repository)(nil)
