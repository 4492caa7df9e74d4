package apikeys

import (
	"context"
	"errors"
	"time"

	"leadscope_backend/internal/auth/token"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAPIKeyNotFound = errors.New("api key not found")

const (
	apiKeyPrefix     = "lsk"
	apiKeyBytes      = 32
	displayPrefixLen = 12
)

// APIKey is a per-user key for the public lead API. Only the hash is stored.
type APIKey struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	KeyHash    string
	KeyPrefix  string
	IsActive   bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// Store is the persistence surface used by the handler and middleware.
type Store interface {
	CreateAPIKey(ctx context.Context, userID uuid.UUID, name, keyHash, keyPrefix string) (APIKey, error)
	GetAPIKeyByHash(ctx context.Context, keyHash string) (APIKey, error)
	ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]APIKey, error)
	RevokeAPIKey(ctx context.Context, keyID, userID uuid.UUID) error
	TouchAPIKey(ctx context.Context, keyID uuid.UUID)
}

// Repository provides data access for API keys.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GenerateAPIKey creates a new random API key and returns the plaintext key,
// its hash and the display prefix.
func GenerateAPIKey() (plaintext string, hash string, prefix string, err error) {
	plaintext, err = token.GeneratePrefixed(apiKeyPrefix, apiKeyBytes)
	if err != nil {
		return "", "", "", err
	}
	return plaintext, HashKey(plaintext), plaintext[:displayPrefixLen], nil
}

// HashKey hashes a plaintext API key for lookup.
func HashKey(plaintext string) string {
	return token.HashSHA256(plaintext)
}

const apiKeyColumns = `id, user_id, name, key_hash, key_prefix, is_active, created_at, last_used_at`

func scanAPIKey(row pgx.Row) (APIKey, error) {
	var key APIKey
	err := row.Scan(&key.ID, &key.UserID, &key.Name, &key.KeyHash, &key.KeyPrefix, &key.IsActive, &key.CreatedAt, &key.LastUsedAt)
	return key, err
}

func (r *Repository) CreateAPIKey(ctx context.Context, userID uuid.UUID, name, keyHash, keyPrefix string) (APIKey, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+apiKeyColumns, uuid.New(), userID, name, keyHash, keyPrefix)
	return scanAPIKey(row)
}

// GetAPIKeyByHash retrieves an active API key by its hash.
func (r *Repository) GetAPIKeyByHash(ctx context.Context, keyHash string) (APIKey, error) {
	key, err := scanAPIKey(r.pool.QueryRow(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys
		WHERE key_hash = $1 AND is_active = true
	`, keyHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return APIKey{}, ErrAPIKeyNotFound
	}
	return key, err
}

func (r *Repository) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]APIKey, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apiKeyColumns+`
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// RevokeAPIKey deactivates a key owned by userID.
func (r *Repository) RevokeAPIKey(ctx context.Context, keyID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE api_keys SET is_active = false
		WHERE id = $1 AND user_id = $2
	`, keyID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// TouchAPIKey updates last_used_at. Failures are ignored.
func (r *Repository) TouchAPIKey(ctx context.Context, keyID uuid.UUID) {
	_, _ = r.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = now() WHERE id = $1`, keyID)
}
