// Package auth provides authentication and user accounts.
// This file defines the public API of the auth bounded context.
// Only types defined here should be imported by other domains.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Directory resolves user display names for other domains.
type Directory interface {
	Username(ctx context.Context, userID uuid.UUID) (string, error)
}
