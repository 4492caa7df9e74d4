package repository

import (
	"context"

	"github.com/google/uuid"
)

// UserStore defines the user persistence operations the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, params UpdateUserParams) (User, error)
	SearchUsers(ctx context.Context, search string, limit int) ([]User, error)
}

// Ensure Repository implements UserStore
var _ UserStore = (*Repository)(nil)
