package transport

import "time"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,min=2,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,notblank,min=2,max=80"`
	Email    *string `json:"email" validate:"omitempty,email,max=120"`
}

type ListUsersRequest struct {
	Search string `form:"search" validate:"max=100"`
}

type AuthResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UserListResponse struct {
	Items []UserSummary `json:"items"`
}
