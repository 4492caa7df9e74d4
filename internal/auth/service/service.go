package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadscope_backend/internal/auth/password"
	"leadscope_backend/internal/auth/repository"
	"leadscope_backend/internal/auth/transport"
	"leadscope_backend/internal/events"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/config"
	"leadscope_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType = "access"
	userSearchLimit = 50

	msgInvalidCredentials = "invalid email or password"
	msgUserNotFound       = "user not found"
	msgDuplicateUser      = "username or email already registered"
)

type Service struct {
	repo     repository.UserStore
	cfg      config.AuthServiceConfig
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo repository.UserStore, cfg config.AuthServiceConfig, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, eventBus: eventBus, log: log, now: time.Now}
}

// Register creates an account and announces it on the event bus.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (transport.ProfileResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		s.log.AuthEvent("register", req.Email, false, "duplicate")
		return transport.ProfileResponse{}, apperr.Conflict(msgDuplicateUser)
	}
	if err != nil {
		return transport.ProfileResponse{}, err
	}

	s.log.AuthEvent("register", user.Email, true, "")
	s.eventBus.Publish(ctx, events.UserRegistered{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
	})
	return toProfileResponse(user), nil
}

// Login verifies credentials and issues a signed access token.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return transport.AuthResponse{}, err
	}

	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("login", req.Email, false, "wrong password")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	expiresAt := s.now().Add(s.cfg.GetAccessTokenTTL())
	accessToken, err := s.signJWT(user.ID, expiresAt)
	if err != nil {
		return transport.AuthResponse{}, err
	}

	s.log.AuthEvent("login", user.Email, true, "")
	return transport.AuthResponse{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (transport.ProfileResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return toProfileResponse(user), nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, req transport.UpdateProfileRequest) (transport.ProfileResponse, error) {
	params := repository.UpdateUserParams{Username: trimmed(req.Username), Email: trimmed(req.Email)}
	user, err := s.repo.UpdateUser(ctx, userID, params)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return transport.ProfileResponse{}, apperr.NotFound(msgUserNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return transport.ProfileResponse{}, apperr.Conflict(msgDuplicateUser)
	case err != nil:
		return transport.ProfileResponse{}, err
	}
	return toProfileResponse(user), nil
}

func (s *Service) ListUsers(ctx context.Context, req transport.ListUsersRequest) (transport.UserListResponse, error) {
	users, err := s.repo.SearchUsers(ctx, strings.TrimSpace(req.Search), userSearchLimit)
	if err != nil {
		return transport.UserListResponse{}, err
	}
	items := make([]transport.UserSummary, 0, len(users))
	for _, u := range users {
		items = append(items, transport.UserSummary{ID: u.ID.String(), Username: u.Username, Email: u.Email})
	}
	return transport.UserListResponse{Items: items}, nil
}

// Username resolves the display name shown on the dashboard.
func (s *Service) Username(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

func (s *Service) getUser(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, apperr.NotFound(msgUserNotFound)
	}
	return user, err
}

func (s *Service) signJWT(userID uuid.UUID, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"type": accessTokenType,
		"exp":  expiresAt.Unix(),
		"iat":  s.now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toProfileResponse(u repository.User) transport.ProfileResponse {
	return transport.ProfileResponse{ID: u.ID.String(), Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
