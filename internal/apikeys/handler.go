package apikeys

import (
	"errors"
	"net/http"
	"time"

	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles API key management for the signed-in user.
type Handler struct {
	repo Store
	val  *validator.Validator
}

func NewHandler(repo Store, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,notblank,min=1,max=100"`
}

type APIKeyResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"keyPrefix"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  string     `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// CreateAPIKeyResponse carries the plaintext key. It is never shown again.
type CreateAPIKeyResponse struct {
	APIKeyResponse
	Key string `json:"key"`
}

func (h *Handler) HandleCreateAPIKey(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", validator.Fields(err))
		return
	}

	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to generate API key", nil)
		return
	}

	key, err := h.repo.CreateAPIKey(c.Request.Context(), identity.UserID(), req.Name, hash, prefix)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, CreateAPIKeyResponse{
		APIKeyResponse: toAPIKeyResponse(key),
		Key:            plaintext,
	})
}

func (h *Handler) HandleListAPIKeys(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	keys, err := h.repo.ListAPIKeys(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]APIKeyResponse, len(keys))
	for i, k := range keys {
		result[i] = toAPIKeyResponse(k)
	}
	httpkit.OK(c, result)
}

func (h *Handler) HandleRevokeAPIKey(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid key id", nil)
		return
	}

	err = h.repo.RevokeAPIKey(c.Request.Context(), keyID, identity.UserID())
	if errors.Is(err, ErrAPIKeyNotFound) {
		err = apperr.NotFound("api key not found")
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "api key revoked"})
}

func toAPIKeyResponse(k APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         k.ID,
		Name:       k.Name,
		KeyPrefix:  k.KeyPrefix,
		IsActive:   k.IsActive,
		CreatedAt:  k.CreatedAt.UTC().Format(time.RFC3339),
		LastUsedAt: k.LastUsedAt,
	}
}
