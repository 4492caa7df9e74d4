package apikeys

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	keys    map[uuid.UUID]APIKey
	touched int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: map[uuid.UUID]APIKey{}}
}

func (s *memoryStore) CreateAPIKey(_ context.Context, userID uuid.UUID, name, keyHash, keyPrefix string) (APIKey, error) {
	key := APIKey{ID: uuid.New(), UserID: userID, Name: name, KeyHash: keyHash, KeyPrefix: keyPrefix, IsActive: true, CreatedAt: time.Now()}
	s.keys[key.ID] = key
	return key, nil
}

func (s *memoryStore) GetAPIKeyByHash(_ context.Context, keyHash string) (APIKey, error) {
	for _, k := range s.keys {
		if k.KeyHash == keyHash && k.IsActive {
			return k, nil
		}
	}
	return APIKey{}, ErrAPIKeyNotFound
}

func (s *memoryStore) ListAPIKeys(_ context.Context, userID uuid.UUID) ([]APIKey, error) {
	out := make([]APIKey, 0)
	for _, k := range s.keys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *memoryStore) RevokeAPIKey(_ context.Context, keyID, userID uuid.UUID) error {
	k, ok := s.keys[keyID]
	if !ok || k.UserID != userID {
		return ErrAPIKeyNotFound
	}
	k.IsActive = false
	s.keys[keyID] = k
	return nil
}

func (s *memoryStore) TouchAPIKey(context.Context, uuid.UUID) { s.touched++ }

func init() {
	gin.SetMode(gin.TestMode)
}

func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		c.Next()
	}
}

func newManagementEngine(store Store, userID uuid.UUID) *gin.Engine {
	h := NewHandler(store, validator.New())
	r := gin.New()
	g := r.Group("/keys", withUser(userID))
	g.GET("", h.HandleListAPIKeys)
	g.POST("", h.HandleCreateAPIKey)
	g.POST("/:id/revoke", h.HandleRevokeAPIKey)
	return r
}

func newPublicEngine(store Store, rdb redis.Cmdable, limit int) *gin.Engine {
	r := gin.New()
	g := r.Group("/public", PublicMiddleware(store, rdb, limit, logger.Discard())...)
	g.GET("/whoami", func(c *gin.Context) {
		id := httpkit.GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID().String(), "viaKey": id.ViaAPIKey()})
	})
	return r
}

func TestGenerateAPIKeyHashesAndPrefixes(t *testing.T) {
	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(plaintext, "lsk_") {
		t.Fatalf("expected lsk_ prefix, got %q", plaintext)
	}
	if hash != HashKey(plaintext) || hash == plaintext {
		t.Fatalf("expected stored hash to differ from plaintext and match HashKey")
	}
	if prefix != plaintext[:12] {
		t.Fatalf("expected display prefix %q, got %q", plaintext[:12], prefix)
	}
}

func TestCreateReturnsPlaintextOnce(t *testing.T) {
	store := newMemoryStore()
	userID := uuid.New()
	r := newManagementEngine(store, userID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/keys", bytes.NewBufferString(`{"name":"zapier"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created CreateAPIKeyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Key == "" || !strings.HasPrefix(created.Key, created.KeyPrefix) {
		t.Fatalf("expected plaintext key starting with prefix, got %+v", created)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/keys", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), created.Key) {
		t.Fatalf("expected list to omit the plaintext key")
	}
}

func TestCreateRejectsBlankName(t *testing.T) {
	r := newManagementEngine(newMemoryStore(), uuid.New())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/keys", bytes.NewBufferString(`{"name":"  "}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRevokeOtherUsersKeyIsNotFound(t *testing.T) {
	store := newMemoryStore()
	key, _ := store.CreateAPIKey(context.Background(), uuid.New(), "owner", "h", "p")
	r := newManagementEngine(store, uuid.New())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/keys/"+key.ID.String()+"/revoke", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !store.keys[key.ID].IsActive {
		t.Fatalf("expected key to stay active")
	}
}

func TestPublicMiddlewareRejectsMissingAndUnknownKeys(t *testing.T) {
	r := newPublicEngine(newMemoryStore(), nil, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/whoami", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/public/whoami", nil)
	req.Header.Set(HeaderAPIKey, "lsk_unknown")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown key, got %d", w.Code)
	}
}

func TestPublicMiddlewareSetsIdentityAndTouches(t *testing.T) {
	store := newMemoryStore()
	userID := uuid.New()
	plaintext, hash, prefix, _ := GenerateAPIKey()
	_, _ = store.CreateAPIKey(context.Background(), userID, "ci", hash, prefix)
	r := newPublicEngine(store, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/public/whoami", nil)
	req.Header.Set(HeaderAPIKey, plaintext)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		UserID string `json:"userId"`
		ViaKey bool   `json:"viaKey"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.UserID != userID.String() || !body.ViaKey {
		t.Fatalf("unexpected identity: %+v", body)
	}
	if store.touched != 1 {
		t.Fatalf("expected last_used_at touch, got %d", store.touched)
	}
}

func TestPublicMiddlewareEnforcesHourlyQuota(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := newMemoryStore()
	plaintext, hash, prefix, _ := GenerateAPIKey()
	_, _ = store.CreateAPIKey(context.Background(), uuid.New(), "ci", hash, prefix)
	r := newPublicEngine(store, rdb, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/public/whoami", nil)
		req.Header.Set(HeaderAPIKey, plaintext)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 200,200,429, got %v", codes)
	}
}
