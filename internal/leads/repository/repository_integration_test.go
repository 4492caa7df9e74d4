package repository

import (
	"context"
	"testing"
	"time"

	"leadscope_backend/internal/leads/domain"
	"leadscope_backend/platform/db"
	"leadscope_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts PostgreSQL in a container and applies the embedded migrations.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("leads"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.RunMigrations(ctx, pool, logger.Discard()))
	return pool
}

func createUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, 'x')`,
		id, "u-"+id.String()[:8], id.String()[:8]+"@example.com")
	require.NoError(t, err)
	return id
}

func TestRepositoryListPagination(t *testing.T) {
	pool := setupTestDB(t)
	repo := New(pool)
	ctx := context.Background()
	owner := createUser(t, pool)
	other := createUser(t, pool)

	for i := 0; i < 45; i++ {
		_, err := repo.Create(ctx, CreateLeadParams{
			UserID:          owner,
			Username:        uuid.NewString()[:12],
			Platform:        string(domain.PlatformInstagram),
			Followers:       int64(1000 + i),
			EngagementScore: float64(i),
			Tags:            []string{"batch"},
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, CreateLeadParams{UserID: other, Username: "foreign", Platform: "twitter"})
	require.NoError(t, err)

	seen := map[uuid.UUID]bool{}
	for page, want := range []int{20, 20, 5} {
		items, total, err := repo.List(ctx, ListParams{
			UserID: owner,
			SortBy: domain.SortEngagement,
			Limit:  20,
			Offset: page * 20,
		})
		require.NoError(t, err)
		require.Equal(t, 45, total)
		require.Len(t, items, want)
		for _, item := range items {
			require.False(t, seen[item.ID], "lead returned twice across pages")
			seen[item.ID] = true
		}
	}
	require.Len(t, seen, 45)
}

func TestRepositoryDuplicateAndOwnership(t *testing.T) {
	pool := setupTestDB(t)
	repo := New(pool)
	ctx := context.Background()
	owner := createUser(t, pool)
	stranger := createUser(t, pool)

	lead, err := repo.Create(ctx, CreateLeadParams{UserID: owner, Username: "jane", Platform: "linkedin"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateLeadParams{UserID: owner, Username: "jane", Platform: "linkedin"})
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.GetByID(ctx, lead.ID, stranger)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, lead.ID, stranger), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, lead.ID, owner))
}

func TestRepositoryTagOperations(t *testing.T) {
	pool := setupTestDB(t)
	repo := New(pool)
	ctx := context.Background()
	owner := createUser(t, pool)

	lead, err := repo.Create(ctx, CreateLeadParams{UserID: owner, Username: "tagged", Platform: "twitter", Tags: []string{"a", "b"}})
	require.NoError(t, err)

	n, err := repo.AddTags(ctx, owner, []uuid.UUID{lead.ID}, []string{"b", "c"})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := repo.GetByID(ctx, lead.ID, owner)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, got.Tags)

	_, err = repo.RemoveTags(ctx, owner, []uuid.UUID{lead.ID}, []string{"a"})
	require.NoError(t, err)
	got, err = repo.GetByID(ctx, lead.ID, owner)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c"}, got.Tags)

	tags, err := repo.ListTags(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c"}, tags)

	items, total, err := repo.List(ctx, ListParams{UserID: owner, Tag: "c", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, lead.ID, items[0].ID)
}
