package management

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"leadscope_backend/internal/events"
	"leadscope_backend/internal/leads/repository"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/logger"
	"leadscope_backend/platform/validator"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu    sync.Mutex
	leads []repository.Lead
}

func (f *fakeRepo) owned(userID uuid.UUID) []repository.Lead {
	out := make([]repository.Lead, 0)
	for _, l := range f.leads {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out
}

func (f *fakeRepo) GetByID(_ context.Context, id, userID uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if l.ID == id && l.UserID == userID {
			return l, nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, p repository.ListParams) ([]repository.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]repository.Lead, 0)
	for _, l := range f.owned(p.UserID) {
		if p.Platform != "" && p.Platform != "all" && l.Platform != p.Platform {
			continue
		}
		if p.Search != "" && !strings.Contains(l.Username, p.Search) {
			continue
		}
		matched = append(matched, l)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].EngagementScore > matched[j].EngagementScore })
	total := len(matched)
	if p.Offset >= total {
		return []repository.Lead{}, total, nil
	}
	end := p.Offset + p.Limit
	if end > total {
		end = total
	}
	return matched[p.Offset:end], total, nil
}

func (f *fakeRepo) ListByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Lead, 0)
	for _, l := range f.owned(userID) {
		for _, id := range ids {
			if l.ID == id {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) Exists(_ context.Context, userID uuid.UUID, username, platform string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.owned(userID) {
		if l.Username == username && l.Platform == platform {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Create(ctx context.Context, p repository.CreateLeadParams) (repository.Lead, error) {
	if exists, _ := f.Exists(ctx, p.UserID, p.Username, p.Platform); exists {
		return repository.Lead{}, repository.ErrDuplicate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	lead := repository.Lead{
		ID:              uuid.New(),
		UserID:          p.UserID,
		Username:        p.Username,
		Platform:        p.Platform,
		FullName:        p.FullName,
		Followers:       p.Followers,
		EngagementScore: p.EngagementScore,
		Tags:            p.Tags,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	f.leads = append(f.leads, lead)
	return lead, nil
}

func (f *fakeRepo) Update(ctx context.Context, id, userID uuid.UUID, p repository.UpdateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.leads {
		if l.ID == id && l.UserID == userID {
			if p.Followers != nil {
				f.leads[i].Followers = *p.Followers
			}
			return f.leads[i], nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (f *fakeRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.leads {
		if l.ID == id && l.UserID == userID {
			f.leads = append(f.leads[:i], f.leads[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	n := 0
	for _, id := range ids {
		if f.Delete(ctx, id, userID) == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) AddTags(_ context.Context, userID uuid.UUID, ids []uuid.UUID, tags []string) (int, error) {
	return len(ids), nil
}

func (f *fakeRepo) RemoveTags(_ context.Context, userID uuid.UUID, ids []uuid.UUID, tags []string) (int, error) {
	return len(ids), nil
}

func (f *fakeRepo) PlatformBreakdown(_ context.Context, userID uuid.UUID) ([]repository.PlatformAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, l := range f.owned(userID) {
		counts[l.Platform]++
	}
	out := make([]repository.PlatformAggregate, 0, len(counts))
	for p, c := range counts {
		out = append(out, repository.PlatformAggregate{Platform: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Platform < out[j].Platform
	})
	return out, nil
}

func (f *fakeRepo) Totals(_ context.Context, userID uuid.UUID) (repository.Totals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := repository.Totals{}
	for _, l := range f.owned(userID) {
		t.Count++
		t.TotalFollowers += l.Followers
	}
	return t, nil
}

func (f *fakeRepo) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]repository.Lead, error) {
	leads, _, err := f.List(ctx, repository.ListParams{UserID: userID, Limit: limit})
	return leads, err
}

func (f *fakeRepo) TopPerformers(ctx context.Context, userID uuid.UUID, limit int) ([]repository.Lead, error) {
	leads, _, err := f.List(ctx, repository.ListParams{UserID: userID, Limit: limit})
	return leads, err
}

func (f *fakeRepo) ListTags(context.Context, uuid.UUID) ([]string, error) {
	return []string{}, nil
}

func newTestService(t *testing.T, repo *fakeRepo) *Service {
	t.Helper()
	val := validator.New()
	if err := RegisterValidations(val); err != nil {
		t.Fatalf("register validations: %v", err)
	}
	return New(repo, events.NewInMemoryBus(logger.Discard()), val, 20)
}

func seed(repo *fakeRepo, userID uuid.UUID, n int) {
	for i := 0; i < n; i++ {
		repo.leads = append(repo.leads, repository.Lead{
			ID:              uuid.New(),
			UserID:          userID,
			Username:        "lead" + strings.Repeat("x", i),
			Platform:        "instagram",
			EngagementScore: float64(100 - i),
		})
	}
}

func TestPageReportsHasMoreFromTotals(t *testing.T) {
	repo := &fakeRepo{}
	userID := uuid.New()
	seed(repo, userID, 45)
	svc := newTestService(t, repo)
	ctx := context.Background()

	cases := []struct {
		page    int
		count   int
		hasMore bool
	}{
		{page: 1, count: 20, hasMore: true},
		{page: 2, count: 20, hasMore: true},
		{page: 3, count: 5, hasMore: false},
		{page: 4, count: 0, hasMore: false},
	}
	for _, tc := range cases {
		res, err := svc.Page(ctx, userID, transport.ListLeadsRequest{Page: tc.page})
		if err != nil {
			t.Fatalf("page %d: unexpected error: %v", tc.page, err)
		}
		if len(res.Leads) != tc.count {
			t.Fatalf("page %d: expected %d leads, got %d", tc.page, tc.count, len(res.Leads))
		}
		if res.HasMore != tc.hasMore {
			t.Fatalf("page %d: expected has_more=%v, got %v", tc.page, tc.hasMore, res.HasMore)
		}
	}
}

func TestListClampsPageAndCountsPages(t *testing.T) {
	repo := &fakeRepo{}
	userID := uuid.New()
	seed(repo, userID, 45)
	svc := newTestService(t, repo)

	res, err := svc.List(context.Background(), userID, transport.ListLeadsRequest{Page: -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Page != 1 || res.TotalPages != 3 || res.Total != 45 {
		t.Fatalf("unexpected pagination: page=%d totalPages=%d total=%d", res.Page, res.TotalPages, res.Total)
	}
}

func TestCreateDuplicateReturnsConflict(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)
	userID := uuid.New()
	req := transport.CreateLeadRequest{LeadInput: transport.LeadInput{Username: "@jane", Platform: "Twitter"}}

	created, err := svc.Create(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Username != "jane" || created.Platform != "twitter" {
		t.Fatalf("expected normalized lead, got %s/%s", created.Username, created.Platform)
	}

	_, err = svc.Create(context.Background(), userID, req)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetByIDOfOtherUserIsNotFound(t *testing.T) {
	repo := &fakeRepo{}
	owner := uuid.New()
	seed(repo, owner, 1)
	svc := newTestService(t, repo)

	_, err := svc.GetByID(context.Background(), repo.leads[0].ID, uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImportReportsDuplicatesAndInvalidRows(t *testing.T) {
	repo := &fakeRepo{}
	userID := uuid.New()
	svc := newTestService(t, repo)

	rows := []transport.LeadInput{
		{Username: "alice", Platform: "instagram", Followers: 10},
		{Username: "alice", Platform: "instagram"},
		{Username: "bob", Platform: "myspace"},
		{Username: "carol", Platform: "linkedin"},
	}

	res, err := svc.Import(context.Background(), userID, rows, "csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Imported != 2 || res.Failed != 2 {
		t.Fatalf("expected 2 imported and 2 failed, got %+v", res)
	}
	if !strings.HasPrefix(res.Errors[0], "Row 2: lead already exists") {
		t.Fatalf("unexpected first error %q", res.Errors[0])
	}
	if !strings.Contains(res.Errors[1], "Platform (lead_platform)") {
		t.Fatalf("unexpected second error %q", res.Errors[1])
	}
}

func TestImportCapsReportedErrors(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)

	rows := make([]transport.LeadInput, 15)
	for i := range rows {
		rows[i] = transport.LeadInput{Username: "", Platform: "instagram"}
	}

	res, err := svc.Import(context.Background(), uuid.New(), rows, "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failed != 15 || len(res.Errors) != maxReportedImportErrors {
		t.Fatalf("expected 15 failures with 10 reported, got %d/%d", res.Failed, len(res.Errors))
	}
}

func TestBulkTagsRequireTags(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})
	_, err := svc.Bulk(context.Background(), uuid.New(), transport.BulkActionRequest{
		Action: transport.BulkAddTags,
		IDs:    []uuid.UUID{uuid.New()},
		Tags:   []string{"  "},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBulkDeleteOfUnknownIDsIsNotFound(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})
	_, err := svc.Bulk(context.Background(), uuid.New(), transport.BulkActionRequest{
		Action: transport.BulkDelete,
		IDs:    []uuid.UUID{uuid.New()},
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStatsTopPlatforms(t *testing.T) {
	repo := &fakeRepo{}
	userID := uuid.New()
	seed(repo, userID, 3)
	repo.leads = append(repo.leads, repository.Lead{ID: uuid.New(), UserID: userID, Username: "t", Platform: "twitter", Followers: 7})
	svc := newTestService(t, repo)

	stats, err := svc.Stats(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalLeads != 4 || stats.TotalFollowers != 7 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if len(stats.TopPlatforms) != 2 || stats.TopPlatforms[0].Platform != "instagram" {
		t.Fatalf("unexpected top platforms: %+v", stats.TopPlatforms)
	}
	if stats.ByPlatform["twitter"].Count != 1 {
		t.Fatalf("expected one twitter lead, got %+v", stats.ByPlatform["twitter"])
	}
}

func TestPreloadReturnsPagesThroughRequested(t *testing.T) {
	repo := &fakeRepo{}
	userID := uuid.New()
	seed(repo, userID, 45)
	svc := newTestService(t, repo)

	page, res, err := svc.Preload(context.Background(), userID, transport.ListLeadsRequest{Page: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 2 || len(res.Leads) != 40 || !res.HasMore {
		t.Fatalf("expected 40 leads with more through page 2, got page=%d leads=%d more=%v", page, len(res.Leads), res.HasMore)
	}

	_, res, err = svc.Preload(context.Background(), userID, transport.ListLeadsRequest{Page: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Leads) != 45 || res.HasMore {
		t.Fatalf("expected every lead and no more, got leads=%d more=%v", len(res.Leads), res.HasMore)
	}
}
