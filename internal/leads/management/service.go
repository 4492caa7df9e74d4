// Package management handles lead CRUD, listing and bulk operations.
package management

import (
	"context"
	"errors"
	"fmt"

	"leadscope_backend/internal/events"
	"leadscope_backend/internal/leads/domain"
	"leadscope_backend/internal/leads/repository"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/sanitize"
	"leadscope_backend/platform/validator"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound  = "lead not found"
	msgLeadDuplicate = "a lead with this username already exists on this platform"

	// ExportLimit caps the number of leads a single export returns.
	ExportLimit = 10000
	// MaxPreloadPages caps how many pages a dashboard load renders at once.
	MaxPreloadPages = 50
)

// Repository defines the data access interface needed by the management service.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.StatsReader
}

// Service handles lead management operations.
type Service struct {
	repo     Repository
	bus      events.Bus
	val      *validator.Validator
	pageSize int
}

// New creates a new lead management service. pageSize is the number of
// leads per dashboard page.
func New(repo Repository, bus events.Bus, val *validator.Validator, pageSize int) *Service {
	if pageSize < 1 {
		pageSize = 20
	}
	return &Service{repo: repo, bus: bus, val: val, pageSize: pageSize}
}

// PageSize returns the configured page size.
func (s *Service) PageSize() int { return s.pageSize }

// Create creates a new lead owned by userID.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.create(ctx, userID, req.LeadInput)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		UserID:    userID,
		Platform:  lead.Platform,
		Source:    "manual",
	})
	return ToLeadResponse(lead), nil
}

func (s *Service) create(ctx context.Context, userID uuid.UUID, input transport.LeadInput) (repository.Lead, error) {
	input = NormalizeInput(input)
	lead, err := s.repo.Create(ctx, toCreateParams(userID, input))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return repository.Lead{}, apperr.Conflict(msgLeadDuplicate)
		}
		return repository.Lead{}, err
	}
	return lead, nil
}

// GetByID retrieves one of the user's leads.
func (s *Service) GetByID(ctx context.Context, id, userID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return ToLeadResponse(lead), nil
}

// Update patches one of the user's leads.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	lead, err := s.repo.Update(ctx, id, userID, toUpdateParams(req))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return transport.LeadResponse{}, apperr.Conflict(msgLeadDuplicate)
		}
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return ToLeadResponse(lead), nil
}

// Delete removes one of the user's leads.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return mapNotFound(s.repo.Delete(ctx, id, userID))
}

// List returns one page of leads plus totals for API clients.
func (s *Service) List(ctx context.Context, userID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page, leads, total, err := s.fetchPage(ctx, userID, req)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadResponse(lead)
	}

	totalPages := (total + s.pageSize - 1) / s.pageSize
	return transport.LeadListResponse{
		Leads:      items,
		Total:      total,
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: totalPages,
		HasMore:    hasMore(page, s.pageSize, len(leads), total),
	}, nil
}

// Page returns one page in the incremental-fetch shape.
func (s *Service) Page(ctx context.Context, userID uuid.UUID, req transport.ListLeadsRequest) (transport.PageResult, error) {
	page, leads, total, err := s.fetchPage(ctx, userID, req)
	if err != nil {
		return transport.PageResult{}, err
	}

	return transport.PageResult{
		Leads:   ToLeadSummaries(leads),
		HasMore: hasMore(page, s.pageSize, len(leads), total),
	}, nil
}

// Preload returns pages 1 through req.Page as one result, for a dashboard
// opened at a page deep in the list. req.Page is clamped to MaxPreloadPages.
func (s *Service) Preload(ctx context.Context, userID uuid.UUID, req transport.ListLeadsRequest) (int, transport.PageResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	if page > MaxPreloadPages {
		page = MaxPreloadPages
	}

	params := toListParams(userID, req)
	params.Limit = page * s.pageSize
	params.Offset = 0

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return 0, transport.PageResult{}, err
	}
	return page, transport.PageResult{
		Leads:   ToLeadSummaries(leads),
		HasMore: hasMore(1, params.Limit, len(leads), total),
	}, nil
}

// ListForExport returns up to ExportLimit leads matching the filters.
func (s *Service) ListForExport(ctx context.Context, userID uuid.UUID, req transport.ListLeadsRequest) ([]transport.LeadResponse, error) {
	params := toListParams(userID, req)
	params.Limit = ExportLimit
	params.Offset = 0

	leads, _, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = ToLeadResponse(lead)
	}
	return items, nil
}

func (s *Service) fetchPage(ctx context.Context, userID uuid.UUID, req transport.ListLeadsRequest) (int, []repository.Lead, int, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	params := toListParams(userID, req)
	params.Limit = s.pageSize
	params.Offset = (page - 1) * s.pageSize

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return 0, nil, 0, err
	}
	return page, leads, total, nil
}

// hasMore reports whether rows exist past this page. An empty page never has more.
func hasMore(page, pageSize, count, total int) bool {
	if count == 0 {
		return false
	}
	return (page-1)*pageSize+count < total
}

// Bulk applies one action to a set of the user's leads.
func (s *Service) Bulk(ctx context.Context, userID uuid.UUID, req transport.BulkActionRequest) (transport.BulkActionResponse, error) {
	resp := transport.BulkActionResponse{Action: req.Action}
	tags := sanitize.Tags(req.Tags)

	var err error
	switch req.Action {
	case transport.BulkDelete:
		resp.Affected, err = s.repo.BulkDelete(ctx, userID, req.IDs)
	case transport.BulkAddTags, transport.BulkRemoveTags:
		if len(tags) == 0 {
			return resp, apperr.Validation("tags are required for this action")
		}
		if req.Action == transport.BulkAddTags {
			resp.Affected, err = s.repo.AddTags(ctx, userID, req.IDs, tags)
		} else {
			resp.Affected, err = s.repo.RemoveTags(ctx, userID, req.IDs, tags)
		}
	case transport.BulkExport:
		var leads []repository.Lead
		leads, err = s.repo.ListByIDs(ctx, userID, req.IDs)
		if err == nil {
			resp.Affected = len(leads)
			resp.Leads = make([]transport.LeadResponse, len(leads))
			for i, lead := range leads {
				resp.Leads[i] = ToLeadResponse(lead)
			}
		}
	default:
		return resp, apperr.Validation(fmt.Sprintf("unknown bulk action %q", req.Action))
	}
	if err != nil {
		return transport.BulkActionResponse{}, err
	}
	if resp.Affected == 0 {
		return transport.BulkActionResponse{}, apperr.NotFound("no matching leads")
	}
	return resp, nil
}

// Tags returns every tag in use, sorted.
func (s *Service) Tags(ctx context.Context, userID uuid.UUID) (transport.TagsResponse, error) {
	tags, err := s.repo.ListTags(ctx, userID)
	if err != nil {
		return transport.TagsResponse{}, err
	}
	return transport.TagsResponse{Tags: tags}, nil
}

// CalculateEngagement exposes the engagement formula.
func (s *Service) CalculateEngagement(req transport.EngagementRequest) transport.EngagementResponse {
	return transport.EngagementResponse{
		EngagementScore: domain.EngagementScore(req.Followers, req.AvgLikes, req.AvgComments),
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return err
}
