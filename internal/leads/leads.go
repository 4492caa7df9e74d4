// Package leads provides lead management functionality.
// This file defines the public API of the leads bounded context.
// Only types and interfaces defined here should be imported by other domains.
package leads

import (
	"context"
	"errors"

	"leadscope_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// ErrLeadNotFound is returned when a lead does not exist or belongs to another user.
var ErrLeadNotFound = errors.New("lead not found")

// Lead is the lead information shared with other domains.
type Lead struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Username        string
	Platform        string
	FullName        *string
	Bio             *string
	Followers       int64
	Email           *string
	Website         *string
	Location        *string
	CompanyName     *string
	CompanyIndustry *string
	JobTitle        *string
	EngagementScore float64
	Tags            []string
	SalesforceID    *string
	HubSpotID       *string
}

// DisplayName returns the full name when known, the username otherwise.
func (l Lead) DisplayName() string {
	if l.FullName != nil && *l.FullName != "" {
		return *l.FullName
	}
	return l.Username
}

// Service is the read access other domains have to a user's leads.
type Service interface {
	GetLead(ctx context.Context, id, userID uuid.UUID) (Lead, error)
}

// SyncStore is used by background jobs that push leads to external CRMs.
// It reads leads without an owner check.
type SyncStore interface {
	GetLeadForSync(ctx context.Context, id uuid.UUID) (Lead, error)
	RecordSalesforceID(ctx context.Context, id uuid.UUID, remoteID string) error
	RecordHubSpotID(ctx context.Context, id uuid.UUID, remoteID string) error
}

// PublicService implements Service and SyncStore over the leads repository.
type PublicService struct {
	repo interface {
		repository.LeadReader
		repository.CRMLinker
	}
}

// NewPublicService creates the cross-domain lead service.
func NewPublicService(repo *repository.Repository) *PublicService {
	return &PublicService{repo: repo}
}

// GetLead returns one of userID's leads.
func (s *PublicService) GetLead(ctx context.Context, id, userID uuid.UUID) (Lead, error) {
	lead, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return Lead{}, mapRepoErr(err)
	}
	return toLead(lead), nil
}

// GetLeadForSync returns a lead regardless of owner.
func (s *PublicService) GetLeadForSync(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := s.repo.GetForSync(ctx, id)
	if err != nil {
		return Lead{}, mapRepoErr(err)
	}
	return toLead(lead), nil
}

// RecordSalesforceID stores the Salesforce id of a synced lead.
func (s *PublicService) RecordSalesforceID(ctx context.Context, id uuid.UUID, remoteID string) error {
	return mapRepoErr(s.repo.SetSalesforceID(ctx, id, remoteID))
}

// RecordHubSpotID stores the HubSpot id of a synced lead.
func (s *PublicService) RecordHubSpotID(ctx context.Context, id uuid.UUID, remoteID string) error {
	return mapRepoErr(s.repo.SetHubSpotID(ctx, id, remoteID))
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLeadNotFound
	}
	return err
}

func toLead(l repository.Lead) Lead {
	return Lead{
		ID:              l.ID,
		UserID:          l.UserID,
		Username:        l.Username,
		Platform:        l.Platform,
		FullName:        l.FullName,
		Bio:             l.Bio,
		Followers:       l.Followers,
		Email:           l.Email,
		Website:         l.Website,
		Location:        l.Location,
		CompanyName:     l.CompanyName,
		CompanyIndustry: l.CompanyIndustry,
		JobTitle:        l.JobTitle,
		EngagementScore: l.EngagementScore,
		Tags:            l.Tags,
		SalesforceID:    l.SalesforceID,
		HubSpotID:       l.HubSpotID,
	}
}

var (
	_ Service   = (*PublicService)(nil)
	_ SyncStore = (*PublicService)(nil)
)
