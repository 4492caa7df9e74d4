package management

import (
	"strings"

	"leadscope_backend/internal/leads/domain"
	"leadscope_backend/internal/leads/repository"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/sanitize"

	"github.com/google/uuid"
)

// ToLeadResponse maps a stored lead to its API shape.
func ToLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:              lead.ID,
		Username:        lead.Username,
		Platform:        lead.Platform,
		FullName:        lead.FullName,
		Bio:             lead.Bio,
		Followers:       lead.Followers,
		Email:           lead.Email,
		Website:         lead.Website,
		Location:        lead.Location,
		ProfileURL:      lead.ProfileURL,
		CompanyName:     lead.CompanyName,
		CompanyIndustry: lead.CompanyIndustry,
		CompanySize:     lead.CompanySize,
		JobTitle:        lead.JobTitle,
		TechStack:       nonNilSlice(lead.TechStack),
		EngagementScore: lead.EngagementScore,
		Tags:            nonNilSlice(lead.Tags),
		SalesforceID:    lead.SalesforceID,
		HubSpotID:       lead.HubSpotID,
		CreatedAt:       lead.CreatedAt,
		LastUpdated:     lead.UpdatedAt,
	}
}

// ToLeadSummary maps a stored lead to the list row record.
func ToLeadSummary(lead repository.Lead) transport.LeadSummary {
	return transport.LeadSummary{
		ID:              lead.ID,
		Username:        lead.Username,
		FullName:        lead.FullName,
		Platform:        lead.Platform,
		Followers:       lead.Followers,
		EngagementScore: lead.EngagementScore,
		Location:        lead.Location,
		Tags:            nonNilSlice(lead.Tags),
	}
}

// ToLeadSummaries maps a page of stored leads, preserving order.
func ToLeadSummaries(leads []repository.Lead) []transport.LeadSummary {
	out := make([]transport.LeadSummary, len(leads))
	for i, lead := range leads {
		out[i] = ToLeadSummary(lead)
	}
	return out
}

// NormalizeInput trims and sanitizes user-supplied lead fields.
func NormalizeInput(in transport.LeadInput) transport.LeadInput {
	in.Username = sanitize.Username(sanitize.Text(in.Username))
	in.Platform = strings.ToLower(strings.TrimSpace(in.Platform))
	in.FullName = sanitize.TextPtr(in.FullName)
	in.Bio = sanitize.TextPtr(in.Bio)
	in.Email = trimPtr(in.Email)
	in.Website = trimPtr(in.Website)
	in.Location = sanitize.TextPtr(in.Location)
	in.ProfileURL = trimPtr(in.ProfileURL)
	in.CompanyName = sanitize.TextPtr(in.CompanyName)
	in.CompanyIndustry = sanitize.TextPtr(in.CompanyIndustry)
	in.CompanySize = sanitize.TextPtr(in.CompanySize)
	in.JobTitle = sanitize.TextPtr(in.JobTitle)
	in.TechStack = sanitize.Tags(in.TechStack)
	in.Tags = sanitize.Tags(in.Tags)
	if in.Followers < 0 {
		in.Followers = 0
	}
	in.EngagementScore = domain.ClampScore(in.EngagementScore)
	return in
}

func toCreateParams(userID uuid.UUID, in transport.LeadInput) repository.CreateLeadParams {
	return repository.CreateLeadParams{
		UserID:          userID,
		Username:        in.Username,
		Platform:        in.Platform,
		FullName:        in.FullName,
		Bio:             in.Bio,
		Followers:       in.Followers,
		Email:           in.Email,
		Website:         in.Website,
		Location:        in.Location,
		ProfileURL:      in.ProfileURL,
		CompanyName:     in.CompanyName,
		CompanyIndustry: in.CompanyIndustry,
		CompanySize:     in.CompanySize,
		JobTitle:        in.JobTitle,
		TechStack:       in.TechStack,
		EngagementScore: in.EngagementScore,
		Tags:            in.Tags,
	}
}

func toUpdateParams(req transport.UpdateLeadRequest) repository.UpdateLeadParams {
	params := repository.UpdateLeadParams{
		FullName:        sanitize.TextPtr(req.FullName),
		Bio:             sanitize.TextPtr(req.Bio),
		Followers:       req.Followers,
		Email:           trimPtr(req.Email),
		Website:         trimPtr(req.Website),
		Location:        sanitize.TextPtr(req.Location),
		ProfileURL:      trimPtr(req.ProfileURL),
		CompanyName:     sanitize.TextPtr(req.CompanyName),
		CompanyIndustry: sanitize.TextPtr(req.CompanyIndustry),
		CompanySize:     sanitize.TextPtr(req.CompanySize),
		JobTitle:        sanitize.TextPtr(req.JobTitle),
	}
	if req.Username != nil {
		username := sanitize.Username(sanitize.Text(*req.Username))
		params.Username = &username
	}
	if req.Platform != nil {
		platform := strings.ToLower(strings.TrimSpace(*req.Platform))
		params.Platform = &platform
	}
	if req.EngagementScore != nil {
		score := domain.ClampScore(*req.EngagementScore)
		params.EngagementScore = &score
	}
	if req.TechStack != nil {
		stack := sanitize.Tags(*req.TechStack)
		params.TechStack = &stack
	}
	if req.Tags != nil {
		tags := sanitize.Tags(*req.Tags)
		params.Tags = &tags
	}
	return params
}

func toListParams(userID uuid.UUID, req transport.ListLeadsRequest) repository.ListParams {
	return repository.ListParams{
		UserID:        userID,
		Search:        strings.TrimSpace(req.Search),
		Platform:      strings.ToLower(strings.TrimSpace(req.Platform)),
		MinFollowers:  req.MinFollowers,
		MinEngagement: req.MinEngagement,
		Tag:           strings.TrimSpace(req.Tag),
		SortBy:        domain.ParseSortField(req.SortBy),
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nonNilSlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
