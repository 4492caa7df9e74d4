package transport

import (
	"time"

	"github.com/google/uuid"
)

// LeadSummary is the row record returned by the incremental list endpoint.
type LeadSummary struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	FullName        *string   `json:"full_name"`
	Platform        string    `json:"platform"`
	Followers       int64     `json:"followers"`
	EngagementScore float64   `json:"engagement_score"`
	Location        *string   `json:"location"`
	Tags            []string  `json:"tags"`
}

// PageResult is the body of an incremental (ajax=1) page fetch.
type PageResult struct {
	Leads   []LeadSummary `json:"leads"`
	HasMore bool          `json:"has_more"`
}

// LeadResponse is the full lead record.
type LeadResponse struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Platform        string    `json:"platform"`
	FullName        *string   `json:"full_name"`
	Bio             *string   `json:"bio"`
	Followers       int64     `json:"followers"`
	Email           *string   `json:"email"`
	Website         *string   `json:"website"`
	Location        *string   `json:"location"`
	ProfileURL      *string   `json:"profile_url"`
	CompanyName     *string   `json:"company_name"`
	CompanyIndustry *string   `json:"company_industry"`
	CompanySize     *string   `json:"company_size"`
	JobTitle        *string   `json:"job_title"`
	TechStack       []string  `json:"tech_stack"`
	EngagementScore float64   `json:"engagement_score"`
	Tags            []string  `json:"tags"`
	SalesforceID    *string   `json:"salesforce_id,omitempty"`
	HubSpotID       *string   `json:"hubspot_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastUpdated     time.Time `json:"last_updated"`
}

// LeadInput carries the writable lead fields. It is shared by create, import
// and scrape-import, so every format decodes into the same shape.
type LeadInput struct {
	Username        string   `json:"username" yaml:"username" validate:"notblank,max=100"`
	Platform        string   `json:"platform" yaml:"platform" validate:"required,lead_platform"`
	FullName        *string  `json:"full_name,omitempty" yaml:"full_name" validate:"omitempty,max=200"`
	Bio             *string  `json:"bio,omitempty" yaml:"bio" validate:"omitempty,max=5000"`
	Followers       int64    `json:"followers" yaml:"followers" validate:"gte=0"`
	Email           *string  `json:"email,omitempty" yaml:"email" validate:"omitempty,email,max=200"`
	Website         *string  `json:"website,omitempty" yaml:"website" validate:"omitempty,url,max=500"`
	Location        *string  `json:"location,omitempty" yaml:"location" validate:"omitempty,max=200"`
	ProfileURL      *string  `json:"profile_url,omitempty" yaml:"profile_url" validate:"omitempty,url,max=500"`
	CompanyName     *string  `json:"company_name,omitempty" yaml:"company_name" validate:"omitempty,max=200"`
	CompanyIndustry *string  `json:"company_industry,omitempty" yaml:"company_industry" validate:"omitempty,max=200"`
	CompanySize     *string  `json:"company_size,omitempty" yaml:"company_size" validate:"omitempty,max=100"`
	JobTitle        *string  `json:"job_title,omitempty" yaml:"job_title" validate:"omitempty,max=200"`
	TechStack       []string `json:"tech_stack,omitempty" yaml:"tech_stack"`
	EngagementScore float64  `json:"engagement_score" yaml:"engagement_score" validate:"gte=0,lte=100"`
	Tags            []string `json:"tags,omitempty" yaml:"tags" validate:"max=50,dive,max=50"`
}

// CreateLeadRequest creates a single lead.
type CreateLeadRequest struct {
	LeadInput
}

// UpdateLeadRequest patches a lead. Nil fields are left unchanged.
type UpdateLeadRequest struct {
	Username        *string   `json:"username,omitempty" validate:"omitempty,notblank,max=100"`
	Platform        *string   `json:"platform,omitempty" validate:"omitempty,lead_platform"`
	FullName        *string   `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Bio             *string   `json:"bio,omitempty" validate:"omitempty,max=5000"`
	Followers       *int64    `json:"followers,omitempty" validate:"omitempty,gte=0"`
	Email           *string   `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Website         *string   `json:"website,omitempty" validate:"omitempty,url,max=500"`
	Location        *string   `json:"location,omitempty" validate:"omitempty,max=200"`
	ProfileURL      *string   `json:"profile_url,omitempty" validate:"omitempty,url,max=500"`
	CompanyName     *string   `json:"company_name,omitempty" validate:"omitempty,max=200"`
	CompanyIndustry *string   `json:"company_industry,omitempty" validate:"omitempty,max=200"`
	CompanySize     *string   `json:"company_size,omitempty" validate:"omitempty,max=100"`
	JobTitle        *string   `json:"job_title,omitempty" validate:"omitempty,max=200"`
	TechStack       *[]string `json:"tech_stack,omitempty"`
	EngagementScore *float64  `json:"engagement_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Tags            *[]string `json:"tags,omitempty" validate:"omitempty,max=50,dive,max=50"`
}

// ListLeadsRequest holds the dashboard filters, bound from the query string.
type ListLeadsRequest struct {
	Search        string  `form:"search" validate:"max=200"`
	Platform      string  `form:"platform" validate:"omitempty,max=50"`
	MinFollowers  int64   `form:"min_followers" validate:"gte=0"`
	MinEngagement float64 `form:"min_engagement" validate:"gte=0,lte=100"`
	Tag           string  `form:"tag" validate:"max=50"`
	SortBy        string  `form:"sort_by" validate:"max=50"`
	Page          int     `form:"page"`
	Ajax          string  `form:"ajax"`
}

// LeadListResponse is the JSON list used by API clients.
type LeadListResponse struct {
	Leads      []LeadResponse `json:"leads"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
	HasMore    bool           `json:"has_more"`
}

// BulkAction names an operation applied to several leads.
type BulkAction string

const (
	BulkDelete     BulkAction = "delete"
	BulkAddTags    BulkAction = "add_tags"
	BulkRemoveTags BulkAction = "remove_tags"
	BulkExport     BulkAction = "export"
)

type BulkActionRequest struct {
	Action BulkAction  `json:"action" validate:"required,oneof=delete add_tags remove_tags export"`
	IDs    []uuid.UUID `json:"ids" validate:"required,min=1,max=1000"`
	Tags   []string    `json:"tags" validate:"max=50,dive,max=50"`
}

type BulkActionResponse struct {
	Action   BulkAction     `json:"action"`
	Affected int            `json:"affected"`
	Leads    []LeadResponse `json:"leads,omitempty"`
}

// PlatformStats aggregates leads of one platform.
type PlatformStats struct {
	Count         int     `json:"count"`
	AvgFollowers  float64 `json:"avg_followers"`
	AvgEngagement float64 `json:"avg_engagement"`
}

type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

type StatsResponse struct {
	TotalLeads     int                      `json:"total_leads"`
	ByPlatform     map[string]PlatformStats `json:"by_platform"`
	AvgFollowers   float64                  `json:"avg_followers"`
	AvgEngagement  float64                  `json:"avg_engagement"`
	TotalFollowers int64                    `json:"total_followers"`
	TopPlatforms   []PlatformCount          `json:"top_platforms"`
	RecentLeads    []LeadSummary            `json:"recent_leads"`
	TopPerformers  []LeadSummary            `json:"top_performers"`
}

type TagsResponse struct {
	Tags []string `json:"tags"`
}

type ImportResponse struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

type EngagementRequest struct {
	Followers   int64   `json:"followers" validate:"gte=0"`
	AvgLikes    float64 `json:"avg_likes" validate:"gte=0"`
	AvgComments float64 `json:"avg_comments" validate:"gte=0"`
}

type EngagementResponse struct {
	EngagementScore float64 `json:"engagement_score"`
}

type ExportArchiveResponse struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Count       int       `json:"count"`
}
