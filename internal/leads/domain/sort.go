package domain

// SortField is a column the lead list can be ordered by, always descending.
type SortField string

const (
	SortEngagement SortField = "engagement_score"
	SortFollowers  SortField = "followers"
	SortCreatedAt  SortField = "created_at"
	SortUpdatedAt  SortField = "last_updated"
	SortUsername   SortField = "username"
)

// ParseSortField falls back to SortEngagement for unknown input.
func ParseSortField(s string) SortField {
	switch SortField(s) {
	case SortFollowers, SortCreatedAt, SortUpdatedAt, SortUsername:
		return SortField(s)
	default:
		return SortEngagement
	}
}
