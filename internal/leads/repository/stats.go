package repository

import (
	"context"

	"github.com/google/uuid"
)

type PlatformAggregate struct {
	Platform      string
	Count         int
	AvgFollowers  float64
	AvgEngagement float64
}

type Totals struct {
	Count          int
	AvgFollowers   float64
	AvgEngagement  float64
	TotalFollowers int64
}

func (r *Repository) PlatformBreakdown(ctx context.Context, userID uuid.UUID) ([]PlatformAggregate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT platform, COUNT(*), COALESCE(AVG(followers), 0)::float8, COALESCE(AVG(engagement_score), 0)::float8
		FROM leads
		WHERE user_id = $1
		GROUP BY platform
		ORDER BY COUNT(*) DESC, platform ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]PlatformAggregate, 0)
	for rows.Next() {
		var item PlatformAggregate
		if err := rows.Scan(&item.Platform, &item.Count, &item.AvgFollowers, &item.AvgEngagement); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func (r *Repository) Totals(ctx context.Context, userID uuid.UUID) (Totals, error) {
	var t Totals
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(AVG(followers), 0)::float8, COALESCE(AVG(engagement_score), 0)::float8,
			COALESCE(SUM(followers), 0)::bigint
		FROM leads
		WHERE user_id = $1
	`, userID).Scan(&t.Count, &t.AvgFollowers, &t.AvgEngagement, &t.TotalFollowers)
	return t, err
}

func (r *Repository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *Repository) TopPerformers(ctx context.Context, userID uuid.UUID, limit int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE user_id = $1 ORDER BY engagement_score DESC, id LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *Repository) ListTags(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT tag
		FROM leads, unnest(tags) AS tag
		WHERE user_id = $1
		ORDER BY tag
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return tags, nil
}
