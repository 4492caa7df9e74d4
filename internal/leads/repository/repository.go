package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadscope_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("lead not found")
	ErrDuplicate = errors.New("lead already exists")
)

const pgUniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

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
	ProfileURL      *string
	CompanyName     *string
	CompanyIndustry *string
	CompanySize     *string
	JobTitle        *string
	TechStack       []string
	EngagementScore float64
	Tags            []string
	SalesforceID    *string
	HubSpotID       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CreateLeadParams struct {
	UserID          uuid.UUID
	Username        string
	Platform        string
	FullName        *string
	Bio             *string
	Followers       int64
	Email           *string
	Website         *string
	Location        *string
	ProfileURL      *string
	CompanyName     *string
	CompanyIndustry *string
	CompanySize     *string
	JobTitle        *string
	TechStack       []string
	EngagementScore float64
	Tags            []string
}

// UpdateLeadParams holds the patch. Nil fields keep their current value.
type UpdateLeadParams struct {
	Username        *string
	Platform        *string
	FullName        *string
	Bio             *string
	Followers       *int64
	Email           *string
	Website         *string
	Location        *string
	ProfileURL      *string
	CompanyName     *string
	CompanyIndustry *string
	CompanySize     *string
	JobTitle        *string
	TechStack       *[]string
	EngagementScore *float64
	Tags            *[]string
}

type ListParams struct {
	UserID        uuid.UUID
	Search        string
	Platform      string
	MinFollowers  int64
	MinEngagement float64
	Tag           string
	SortBy        domain.SortField
	Limit         int
	Offset        int
}

const leadColumns = `id, user_id, username, platform, full_name, bio, followers, email, website, location,
	profile_url, company_name, company_industry, company_size, job_title, tech_stack,
	engagement_score, tags, salesforce_id, hubspot_id, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.UserID, &l.Username, &l.Platform, &l.FullName, &l.Bio, &l.Followers, &l.Email, &l.Website, &l.Location,
		&l.ProfileURL, &l.CompanyName, &l.CompanyIndustry, &l.CompanySize, &l.JobTitle, &l.TechStack,
		&l.EngagementScore, &l.Tags, &l.SalesforceID, &l.HubSpotID, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (id, user_id, username, platform, full_name, bio, followers, email, website, location,
			profile_url, company_name, company_industry, company_size, job_title, tech_stack, engagement_score, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING `+leadColumns,
		uuid.New(), params.UserID, params.Username, params.Platform, params.FullName, params.Bio, params.Followers,
		params.Email, params.Website, params.Location, params.ProfileURL, params.CompanyName, params.CompanyIndustry,
		params.CompanySize, params.JobTitle, nonNil(params.TechStack), params.EngagementScore, nonNil(params.Tags),
	)

	lead, err := scanLead(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Lead{}, ErrDuplicate
		}
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id, userID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) GetForSync(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Exists(ctx context.Context, userID uuid.UUID, username, platform string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE user_id = $1 AND username = $2 AND platform = $3)`,
		userID, username, platform,
	).Scan(&exists)
	return exists, err
}

func (r *Repository) Update(ctx context.Context, id, userID uuid.UUID, params UpdateLeadParams) (Lead, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{id, userID}
	argIdx := 3

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Username != nil {
		add("username", *params.Username)
	}
	if params.Platform != nil {
		add("platform", *params.Platform)
	}
	if params.FullName != nil {
		add("full_name", *params.FullName)
	}
	if params.Bio != nil {
		add("bio", *params.Bio)
	}
	if params.Followers != nil {
		add("followers", *params.Followers)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.Website != nil {
		add("website", *params.Website)
	}
	if params.Location != nil {
		add("location", *params.Location)
	}
	if params.ProfileURL != nil {
		add("profile_url", *params.ProfileURL)
	}
	if params.CompanyName != nil {
		add("company_name", *params.CompanyName)
	}
	if params.CompanyIndustry != nil {
		add("company_industry", *params.CompanyIndustry)
	}
	if params.CompanySize != nil {
		add("company_size", *params.CompanySize)
	}
	if params.JobTitle != nil {
		add("job_title", *params.JobTitle)
	}
	if params.TechStack != nil {
		add("tech_stack", nonNil(*params.TechStack))
	}
	if params.EngagementScore != nil {
		add("engagement_score", *params.EngagementScore)
	}
	if params.Tags != nil {
		add("tags", nonNil(*params.Tags))
	}

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $1 AND user_id = $2 RETURNING %s`,
		strings.Join(sets, ", "), leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Lead{}, ErrNotFound
	case isUniqueViolation(err):
		return Lead{}, ErrDuplicate
	}
	return lead, err
}

func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// AddTags appends tags a lead does not have yet, keeping existing order.
func (r *Repository) AddTags(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, tags []string) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET tags = tags || ARRAY(
				SELECT t FROM unnest($3::text[]) WITH ORDINALITY AS n(t, ord)
				WHERE NOT (t = ANY(tags))
				ORDER BY ord
			),
			updated_at = now()
		WHERE user_id = $1 AND id = ANY($2)
	`, userID, ids, tags)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repository) RemoveTags(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, tags []string) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET tags = ARRAY(
				SELECT t FROM unnest(tags) WITH ORDINALITY AS n(t, ord)
				WHERE NOT (t = ANY($3::text[]))
				ORDER BY ord
			),
			updated_at = now()
		WHERE user_id = $1 AND id = ANY($2)
	`, userID, ids, tags)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *Repository) ListByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE user_id = $1 AND id = ANY($2) ORDER BY engagement_score DESC, id`,
		userID, ids)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads
		WHERE %s
		ORDER BY %s DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, mapLeadSortColumn(params.SortBy), argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	whereClauses := []string{"user_id = $1"}
	args := []interface{}{params.UserID}
	argIdx := 2

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(username ILIKE $%d OR full_name ILIKE $%d OR bio ILIKE $%d OR email ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}
	if params.Platform != "" && params.Platform != "all" {
		whereClauses = append(whereClauses, fmt.Sprintf("platform = $%d", argIdx))
		args = append(args, params.Platform)
		argIdx++
	}
	if params.MinFollowers > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("followers >= $%d", argIdx))
		args = append(args, params.MinFollowers)
		argIdx++
	}
	if params.MinEngagement > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("engagement_score >= $%d", argIdx))
		args = append(args, params.MinEngagement)
		argIdx++
	}
	if params.Tag != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("$%d = ANY(tags)", argIdx))
		args = append(args, params.Tag)
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func mapLeadSortColumn(sortBy domain.SortField) string {
	switch sortBy {
	case domain.SortFollowers:
		return "followers"
	case domain.SortCreatedAt:
		return "created_at"
	case domain.SortUpdatedAt:
		return "updated_at"
	case domain.SortUsername:
		return "username"
	default:
		return "engagement_score"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *Repository) SetSalesforceID(ctx context.Context, id uuid.UUID, remoteID string) error {
	return r.setCRMID(ctx, "salesforce_id", id, remoteID)
}

func (r *Repository) SetHubSpotID(ctx context.Context, id uuid.UUID, remoteID string) error {
	return r.setCRMID(ctx, "hubspot_id", id, remoteID)
}

func (r *Repository) setCRMID(ctx context.Context, column string, id uuid.UUID, remoteID string) error {
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE leads SET %s = $2, updated_at = now() WHERE id = $1`, column), id, remoteID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
