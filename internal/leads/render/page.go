package render

import (
	"context"
	"io"
	"strconv"

	"leadscope_backend/internal/leads/domain"
	"leadscope_backend/internal/leads/transport"

	"github.com/a-h/templ"
)

// DashboardData is everything the dashboard page shows.
type DashboardData struct {
	Username    string
	Stats       transport.StatsResponse
	Filters     transport.ListLeadsRequest
	Leads       []transport.LeadSummary
	CurrentPage int
	HasMore     bool
}

var sortOptions = []struct {
	field domain.SortField
	label string
}{
	{domain.SortEngagement, "Engagement"},
	{domain.SortFollowers, "Followers"},
	{domain.SortCreatedAt, "Newest"},
	{domain.SortUpdatedAt, "Recently updated"},
	{domain.SortUsername, "Username"},
}

// Dashboard returns the full dashboard page. The list element carries the
// loader state; /static/loader.js fetches the following pages.
func (h *HTML) Dashboard(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := &errWriter{w: w}
		e.printf(`<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		e.printf(`<title>Leads dashboard</title>`)
		e.printf(`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">`)
		e.printf(`<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css">`)
		e.printf(`</head><body><main class="container py-4">`)
		e.printf(`<h1 class="h3 mb-4">Welcome, %s</h1>`, templ.EscapeString(data.Username))

		h.writeStats(e, data.Stats)
		writeFilters(e, data.Filters)

		e.printf(`<table class="table align-middle"><thead><tr><th>Lead</th><th>Platform</th><th>Followers</th><th>Engagement</th><th>Location</th><th>Tags</th><th></th></tr></thead>`)
		e.printf(`<tbody id="lead-list" data-current-page="%d" data-has-more="%t">`, data.CurrentPage, data.HasMore)
		if e.err != nil {
			return e.err
		}
		if err := h.Rows(data.Leads).Render(ctx, w); err != nil {
			return err
		}
		e.printf(`</tbody></table>`)
		if len(data.Leads) == 0 {
			e.printf(`<p class="text-muted text-center" id="lead-list-empty">No leads match these filters.</p>`)
		}
		e.printf(`<div id="loading-indicator" class="text-center py-3" hidden><div class="spinner-border" role="status"><span class="visually-hidden">Loading...</span></div></div>`)
		e.printf(`</main><script src="/static/loader.js" defer></script></body></html>`)
		return e.err
	})
}

func (h *HTML) writeStats(e *errWriter, stats transport.StatsResponse) {
	e.printf(`<div class="row g-3 mb-4" id="lead-stats">`)
	cards := []struct{ label, value string }{
		{"Total leads", FormatFollowers(h.printer, int64(stats.TotalLeads))},
		{"Total followers", FormatFollowers(h.printer, stats.TotalFollowers)},
		{"Avg. followers", FormatScore(h.printer, stats.AvgFollowers)},
		{"Avg. engagement", FormatScore(h.printer, stats.AvgEngagement) + "%"},
	}
	for _, card := range cards {
		e.printf(`<div class="col-md-3"><div class="card"><div class="card-body"><div class="text-muted small">%s</div><div class="fs-4">%s</div></div></div></div>`,
			card.label, templ.EscapeString(card.value))
	}
	e.printf(`</div>`)
}

func writeFilters(e *errWriter, f transport.ListLeadsRequest) {
	e.printf(`<form class="row g-2 mb-3" method="get" action="/dashboard">`)
	e.printf(`<div class="col-md-3"><input class="form-control" type="search" name="search" placeholder="Search" value="%s"></div>`, templ.EscapeString(f.Search))

	e.printf(`<div class="col-md-2"><select class="form-select" name="platform">`)
	writeOption(e, "all", "All platforms", f.Platform == "" || f.Platform == "all")
	for _, p := range domain.Platforms {
		writeOption(e, p.String(), PlatformBadge(p.String()).Label, f.Platform == p.String())
	}
	e.printf(`</select></div>`)

	e.printf(`<div class="col-md-2"><input class="form-control" type="number" min="0" name="min_followers" placeholder="Min followers" value="%s"></div>`, formatOptionalInt(f.MinFollowers))
	e.printf(`<div class="col-md-2"><input class="form-control" type="number" min="0" max="100" step="0.1" name="min_engagement" placeholder="Min engagement" value="%s"></div>`, formatOptionalFloat(f.MinEngagement))

	e.printf(`<div class="col-md-2"><select class="form-select" name="sort_by">`)
	selected := domain.ParseSortField(f.SortBy)
	for _, opt := range sortOptions {
		writeOption(e, string(opt.field), opt.label, selected == opt.field)
	}
	e.printf(`</select></div>`)
	e.printf(`<div class="col-md-1"><button class="btn btn-primary w-100" type="submit">Filter</button></div></form>`)
}

func writeOption(e *errWriter, value, label string, selected bool) {
	attr := ""
	if selected {
		attr = " selected"
	}
	e.printf(`<option value="%s"%s>%s</option>`, templ.EscapeString(value), attr, templ.EscapeString(label))
}

func formatOptionalInt(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func formatOptionalFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
