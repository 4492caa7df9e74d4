package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"leadscope_backend/internal/leads/transport"

	"github.com/a-h/templ"
	"golang.org/x/text/message"
)

// Row actions. The dashboard script dispatches on data-action.
const (
	ActionView   = "view"
	ActionEdit   = "edit"
	ActionChat   = "chat"
	ActionDelete = "delete"
)

// HTML renders dashboard table rows. All user supplied text is escaped.
type HTML struct {
	printer *message.Printer
}

// NewHTML creates an HTML renderer formatting numbers for p.
func NewHTML(p *message.Printer) *HTML {
	if p == nil {
		p = Printer(DefaultTag)
	}
	return &HTML{printer: p}
}

// Row returns the table row component for lead.
func (h *HTML) Row(lead transport.LeadSummary) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return h.writeRow(w, lead)
	})
}

// Rows returns one component rendering every lead in order.
func (h *HTML) Rows(leads []transport.LeadSummary) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		for _, lead := range leads {
			if err := h.writeRow(w, lead); err != nil {
				return err
			}
		}
		return nil
	})
}

// RenderRow renders lead to an HTML string.
func (h *HTML) RenderRow(lead transport.LeadSummary) string {
	var buf bytes.Buffer
	_ = h.writeRow(&buf, lead)
	return buf.String()
}

func (h *HTML) writeRow(w io.Writer, lead transport.LeadSummary) error {
	id := templ.EscapeString(lead.ID.String())
	badge := PlatformBadge(lead.Platform)
	bucket := EngagementBucket(lead.EngagementScore)
	percent := strconv.FormatFloat(clampPercent(lead.EngagementScore), 'f', 1, 64)

	e := &errWriter{w: w}
	e.printf(`<tr class="lead-row" data-lead-id="%s">`, id)

	e.printf(`<td class="lead-identity"><div class="lead-username">@%s</div>`, templ.EscapeString(lead.Username))
	if lead.FullName != nil && *lead.FullName != "" {
		e.printf(`<div class="lead-name text-muted small">%s</div>`, templ.EscapeString(*lead.FullName))
	}
	e.printf(`</td>`)

	e.printf(`<td><span class="badge bg-%s"><i class="%s"></i> %s</span></td>`,
		badge.Color, badge.Icon, templ.EscapeString(badge.Label))

	e.printf(`<td class="lead-followers">%s</td>`, templ.EscapeString(FormatFollowers(h.printer, lead.Followers)))

	e.printf(`<td><div class="progress" role="progressbar" aria-label="Engagement" aria-valuenow="%s" aria-valuemin="0" aria-valuemax="100" data-engagement="%s">`,
		percent, bucket)
	e.printf(`<div class="progress-bar %s" style="width: %s%%">%s%%</div></div></td>`,
		bucket.bootstrapClass(), percent, templ.EscapeString(FormatScore(h.printer, lead.EngagementScore)))

	location := "-"
	if lead.Location != nil && *lead.Location != "" {
		location = *lead.Location
	}
	e.printf(`<td class="lead-location">%s</td>`, templ.EscapeString(location))

	e.printf(`<td class="lead-tags">`)
	for _, tag := range lead.Tags {
		e.printf(`<span class="badge bg-light text-dark me-1">%s</span>`, templ.EscapeString(tag))
	}
	e.printf(`</td>`)

	e.printf(`<td class="lead-actions text-end">`)
	for _, action := range []struct{ name, label, icon string }{
		{ActionView, "View", "fas fa-eye"},
		{ActionEdit, "Edit", "fas fa-pen"},
		{ActionChat, "Chat", "fas fa-comments"},
		{ActionDelete, "Delete", "fas fa-trash"},
	} {
		e.printf(`<button type="button" class="btn btn-sm btn-link" data-action="%s" data-lead-id="%s" title="%s"><i class="%s"></i></button>`,
			action.name, id, action.label, action.icon)
	}
	e.printf(`</td></tr>`)
	return e.err
}

// errWriter keeps the first write error so row rendering reads top to bottom.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
