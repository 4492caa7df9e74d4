// Package loader implements the incremental lead list: it fetches successive
// pages from the paginated list endpoint and appends their rendered rows to a
// list, triggered by scroll proximity or by a viewport the rows do not fill.
//
// A Loader is not safe for concurrent use. It is driven from one event loop:
// the terminal client's Update loop, or Run for headless use.
package loader

import (
	"context"
	"net/url"
	"strconv"

	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/logger"

	"github.com/google/uuid"
)

// DefaultScrollThreshold is the distance to the bottom, in layout units,
// below which a scroll event requests the next page.
const DefaultScrollThreshold = 100

// Fetcher retrieves one page of the list. Page numbers start at 1.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) (transport.PageResult, error)
}

// Renderer maps a lead to its display fragment. It must escape user text.
type Renderer interface {
	RenderRow(lead transport.LeadSummary) string
}

// Row is one rendered lead. Actions on a row are dispatched by LeadID.
type Row struct {
	LeadID  uuid.UUID
	Content string
}

// Target is the list rows are appended to.
type Target interface {
	Append(rows ...Row)
}

// Viewport reports how the rendered list relates to the visible area.
type Viewport interface {
	// DistanceToBottom is the number of layout units below the visible area.
	DistanceToBottom() int
	// Underfilled reports whether the content is shorter than the visible area.
	Underfilled() bool
}

// Indicator is the loading indicator.
type Indicator interface {
	Show()
	Hide()
}

type nopIndicator struct{}

func (nopIndicator) Show() {}
func (nopIndicator) Hide() {}

// Option configures a Loader.
type Option func(*Loader)

// WithScrollThreshold overrides DefaultScrollThreshold.
func WithScrollThreshold(units int) Option {
	return func(l *Loader) {
		if units > 0 {
			l.threshold = units
		}
	}
}

// WithInitialPage sets the page already displayed when the view mounts.
// Values below 1 are ignored.
func WithInitialPage(page int) Option {
	return func(l *Loader) {
		if page >= 1 {
			l.currentPage = page
		}
	}
}

// WithHasMore seeds hasMore from the preloaded page. A preloaded page that
// reported has_more=false, or came back empty, ends the list before any fetch.
func WithHasMore(more bool) Option {
	return func(l *Loader) {
		l.hasMore = more
	}
}

// Loader holds the pagination state of one list view.
type Loader struct {
	fetcher   Fetcher
	renderer  Renderer
	target    Target
	viewport  Viewport
	indicator Indicator
	log       *logger.Logger
	threshold int

	currentPage int
	isLoading   bool
	hasMore     bool
}

// New creates a loader. hasMore starts out true until a response says otherwise.
func New(fetcher Fetcher, renderer Renderer, target Target, viewport Viewport, indicator Indicator, log *logger.Logger, opts ...Option) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	if indicator == nil {
		indicator = nopIndicator{}
	}
	l := &Loader{
		fetcher:     fetcher,
		renderer:    renderer,
		target:      target,
		viewport:    viewport,
		indicator:   indicator,
		log:         log,
		threshold:   DefaultScrollThreshold,
		currentPage: 1,
		hasMore:     true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CurrentPage returns the last page whose rows are displayed.
func (l *Loader) CurrentPage() int { return l.currentPage }

// HasMore reports whether further pages may exist.
func (l *Loader) HasMore() bool { return l.hasMore }

// Loading reports whether a request is in flight.
func (l *Loader) Loading() bool { return l.isLoading }

// Begin claims the in-flight flag and shows the indicator. It returns the page
// to fetch, or false when a request is in flight, the list is exhausted or
// there is no target. Every successful Begin must be followed by Complete.
func (l *Loader) Begin() (int, bool) {
	if l.isLoading || !l.hasMore || l.target == nil {
		return 0, false
	}
	l.isLoading = true
	l.indicator.Show()
	return l.currentPage + 1, true
}

// Complete applies the outcome of fetching page. A failure is logged and
// leaves hasMore untouched, so a later trigger asks for the same page again.
// An empty page ends the list whatever has_more says. The result reports
// whether the viewport is still underfilled and another page should follow.
func (l *Loader) Complete(page int, result transport.PageResult, err error) bool {
	l.indicator.Hide()
	l.isLoading = false

	if err != nil {
		l.log.PageFetchFailed(page, err)
		return false
	}
	if len(result.Leads) == 0 {
		l.hasMore = false
		return false
	}

	rows := make([]Row, len(result.Leads))
	for i, lead := range result.Leads {
		rows[i] = Row{LeadID: lead.ID, Content: l.renderer.RenderRow(lead)}
	}
	l.target.Append(rows...)
	l.currentPage = page
	l.hasMore = result.HasMore

	return l.hasMore && l.viewport.Underfilled()
}

// RequestNextPage fetches the next page synchronously and keeps fetching
// while the rows do not fill the viewport.
func (l *Loader) RequestNextPage(ctx context.Context) {
	for {
		page, ok := l.Begin()
		if !ok {
			return
		}
		result, err := l.fetcher.FetchPage(ctx, page)
		if !l.Complete(page, result, err) {
			return
		}
	}
}

// ShouldLoad reports whether a scroll to the current position should
// request the next page.
func (l *Loader) ShouldLoad() bool {
	return l.hasMore && !l.isLoading && l.viewport.DistanceToBottom() < l.threshold
}

// OnScroll handles a scroll event.
func (l *Loader) OnScroll(ctx context.Context) {
	if l.ShouldLoad() {
		l.RequestNextPage(ctx)
	}
}

// Mount runs the check made when the view is first shown: an underfilled
// viewport loads pages until it is filled or the list ends.
func (l *Loader) Mount(ctx context.Context) {
	if l.viewport.Underfilled() {
		l.RequestNextPage(ctx)
	}
}

// Run mounts the loader and then handles scroll events from scrolls until
// the channel is closed or ctx is done.
func (l *Loader) Run(ctx context.Context, scrolls <-chan struct{}) error {
	l.Mount(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-scrolls:
			if !ok {
				return nil
			}
			l.OnScroll(ctx)
		}
	}
}

// InitialPage reads the page query parameter of a view URL. Missing or
// invalid values yield 1.
func InitialPage(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 1
	}
	page, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
