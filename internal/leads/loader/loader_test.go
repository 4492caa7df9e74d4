package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type response struct {
	result transport.PageResult
	err    error
}

// scriptedFetcher answers each page with queued responses. The last queued
// response of a page is repeated.
type scriptedFetcher struct {
	pages map[int][]response
	calls []int
}

func (f *scriptedFetcher) FetchPage(_ context.Context, page int) (transport.PageResult, error) {
	f.calls = append(f.calls, page)
	queue := f.pages[page]
	if len(queue) == 0 {
		return transport.PageResult{}, fmt.Errorf("no response for page %d", page)
	}
	r := queue[0]
	if len(queue) > 1 {
		f.pages[page] = queue[1:]
	}
	return r.result, r.err
}

type textRenderer struct{}

func (textRenderer) RenderRow(lead transport.LeadSummary) string { return "row:" + lead.Username }

type listTarget struct {
	rows []Row
}

func (t *listTarget) Append(rows ...Row) { t.rows = append(t.rows, rows...) }

// fixedViewport shows `visible` rows; it is scrolled to the bottom unless
// distance is set.
type fixedViewport struct {
	target   *listTarget
	visible  int
	distance int
}

func (v *fixedViewport) DistanceToBottom() int { return v.distance }
func (v *fixedViewport) Underfilled() bool     { return len(v.target.rows) < v.visible }

type recordingIndicator struct {
	visible bool
	shows   int
	hides   int
}

func (i *recordingIndicator) Show() { i.visible = true; i.shows++ }
func (i *recordingIndicator) Hide() { i.visible = false; i.hides++ }

func makeLeads(prefix string, n int) []transport.LeadSummary {
	leads := make([]transport.LeadSummary, n)
	for i := range leads {
		leads[i] = transport.LeadSummary{ID: uuid.New(), Username: fmt.Sprintf("%s%02d", prefix, i), Platform: "instagram", Tags: []string{}}
	}
	return leads
}

func page(leads []transport.LeadSummary, hasMore bool) []response {
	return []response{{result: transport.PageResult{Leads: leads, HasMore: hasMore}}}
}

type fixture struct {
	fetcher   *scriptedFetcher
	target    *listTarget
	viewport  *fixedViewport
	indicator *recordingIndicator
	logs      *bytes.Buffer
	loader    *Loader
}

func newFixture(t *testing.T, preloaded int, pages map[int][]response, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		fetcher:   &scriptedFetcher{pages: pages},
		target:    &listTarget{},
		indicator: &recordingIndicator{},
		logs:      &bytes.Buffer{},
	}
	for _, lead := range makeLeads("pre", preloaded) {
		f.target.rows = append(f.target.rows, Row{LeadID: lead.ID, Content: "row:" + lead.Username})
	}
	f.viewport = &fixedViewport{target: f.target, visible: 10}
	f.loader = New(f.fetcher, textRenderer{}, f.target, f.viewport, f.indicator, logger.NewWithWriter("production", f.logs), opts...)
	return f
}

func TestScrollLoadsPagesUntilExhausted(t *testing.T) {
	second := makeLeads("b", 20)
	third := makeLeads("c", 5)
	f := newFixture(t, 20, map[int][]response{
		2: page(second, true),
		3: page(third, false),
	})
	ctx := context.Background()

	f.loader.OnScroll(ctx)
	require.Len(t, f.target.rows, 40)
	require.Equal(t, 2, f.loader.CurrentPage())
	require.True(t, f.loader.HasMore())

	f.loader.OnScroll(ctx)
	require.Len(t, f.target.rows, 45)
	require.Equal(t, 3, f.loader.CurrentPage())
	require.False(t, f.loader.HasMore())

	for i := 0; i < 5; i++ {
		f.loader.OnScroll(ctx)
		f.loader.Mount(ctx)
		f.loader.RequestNextPage(ctx)
	}
	require.Equal(t, []int{2, 3}, f.fetcher.calls)

	expected := append(append([]transport.LeadSummary{}, second...), third...)
	for i, lead := range expected {
		row := f.target.rows[20+i]
		require.Equal(t, lead.ID, row.LeadID)
		require.Equal(t, "row:"+lead.Username, row.Content)
	}

	require.False(t, f.indicator.visible)
	require.Equal(t, 2, f.indicator.shows)
	require.Equal(t, 2, f.indicator.hides)
}

func TestFailedFetchRetriesSamePage(t *testing.T) {
	second := makeLeads("b", 20)
	f := newFixture(t, 20, map[int][]response{
		2: {
			{err: errors.New("fetch page 2: unexpected status 500")},
			{result: transport.PageResult{Leads: second, HasMore: false}},
		},
	})
	ctx := context.Background()

	f.loader.OnScroll(ctx)
	require.Len(t, f.target.rows, 20)
	require.False(t, f.indicator.visible)
	require.False(t, f.loader.Loading())
	require.True(t, f.loader.HasMore())
	require.Equal(t, 1, f.loader.CurrentPage())
	require.Contains(t, f.logs.String(), "page_fetch_failed")

	f.loader.OnScroll(ctx)
	require.Equal(t, []int{2, 2}, f.fetcher.calls)
	require.Len(t, f.target.rows, 40)
	require.Equal(t, 2, f.loader.CurrentPage())
}

func TestEmptyPageEndsListDespiteHasMore(t *testing.T) {
	f := newFixture(t, 20, map[int][]response{
		2: page([]transport.LeadSummary{}, true),
	})
	ctx := context.Background()

	f.loader.OnScroll(ctx)
	require.False(t, f.loader.HasMore())
	require.Equal(t, 1, f.loader.CurrentPage())

	f.loader.OnScroll(ctx)
	require.Equal(t, []int{2}, f.fetcher.calls)
	require.Len(t, f.target.rows, 20)
}

func TestTriggerWhileLoadingIsIgnored(t *testing.T) {
	f := newFixture(t, 20, map[int][]response{
		2: page(makeLeads("b", 20), true),
	})
	ctx := context.Background()

	next, ok := f.loader.Begin()
	require.True(t, ok)
	require.Equal(t, 2, next)
	require.True(t, f.indicator.visible)

	f.loader.OnScroll(ctx)
	f.loader.Mount(ctx)
	_, again := f.loader.Begin()
	require.False(t, again)
	require.Empty(t, f.fetcher.calls)

	f.loader.Complete(next, transport.PageResult{Leads: makeLeads("b", 20), HasMore: true}, nil)
	require.False(t, f.loader.Loading())
	require.Len(t, f.target.rows, 40)
}

func TestUnderfilledViewportChainsRequests(t *testing.T) {
	f := newFixture(t, 0, map[int][]response{
		2: page(makeLeads("b", 4), true),
		3: page(makeLeads("c", 4), true),
		4: page(makeLeads("d", 4), true),
	})
	f.viewport.visible = 10
	f.viewport.distance = 500

	f.loader.Mount(context.Background())
	require.Equal(t, []int{2, 3, 4}, f.fetcher.calls)
	require.Len(t, f.target.rows, 12)
	require.True(t, f.loader.HasMore())
}

func TestFilledViewportDoesNotLoadOnMount(t *testing.T) {
	f := newFixture(t, 20, map[int][]response{})
	f.viewport.distance = 500

	f.loader.Mount(context.Background())
	f.loader.OnScroll(context.Background())
	require.Empty(t, f.fetcher.calls)
}

func TestScrollThreshold(t *testing.T) {
	pages := map[int][]response{2: page(makeLeads("b", 1), true)}

	f := newFixture(t, 20, pages)
	f.viewport.distance = DefaultScrollThreshold
	f.loader.OnScroll(context.Background())
	require.Empty(t, f.fetcher.calls)

	f.viewport.distance = DefaultScrollThreshold - 1
	f.loader.OnScroll(context.Background())
	require.Equal(t, []int{2}, f.fetcher.calls)

	g := newFixture(t, 20, pages, WithScrollThreshold(10))
	g.viewport.distance = 50
	require.False(t, g.loader.ShouldLoad())
	g.viewport.distance = 9
	require.True(t, g.loader.ShouldLoad())
}

func TestInitialPageOption(t *testing.T) {
	f := newFixture(t, 20, map[int][]response{}, WithInitialPage(3))
	next, ok := f.loader.Begin()
	require.True(t, ok)
	require.Equal(t, 4, next)

	g := newFixture(t, 20, map[int][]response{}, WithInitialPage(0))
	require.Equal(t, 1, g.loader.CurrentPage())
}

func TestHasMoreOptionEndsListBeforeAnyFetch(t *testing.T) {
	f := newFixture(t, 3, map[int][]response{2: page(makeLeads("b", 5), false)}, WithHasMore(false))
	ctx := context.Background()

	f.loader.Mount(ctx)
	f.loader.OnScroll(ctx)
	f.loader.RequestNextPage(ctx)

	require.Empty(t, f.fetcher.calls)
	require.Len(t, f.target.rows, 3)
	require.Zero(t, f.indicator.shows)
}

func TestMissingTargetIssuesNoRequest(t *testing.T) {
	fetcher := &scriptedFetcher{pages: map[int][]response{2: page(makeLeads("b", 1), true)}}
	l := New(fetcher, textRenderer{}, nil, &fixedViewport{target: &listTarget{}}, nil, nil)

	l.RequestNextPage(context.Background())
	require.Empty(t, fetcher.calls)
}

func TestInitialPage(t *testing.T) {
	cases := map[string]int{
		"http://localhost/dashboard?page=3&search=x": 3,
		"http://localhost/dashboard?page=0":          1,
		"http://localhost/dashboard?page=-2":         1,
		"http://localhost/dashboard?page=abc":        1,
		"http://localhost/dashboard":                 1,
		"%zz":                                        1,
	}
	for raw, want := range cases {
		require.Equal(t, want, InitialPage(raw), raw)
	}
}

func TestRunDrainsScrollEventsUntilClosed(t *testing.T) {
	f := newFixture(t, 20, map[int][]response{
		2: page(makeLeads("b", 20), true),
		3: page(makeLeads("c", 5), false),
	})

	scrolls := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- f.loader.Run(context.Background(), scrolls) }()

	scrolls <- struct{}{}
	scrolls <- struct{}{}
	scrolls <- struct{}{}
	close(scrolls)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the scroll channel closed")
	}
	require.Equal(t, []int{2, 3}, f.fetcher.calls)
	require.Len(t, f.target.rows, 45)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f := newFixture(t, 20, map[int][]response{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.loader.Run(ctx, make(chan struct{})) }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoaderAgainstPageClient(t *testing.T) {
	srv := newLeadServer(t, 45, 20)
	client, err := NewPageClient(srv.URL+"/dashboard?sort_by=followers", "token")
	require.NoError(t, err)

	first, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, first.Leads, 20)

	target := &listTarget{}
	for _, lead := range first.Leads {
		target.Append(Row{LeadID: lead.ID, Content: lead.Username})
	}
	viewport := &fixedViewport{target: target, visible: 10}
	l := New(client, textRenderer{}, target, viewport, nil, logger.Discard())

	for l.HasMore() {
		l.OnScroll(context.Background())
	}
	require.Len(t, target.rows, 45)
	require.Equal(t, 3, l.CurrentPage())
	for i, row := range target.rows[20:] {
		require.True(t, strings.HasSuffix(row.Content, fmt.Sprintf("lead%02d", 20+i)))
	}

	http.DefaultTransport.(*http.Transport).CloseIdleConnections()
}
