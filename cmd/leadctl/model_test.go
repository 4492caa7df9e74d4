package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leadscope_backend/internal/leads/loader"
	"leadscope_backend/internal/leads/render"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type pageFetcher struct {
	pages map[int]transport.PageResult
	fail  map[int]int
	calls []int
}

func (f *pageFetcher) FetchPage(_ context.Context, page int) (transport.PageResult, error) {
	f.calls = append(f.calls, page)
	if f.fail[page] > 0 {
		f.fail[page]--
		return transport.PageResult{}, errors.New("connection refused")
	}
	return f.pages[page], nil
}

type plainRenderer struct{}

func (plainRenderer) RenderRow(lead transport.LeadSummary) string { return lead.Username }

type fakeActions struct {
	deleted []uuid.UUID
	opened  []uuid.UUID
}

func (a *fakeActions) GetLead(_ context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	a.opened = append(a.opened, id)
	return transport.LeadResponse{ID: id, Username: "opened", Platform: "github"}, nil
}

func (a *fakeActions) DeleteLead(_ context.Context, id uuid.UUID) error {
	a.deleted = append(a.deleted, id)
	return nil
}

func leadsPage(prefix string, n int, hasMore bool) transport.PageResult {
	out := transport.PageResult{HasMore: hasMore}
	for i := 0; i < n; i++ {
		out.Leads = append(out.Leads, transport.LeadSummary{ID: uuid.New(), Username: fmt.Sprintf("%s%d", prefix, i)})
	}
	return out
}

func newTestModel(f *pageFetcher, actions *fakeActions, initial int) *browseModel {
	return newBrowseModel(context.Background(), f, plainRenderer{}, actions, logger.Discard(), initial, "leads")
}

// drain runs cmd and feeds resulting messages back into the model until no
// command remains.
func drain(t *testing.T, m *browseModel, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 20 {
			t.Fatalf("expected command chain to settle")
		}
		_, cmd = m.Update(cmd())
	}
}

func press(t *testing.T, m *browseModel, keys string) {
	t.Helper()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	drain(t, m, cmd)
}

func TestMountFillsUnderfilledViewport(t *testing.T) {
	f := &pageFetcher{pages: map[int]transport.PageResult{
		2: leadsPage("b", 3, true),
		3: leadsPage("c", 3, true),
		4: leadsPage("d", 3, true),
	}}
	m := newTestModel(f, &fakeActions{}, 1)
	m.Append(loader.Row{LeadID: uuid.New(), Content: "a0"})

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	drain(t, m, cmd)

	require.Equal(t, []int{2, 3}, f.calls)
	require.Len(t, m.rows, 7)
	require.False(t, m.Underfilled())
	require.Equal(t, 3, m.loader.CurrentPage())
}

func TestPreloadedLastPageIssuesNoFetch(t *testing.T) {
	f := &pageFetcher{pages: map[int]transport.PageResult{1: leadsPage("a", 3, false)}}
	renderer := plainRenderer{}
	rows, first, err := preload(context.Background(), f, renderer, 1)
	require.NoError(t, err)

	m := newBrowseModel(context.Background(), f, renderer, &fakeActions{}, logger.Discard(), 1, "leads",
		loader.WithHasMore(first.HasMore && len(rows) > 0))
	m.Append(rows...)

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	drain(t, m, cmd)
	press(t, m, "j")
	_, cmd = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	drain(t, m, cmd)

	require.Equal(t, []int{1}, f.calls)
	require.Len(t, m.rows, 3)
	require.Contains(t, m.View(), "end of list")
}

func TestPreloadedEmptyPageIssuesNoFetch(t *testing.T) {
	f := &pageFetcher{pages: map[int]transport.PageResult{1: {HasMore: true}}}
	rows, first, err := preload(context.Background(), f, plainRenderer{}, 1)
	require.NoError(t, err)

	m := newBrowseModel(context.Background(), f, plainRenderer{}, &fakeActions{}, logger.Discard(), 1, "leads",
		loader.WithHasMore(first.HasMore && len(rows) > 0))
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	drain(t, m, cmd)

	require.Equal(t, []int{1}, f.calls)
	require.Empty(t, m.rows)
}

func TestTerminalLocalePrefersLCAll(t *testing.T) {
	t.Setenv("LC_ALL", "de_DE.UTF-8")
	t.Setenv("LC_NUMERIC", "")
	t.Setenv("LANG", "fr_FR.UTF-8")
	require.Equal(t, language.German, terminalLocale())

	t.Setenv("LC_ALL", "")
	require.Equal(t, language.French, terminalLocale())

	t.Setenv("LANG", "")
	require.Equal(t, render.DefaultTag, terminalLocale())
}

func TestScrollWhileLoadingDoesNotFetchTwice(t *testing.T) {
	f := &pageFetcher{pages: map[int]transport.PageResult{2: leadsPage("b", 10, true)}}
	m := newTestModel(f, &fakeActions{}, 1)
	m.Append(leadsRows(8)...)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 7})

	_, first := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if first == nil {
		t.Fatalf("expected scroll near the end to start a fetch")
	}
	if !m.loading {
		t.Fatalf("expected loading indicator while the fetch is in flight")
	}
	_, second := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if second != nil {
		t.Fatalf("expected no second fetch while loading")
	}

	drain(t, m, first)
	require.Equal(t, []int{2}, f.calls)
	require.Len(t, m.rows, 18)
	require.False(t, m.loading)
}

func TestFetchErrorKeepsRowsAndRetriesSamePage(t *testing.T) {
	f := &pageFetcher{
		pages: map[int]transport.PageResult{2: leadsPage("b", 5, false)},
		fail:  map[int]int{2: 1},
	}
	m := newTestModel(f, &fakeActions{}, 1)
	m.Append(leadsRows(8)...)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 7})

	press(t, m, "j")
	require.Len(t, m.rows, 8)
	require.True(t, m.loader.HasMore())
	require.True(t, m.alert)

	press(t, m, "j")
	require.Equal(t, []int{2, 2}, f.calls)
	require.Len(t, m.rows, 13)
	require.False(t, m.loader.HasMore())
	require.Contains(t, m.View(), "end of list")
}

func TestMouseWheelTriggersLoad(t *testing.T) {
	f := &pageFetcher{pages: map[int]transport.PageResult{2: leadsPage("b", 4, false)}}
	m := newTestModel(f, &fakeActions{}, 1)
	m.Append(leadsRows(12)...)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 12})
	require.Empty(t, f.calls)

	_, cmd := m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	drain(t, m, cmd)

	require.Equal(t, []int{2}, f.calls)
	require.Len(t, m.rows, 16)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	f := &pageFetcher{pages: map[int]transport.PageResult{}}
	actions := &fakeActions{}
	m := newTestModel(f, actions, 1)
	rows := leadsRows(3)
	m.Append(rows...)
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	drain(t, m, cmd)
	// page 2 answered empty, so the list has ended
	require.False(t, m.loader.HasMore())

	press(t, m, "d")
	press(t, m, "n")
	require.Empty(t, actions.deleted)
	require.Len(t, m.rows, 3)

	press(t, m, "j")
	press(t, m, "d")
	press(t, m, "y")
	require.Equal(t, []uuid.UUID{rows[1].LeadID}, actions.deleted)
	require.Len(t, m.rows, 2)
	require.Equal(t, rows[2].LeadID, m.rows[1].LeadID)
}

func TestOpenShowsDetailForSelectedRow(t *testing.T) {
	f := &pageFetcher{pages: map[int]transport.PageResult{}}
	actions := &fakeActions{}
	m := newTestModel(f, actions, 1)
	rows := leadsRows(2)
	m.Append(rows...)
	_, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	drain(t, m, cmd)

	press(t, m, "o")
	require.Equal(t, []uuid.UUID{rows[0].LeadID}, actions.opened)
	require.NotNil(t, m.detail)
	require.Contains(t, m.View(), "@opened on github")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Nil(t, m.detail)
}

func TestDumpPrintsEveryPage(t *testing.T) {
	f := &pageFetcher{pages: map[int]transport.PageResult{
		3: leadsPage("c", 2, true),
		4: leadsPage("d", 2, false),
	}}
	var out bytes.Buffer
	view := &dumpView{out: &out, height: 3}
	view.Append(leadsRows(2)...)

	l := loader.New(f, plainRenderer{}, view, view, nil, logger.Discard(), loader.WithInitialPage(2))
	complete, err := dumpAll(context.Background(), l, view)
	require.NoError(t, err)
	require.True(t, complete)
	require.Equal(t, []int{3, 4}, f.calls)
	require.Equal(t, "r0\nr1\nc0\nc1\nd0\nd1\n", out.String())
}

func TestDumpStopsWhenServerKeepsFailing(t *testing.T) {
	f := &pageFetcher{pages: map[int]transport.PageResult{}, fail: map[int]int{2: 100}}
	view := &dumpView{out: &bytes.Buffer{}, height: 1}
	view.Append(leadsRows(1)...)

	l := loader.New(f, plainRenderer{}, view, view, nil, logger.Discard())
	complete, err := dumpAll(context.Background(), l, view)
	require.NoError(t, err)
	require.False(t, complete)
	require.Len(t, f.calls, maxStalls)
}

func TestAPIClientDeleteSendsBearerToken(t *testing.T) {
	id := uuid.New()
	var gotAuth, gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth, gotPath, gotMethod = r.Header.Get("Authorization"), r.URL.Path, r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := newAPIClient(srv.URL+"/", "tok").DeleteLead(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/api/v1/leads/"+id.String(), gotPath)
}

func TestAPIClientSurfacesErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"lead not found"}`))
	}))
	defer srv.Close()

	_, err := newAPIClient(srv.URL, "tok").GetLead(context.Background(), uuid.New())
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.True(t, strings.Contains(err.Error(), "lead not found"))
}

func TestDashboardURLOmitsDefaultFilters(t *testing.T) {
	require.Equal(t, "http://x/dashboard", dashboardURL("http://x/", "", "all", ""))
	require.Equal(t, "http://x/dashboard?platform=github&search=ada&sort_by=followers",
		dashboardURL("http://x", "ada", "github", "followers"))
}

func leadsRows(n int) []loader.Row {
	rows := make([]loader.Row, n)
	for i := range rows {
		rows[i] = loader.Row{LeadID: uuid.New(), Content: fmt.Sprintf("r%d", i)}
	}
	return rows
}
