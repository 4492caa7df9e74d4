package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"leadscope_backend/internal/leads/loader"
	"leadscope_backend/internal/leads/render"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/logger"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// scrollThresholdRows is the loader threshold in terminal rows.
const scrollThresholdRows = 5

const wheelStep = 3

// leadActions are the per-row actions, dispatched on the row's lead id.
type leadActions interface {
	GetLead(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error)
	DeleteLead(ctx context.Context, id uuid.UUID) error
}

type pageMsg struct {
	page   int
	result transport.PageResult
	err    error
}

type leadMsg struct {
	lead transport.LeadResponse
	err  error
}

type deletedMsg struct {
	id  uuid.UUID
	err error
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
)

// browseModel hosts the loader in a bubbletea program. The model is both the
// loader's target and its viewport. Fetches run as commands and their results
// come back through Update, so the loader is only touched from Update.
type browseModel struct {
	ctx     context.Context
	fetcher loader.Fetcher
	actions leadActions
	loader  *loader.Loader
	keys    keyMap
	title   string

	rows    []loader.Row
	cursor  int
	offset  int
	width   int
	height  int
	loading bool

	confirming bool
	detail     *viewport.Model
	status     string
	alert      bool
}

func newBrowseModel(ctx context.Context, fetcher loader.Fetcher, renderer loader.Renderer, actions leadActions, log *logger.Logger, initialPage int, title string, opts ...loader.Option) *browseModel {
	m := &browseModel{
		ctx:     ctx,
		fetcher: fetcher,
		actions: actions,
		keys:    defaultKeyMap,
		title:   title,
	}
	opts = append([]loader.Option{
		loader.WithScrollThreshold(scrollThresholdRows),
		loader.WithInitialPage(initialPage),
	}, opts...)
	m.loader = loader.New(fetcher, renderer, m, m, m, log, opts...)
	return m
}

// Append implements loader.Target.
func (m *browseModel) Append(rows ...loader.Row) { m.rows = append(m.rows, rows...) }

// Show and Hide implement loader.Indicator.
func (m *browseModel) Show() { m.loading = true }
func (m *browseModel) Hide() { m.loading = false }

// DistanceToBottom implements loader.Viewport, in rows.
func (m *browseModel) DistanceToBottom() int {
	d := len(m.rows) - (m.offset + m.visibleRows())
	if d < 0 {
		return 0
	}
	return d
}

// Underfilled implements loader.Viewport.
func (m *browseModel) Underfilled() bool {
	return m.height > 0 && len(m.rows) < m.visibleRows()
}

func (m *browseModel) visibleRows() int {
	// header and status line
	if v := m.height - 2; v > 0 {
		return v
	}
	return 0
}

func (m *browseModel) Init() tea.Cmd { return nil }

// fetchNext claims the next page and returns the command fetching it, or nil
// when the loader declines.
func (m *browseModel) fetchNext() tea.Cmd {
	page, ok := m.loader.Begin()
	if !ok {
		return nil
	}
	ctx, fetcher := m.ctx, m.fetcher
	return func() tea.Msg {
		result, err := fetcher.FetchPage(ctx, page)
		return pageMsg{page: page, result: result, err: err}
	}
}

// scrolled is the scroll event.
func (m *browseModel) scrolled() tea.Cmd {
	if m.loader.ShouldLoad() {
		return m.fetchNext()
	}
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.detail != nil {
			m.detail.Width, m.detail.Height = msg.Width, m.visibleRows()
		}
		m.clamp()
		if m.Underfilled() {
			return m, m.fetchNext()
		}
		return m, nil

	case pageMsg:
		more := m.loader.Complete(msg.page, msg.result, msg.err)
		if msg.err != nil {
			m.setAlert(fmt.Sprintf("could not load page %d; scroll to retry", msg.page))
		} else {
			m.setStatus("")
		}
		if more {
			return m, m.fetchNext()
		}
		return m, nil

	case leadMsg:
		if msg.err != nil {
			m.setAlert("open failed: " + msg.err.Error())
			return m, nil
		}
		vp := viewport.New(m.width, m.visibleRows())
		vp.SetContent(leadDetail(msg.lead))
		m.detail = &vp
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.setAlert("delete failed: " + msg.err.Error())
			return m, nil
		}
		m.removeRow(msg.id)
		m.setStatus("lead deleted")
		return m, m.scrolled()

	case tea.MouseMsg:
		if m.detail != nil {
			vp, cmd := m.detail.Update(msg)
			m.detail = &vp
			return m, cmd
		}
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.move(wheelStep)
			return m, m.scrolled()
		case tea.MouseButtonWheelUp:
			m.move(-wheelStep)
			return m, m.scrolled()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.detail != nil {
		if key.Matches(msg, m.keys.Cancel) || key.Matches(msg, m.keys.Quit) {
			m.detail = nil
			return m, nil
		}
		vp, cmd := m.detail.Update(msg)
		m.detail = &vp
		return m, cmd
	}

	if m.confirming {
		m.confirming = false
		row, ok := m.selected()
		if !ok || !key.Matches(msg, m.keys.Confirm) {
			m.setStatus("delete cancelled")
			return m, nil
		}
		m.setStatus("deleting…")
		ctx, actions, id := m.ctx, m.actions, row.LeadID
		return m, func() tea.Msg {
			return deletedMsg{id: id, err: actions.DeleteLead(ctx, id)}
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, m.scrolled()
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, m.scrolled()
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.visibleRows())
		return m, m.scrolled()
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.visibleRows())
		return m, m.scrolled()
	case key.Matches(msg, m.keys.Open):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		ctx, actions, id := m.ctx, m.actions, row.LeadID
		return m, func() tea.Msg {
			lead, err := actions.GetLead(ctx, id)
			return leadMsg{lead: lead, err: err}
		}
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); ok {
			m.confirming = true
			m.setStatus("delete this lead? (y/n)")
		}
		return m, nil
	}
	return m, nil
}

func (m *browseModel) selected() (loader.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return loader.Row{}, false
	}
	return m.rows[m.cursor], true
}

// move shifts the cursor by delta and scrolls to keep it visible.
func (m *browseModel) move(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m *browseModel) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if visible > 0 && m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *browseModel) removeRow(id uuid.UUID) {
	for i, r := range m.rows {
		if r.LeadID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	m.clamp()
}

func (m *browseModel) setStatus(s string) { m.status, m.alert = s, false }
func (m *browseModel) setAlert(s string)  { m.status, m.alert = s, true }

func (m *browseModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.title))
	b.WriteByte('\n')

	if m.detail != nil {
		b.WriteString(m.detail.View())
		b.WriteByte('\n')
		b.WriteString(statusStyle.Render("esc to close"))
		return b.String()
	}

	end := m.offset + m.visibleRows()
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.offset; i < end; i++ {
		line := m.rows[i].Content
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for i := end - m.offset; i < m.visibleRows(); i++ {
		b.WriteByte('\n')
	}

	b.WriteString(m.statusLine())
	return b.String()
}

func (m *browseModel) statusLine() string {
	if m.status != "" {
		if m.alert {
			return alertStyle.Render(m.status)
		}
		return statusStyle.Render(m.status)
	}
	switch {
	case m.loading:
		return statusStyle.Render("⟳ loading more leads…")
	case !m.loader.HasMore():
		return statusStyle.Render(fmt.Sprintf("%d leads, end of list", len(m.rows)))
	default:
		return statusStyle.Render(fmt.Sprintf("%d leads, page %d", len(m.rows), m.loader.CurrentPage()))
	}
}

func leadDetail(l transport.LeadResponse) string {
	var b strings.Builder
	field := func(label string, v *string) {
		if v != nil && *v != "" {
			fmt.Fprintf(&b, "%-12s %s\n", label, *v)
		}
	}
	fmt.Fprintf(&b, "@%s on %s\n\n", l.Username, l.Platform)
	field("Name", l.FullName)
	fmt.Fprintf(&b, "%-12s %d\n", "Followers", l.Followers)
	fmt.Fprintf(&b, "%-12s %.2f\n", "Engagement", l.EngagementScore)
	field("Email", l.Email)
	field("Website", l.Website)
	field("Location", l.Location)
	field("Profile", l.ProfileURL)
	field("Company", l.CompanyName)
	field("Industry", l.CompanyIndustry)
	field("Title", l.JobTitle)
	if len(l.Tags) > 0 {
		fmt.Fprintf(&b, "%-12s %s\n", "Tags", strings.Join(l.Tags, ", "))
	}
	field("Bio", l.Bio)
	return b.String()
}

// preload fetches the page the view starts on. It is displayed before the
// loader takes over at the following page.
func preload(ctx context.Context, fetcher loader.Fetcher, renderer loader.Renderer, page int) ([]loader.Row, transport.PageResult, error) {
	result, err := fetcher.FetchPage(ctx, page)
	if err != nil {
		return nil, transport.PageResult{}, err
	}
	rows := make([]loader.Row, len(result.Leads))
	for i, lead := range result.Leads {
		rows[i] = loader.Row{LeadID: lead.ID, Content: renderer.RenderRow(lead)}
	}
	return rows, result, nil
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	if err := requireToken(); err != nil {
		return err
	}
	log, closeLog, err := openLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	client, err := loader.NewPageClient(dashboardURL(baseURL, search, platform, sortBy), token)
	if err != nil {
		return err
	}
	renderer := render.NewTerminal(render.Printer(terminalLocale()))

	start := page
	if start < 1 {
		start = 1
	}
	rows, first, err := preload(ctx, client, renderer, start)
	if err != nil {
		return err
	}

	m := newBrowseModel(ctx, client, renderer, newAPIClient(baseURL, token), log, start, "LeadScope · "+describeFilters(),
		loader.WithHasMore(first.HasMore && len(rows) > 0))
	m.Append(rows...)

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	return err
}

func describeFilters() string {
	parts := []string{"platform: " + platform}
	if search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", search))
	}
	if sortBy != "" {
		parts = append(parts, "sort: "+sortBy)
	}
	return strings.Join(parts, " · ")
}
