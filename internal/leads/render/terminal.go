package render

import (
	"strings"

	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/sanitize"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"
)

var (
	positiveColor = lipgloss.Color("#22c55e")
	warningColor  = lipgloss.Color("#f59e0b")
	negativeColor = lipgloss.Color("#ef4444")
	mutedColor    = lipgloss.Color("#6b7280")

	badgeColors = map[string]lipgloss.Color{
		"primary":   lipgloss.Color("#3b82f6"),
		"info":      lipgloss.Color("#0ea5e9"),
		"danger":    lipgloss.Color("#e11d48"),
		"warning":   lipgloss.Color("#eab308"),
		"dark":      lipgloss.Color("#a1a1aa"),
		"secondary": mutedColor,
	}
)

const (
	usernameWidth  = 22
	badgeWidth     = 14
	followersWidth = 12
	barCells       = 10
)

// Terminal renders one lead per line for the terminal client. Control
// characters are stripped from user supplied text.
type Terminal struct {
	printer   *message.Printer
	username  lipgloss.Style
	muted     lipgloss.Style
	followers lipgloss.Style
}

// NewTerminal creates a terminal renderer formatting numbers for p.
func NewTerminal(p *message.Printer) *Terminal {
	if p == nil {
		p = Printer(DefaultTag)
	}
	return &Terminal{
		printer:   p,
		username:  lipgloss.NewStyle().Bold(true).Width(usernameWidth).MaxWidth(usernameWidth),
		muted:     lipgloss.NewStyle().Foreground(mutedColor),
		followers: lipgloss.NewStyle().Width(followersWidth).Align(lipgloss.Right),
	}
}

// RenderRow renders lead as a single line.
func (t *Terminal) RenderRow(lead transport.LeadSummary) string {
	badge := PlatformBadge(lead.Platform)
	badgeStyle := lipgloss.NewStyle().
		Foreground(badgeColors[badge.Color]).
		Width(badgeWidth).
		MaxWidth(badgeWidth)

	parts := []string{
		t.username.Render("@" + truncate(sanitize.Terminal(lead.Username), usernameWidth-1)),
		badgeStyle.Render(badge.Glyph + " " + sanitize.Terminal(badge.Label)),
		t.followers.Render(FormatFollowers(t.printer, lead.Followers)),
		" " + t.engagementBar(lead.EngagementScore),
	}
	if lead.Location != nil && *lead.Location != "" {
		parts = append(parts, t.muted.Render(sanitize.Terminal(*lead.Location)))
	}
	if len(lead.Tags) > 0 {
		tags := make([]string, len(lead.Tags))
		for i, tag := range lead.Tags {
			tags[i] = "#" + sanitize.Terminal(tag)
		}
		parts = append(parts, t.muted.Render(strings.Join(tags, " ")))
	}
	return strings.Join(parts, " ")
}

func (t *Terminal) engagementBar(score float64) string {
	filled := int(clampPercent(score)/10 + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barCells-filled)

	var color lipgloss.Color
	switch EngagementBucket(score) {
	case BucketPositive:
		color = positiveColor
	case BucketWarning:
		color = warningColor
	default:
		color = negativeColor
	}
	return lipgloss.NewStyle().Foreground(color).Render(bar + " " + FormatScore(t.printer, score))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
