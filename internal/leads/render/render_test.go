package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"leadscope_backend/internal/leads/transport"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

func sampleLead() transport.LeadSummary {
	name := "Jane <b>Doe</b>"
	loc := "Berlin"
	return transport.LeadSummary{
		ID:              uuid.MustParse("7f1c9a52-4a0e-4a57-9f55-2d4b3c7b8e10"),
		Username:        "<script>alert(1)</script>",
		FullName:        &name,
		Platform:        "instagram",
		Followers:       1234567,
		EngagementScore: 42.5,
		Location:        &loc,
		Tags:            []string{"fitness", `"quoted"`},
	}
}

func TestEngagementBucketBoundaries(t *testing.T) {
	cases := map[float64]Bucket{
		100:   BucketPositive,
		50.01: BucketPositive,
		50:    BucketWarning,
		25.01: BucketWarning,
		25:    BucketNegative,
		0:     BucketNegative,
	}
	for score, want := range cases {
		if got := EngagementBucket(score); got != want {
			t.Fatalf("score %v: expected %s, got %s", score, want, got)
		}
	}
}

func TestPlatformBadgeFallsBack(t *testing.T) {
	if b := PlatformBadge("LinkedIn"); b.Label != "LinkedIn" || b.Color != "primary" {
		t.Fatalf("unexpected linkedin badge: %+v", b)
	}
	b := PlatformBadge("myspace")
	if b.Label != "myspace" || b.Color != "secondary" || b.Icon != "fas fa-globe" {
		t.Fatalf("expected generic badge for unknown platform, got %+v", b)
	}
	if b := PlatformBadge(""); b.Label != "Other" {
		t.Fatalf("expected empty platform to be labelled Other, got %q", b.Label)
	}
}

func TestResolveTag(t *testing.T) {
	if got := ResolveTag("de-DE,de;q=0.9,en;q=0.5"); got != language.German {
		t.Fatalf("expected German, got %s", got)
	}
	if got := ResolveTag(""); got != DefaultTag {
		t.Fatalf("expected default tag, got %s", got)
	}
	if got := ResolveTag("!!"); got != DefaultTag {
		t.Fatalf("expected default tag for malformed header, got %s", got)
	}
}

func TestFormatFollowersUsesLocaleSeparators(t *testing.T) {
	if got := FormatFollowers(Printer(language.AmericanEnglish), 1234567); got != "1,234,567" {
		t.Fatalf("expected 1,234,567, got %s", got)
	}
	if got := FormatFollowers(Printer(language.German), 1234567); got != "1.234.567" {
		t.Fatalf("expected 1.234.567, got %s", got)
	}
}

func TestHTMLRowEscapesUserText(t *testing.T) {
	row := NewHTML(nil).RenderRow(sampleLead())

	if strings.Contains(row, "<script>") || strings.Contains(row, "<b>") {
		t.Fatalf("expected user text to be escaped, got %s", row)
	}
	if !strings.Contains(row, "@&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("expected escaped username, got %s", row)
	}
	if !strings.Contains(row, "&#34;quoted&#34;") {
		t.Fatalf("expected escaped tag, got %s", row)
	}
}

func TestHTMLRowCarriesActionsAndBucket(t *testing.T) {
	lead := sampleLead()
	row := NewHTML(nil).RenderRow(lead)

	if !strings.Contains(row, `data-lead-id="`+lead.ID.String()+`"`) {
		t.Fatalf("expected data-lead-id attribute, got %s", row)
	}
	for _, action := range []string{ActionView, ActionEdit, ActionChat, ActionDelete} {
		if !strings.Contains(row, `data-action="`+action+`"`) {
			t.Fatalf("expected %s action, got %s", action, row)
		}
	}
	if strings.Contains(row, "onclick") {
		t.Fatalf("expected no inline handlers, got %s", row)
	}
	if !strings.Contains(row, "bg-warning") || !strings.Contains(row, "1,234,567") {
		t.Fatalf("expected warning bar and formatted followers, got %s", row)
	}
	if !strings.Contains(row, "badge bg-danger") || !strings.Contains(row, "fab fa-instagram") {
		t.Fatalf("expected instagram badge, got %s", row)
	}
}

func TestHTMLRowIsDeterministic(t *testing.T) {
	h := NewHTML(nil)
	if h.RenderRow(sampleLead()) != h.RenderRow(sampleLead()) {
		t.Fatalf("expected identical output for identical input")
	}
}

func TestDashboardRendersLoaderState(t *testing.T) {
	var buf bytes.Buffer
	err := NewHTML(nil).Dashboard(DashboardData{
		Username:    "<me>",
		Filters:     transport.ListLeadsRequest{Search: `"x"`, Platform: "twitter"},
		Leads:       []transport.LeadSummary{sampleLead()},
		CurrentPage: 2,
		HasMore:     true,
	}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := buf.String()

	for _, want := range []string{
		`data-current-page="2"`,
		`data-has-more="true"`,
		`id="loading-indicator"`,
		`/static/loader.js`,
		`Welcome, &lt;me&gt;`,
		`value="&#34;x&#34;"`,
		`<option value="twitter" selected>`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
}

func TestTerminalRowStripsControlCharacters(t *testing.T) {
	lead := sampleLead()
	lead.Username = "evil\x1b[31mred"
	row := NewTerminal(nil).RenderRow(lead)

	if strings.Contains(row, "\x1b[31m") {
		t.Fatalf("expected escape sequence from user text to be removed, got %q", row)
	}
	if !strings.Contains(row, "@evil[31mred") {
		t.Fatalf("expected username text, got %q", row)
	}
	if !strings.Contains(row, "IG Instagram") || !strings.Contains(row, "#fitness") {
		t.Fatalf("expected badge and tags, got %q", row)
	}
}

func TestResolvePOSIXLocale(t *testing.T) {
	cases := map[string]language.Tag{
		"de_DE.UTF-8": language.German,
		"nl_NL@euro":  language.Dutch,
		"en_GB.UTF-8": language.BritishEnglish,
		"fr_FR":       language.French,
		"C":           DefaultTag,
		"POSIX":       DefaultTag,
		"C.UTF-8":     DefaultTag,
		"":            DefaultTag,
	}
	for locale, want := range cases {
		if got := ResolvePOSIXLocale(locale); got != want {
			t.Fatalf("%q: expected %s, got %s", locale, want, got)
		}
	}
}
