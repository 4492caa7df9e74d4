package fileio

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"leadscope_backend/internal/leads/transport"

	"github.com/google/uuid"
)

func TestFormatFromFilename(t *testing.T) {
	cases := map[string]Format{
		"leads.CSV":  FormatCSV,
		"leads.json": FormatJSON,
		"leads.yml":  FormatYAML,
		"leads.yaml": FormatYAML,
	}
	for name, want := range cases {
		got, err := FormatFromFilename(name)
		if err != nil || got != want {
			t.Fatalf("%s: expected %s, got %s (%v)", name, want, got, err)
		}
	}
	if _, err := FormatFromFilename("leads.xlsx"); err != ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseCSVMatchesColumnsByName(t *testing.T) {
	input := "platform,username,followers,tags,tech_stack,email\n" +
		"Instagram, alice ,1200,\"fitness, travel\",\"React, Stripe\",alice@example.com\n" +
		"twitter,,50,,,\n" +
		"linkedin,bob,n/a,,,\n"

	leads, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads (row without username skipped), got %d", len(leads))
	}

	alice := leads[0]
	if alice.Username != "alice" || alice.Platform != "instagram" || alice.Followers != 1200 {
		t.Fatalf("unexpected first lead: %+v", alice)
	}
	if len(alice.Tags) != 2 || alice.Tags[1] != "travel" {
		t.Fatalf("expected split tags, got %v", alice.Tags)
	}
	if len(alice.TechStack) != 2 || alice.TechStack[0] != "React" {
		t.Fatalf("expected split tech stack, got %v", alice.TechStack)
	}
	if alice.Email == nil || *alice.Email != "alice@example.com" {
		t.Fatalf("expected email, got %v", alice.Email)
	}
	if leads[1].Followers != 0 {
		t.Fatalf("expected unparsable followers to become 0, got %d", leads[1].Followers)
	}
	if leads[1].FullName != nil {
		t.Fatalf("expected missing column to be nil")
	}
}

func TestParseJSONAcceptsBothShapes(t *testing.T) {
	arr, err := ParseJSON(strings.NewReader(`[{"username":"a","platform":"tiktok"}]`))
	if err != nil || len(arr) != 1 || arr[0].Platform != "tiktok" {
		t.Fatalf("unexpected array result: %v %v", arr, err)
	}

	obj, err := ParseJSON(strings.NewReader(`{"leads":[{"username":"a"},{"username":"b"}]}`))
	if err != nil || len(obj) != 2 {
		t.Fatalf("unexpected object result: %v %v", obj, err)
	}

	if _, err := ParseJSON(strings.NewReader(`{"items":[]}`)); err != ErrNoLeadsArray {
		t.Fatalf("expected ErrNoLeadsArray, got %v", err)
	}
}

func TestParseYAML(t *testing.T) {
	input := `
leads:
  - username: carol
    platform: youtube
    followers: 9000
    tags: [tech, review]
`
	leads, err := ParseYAML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 || leads[0].Username != "carol" || leads[0].Followers != 9000 || len(leads[0].Tags) != 2 {
		t.Fatalf("unexpected leads: %+v", leads)
	}

	list, err := ParseYAML(strings.NewReader("- username: dave\n  platform: other\n"))
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected list result: %v %v", list, err)
	}

	if _, err := ParseYAML(strings.NewReader("just a string")); err != ErrNoLeadsArray {
		t.Fatalf("expected ErrNoLeadsArray, got %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	name := "Alice A"
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	leads := []transport.LeadResponse{{
		ID:              uuid.New(),
		Username:        "alice",
		Platform:        "instagram",
		FullName:        &name,
		Followers:       1500,
		EngagementScore: 42.5,
		Tags:            []string{"a", "b"},
		CreatedAt:       created,
		LastUpdated:     created,
	}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, leads); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(records))
	}
	row := records[1]
	if row[1] != "alice" || row[3] != "Alice A" || row[5] != "1500" || row[10] != "42.5" || row[11] != "a, b" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[12] != "2026-03-01 09:30:00" {
		t.Fatalf("unexpected created at: %q", row[12])
	}
}
