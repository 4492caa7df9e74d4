package drafter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"leadscope_backend/internal/leads"
	"leadscope_backend/internal/outreach/transport"
)

type scriptedModel struct {
	reply  string
	err    error
	system string
	turns  []Turn
}

func (m *scriptedModel) Generate(_ context.Context, system string, turns []Turn) (string, error) {
	m.system = system
	m.turns = turns
	return m.reply, m.err
}

func strPtr(s string) *string { return &s }

func testLead() leads.Lead {
	return leads.Lead{
		Username:  "ana.codes",
		Platform:  "instagram",
		FullName:  strPtr("Ana Lima"),
		Followers: 12500,
		Tags:      []string{"tech", "vip"},
	}
}

func TestChatSendsProfileAndHistory(t *testing.T) {
	model := &scriptedModel{reply: "  Send her a DM.  "}
	d := New(model)

	history := []Turn{{Role: RoleUser, Text: "hi"}, {Role: RoleModel, Text: "hello"}}
	reply, err := d.Chat(context.Background(), testLead(), history, "what next?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Send her a DM." {
		t.Fatalf("expected trimmed reply, got %q", reply)
	}
	if !strings.Contains(model.system, "Full name: Ana Lima") || !strings.Contains(model.system, "Tags: tech, vip") {
		t.Fatalf("expected lead profile in system instruction, got %q", model.system)
	}
	if len(model.turns) != 3 || model.turns[2].Text != "what next?" {
		t.Fatalf("expected history plus new message, got %+v", model.turns)
	}
}

func TestDraftEmailDefaultsToneAndLength(t *testing.T) {
	model := &scriptedModel{reply: "Hi Ana,"}
	d := New(model)

	_, err := d.DraftEmail(context.Background(), testLead(), transport.DraftEmailRequest{Subject: "Collab", Pitch: "Sponsor our launch"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := model.turns[0].Text
	if !strings.Contains(prompt, "Tone: neutral") || !strings.Contains(prompt, "Length: medium") {
		t.Fatalf("expected defaults in prompt, got %q", prompt)
	}
	if !strings.Contains(prompt, "Ana Lima (instagram)") {
		t.Fatalf("expected display name in prompt")
	}
}

func TestGenerateEmptyReplyIsError(t *testing.T) {
	d := New(&scriptedModel{reply: "   "})

	if _, err := d.Chat(context.Background(), testLead(), nil, "x"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestParseGeneratedLeadsFromFencedBlock(t *testing.T) {
	text := "Here you go:\n```json\n[" +
		`{"username":"@maker","platform":"Twitter","followers":"12,000","engagement_score":4.5,"tags":["diy"]},` +
		`{"username":"","platform":"instagram"},` +
		`{"username":"chef","platform":"instagram","followers":null}` +
		"]\n```\nEnjoy."

	got, err := ParseGeneratedLeads(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(got))
	}
	if got[0].Username != "maker" || got[0].Platform != "twitter" || got[0].Followers != 12000 {
		t.Fatalf("unexpected first lead %+v", got[0])
	}
	if got[1].Followers != 0 || got[1].Tags == nil {
		t.Fatalf("expected zero followers and empty tags, got %+v", got[1])
	}
}

func TestParseGeneratedLeadsBareArray(t *testing.T) {
	got, err := ParseGeneratedLeads(`[{"username":"a","platform":"linkedin"}]`)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one lead, got %v (%v)", got, err)
	}
}

func TestParseGeneratedLeadsRejectsProse(t *testing.T) {
	if _, err := ParseGeneratedLeads("I could not find any leads."); !errors.Is(err, ErrMalformedLeads) {
		t.Fatalf("expected ErrMalformedLeads, got %v", err)
	}
}
