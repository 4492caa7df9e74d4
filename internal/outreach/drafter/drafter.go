// Package drafter turns lead context into prompts for a text generation model
// and parses what comes back.
package drafter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"leadscope_backend/internal/leads"
	"leadscope_backend/internal/outreach/transport"
)

const (
	RoleUser  = "user"
	RoleModel = "model"

	maxGeneratedLeads = 50
)

var (
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrMalformedLeads is returned when generated output holds no JSON array.
	ErrMalformedLeads = errors.New("model output is not a lead list")
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n\\s*```")

// Turn is one message of a conversation.
type Turn struct {
	Role string
	Text string
}

// Model generates a reply to a conversation under a system instruction.
type Model interface {
	Generate(ctx context.Context, system string, turns []Turn) (string, error)
}

type Drafter struct {
	model Model
}

func New(model Model) *Drafter {
	return &Drafter{model: model}
}

// Chat answers message in the context of lead and the prior conversation.
func (d *Drafter) Chat(ctx context.Context, lead leads.Lead, history []Turn, message string) (string, error) {
	system := "You are an assistant helping a sales user manage a lead. " +
		"Answer concisely and base your advice on the lead profile below.\n\n" + leadProfile(lead)

	turns := make([]Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, Turn{Role: RoleUser, Text: message})
	return d.generate(ctx, system, turns)
}

// DraftEmail writes an email body for lead following the brief.
func (d *Drafter) DraftEmail(ctx context.Context, lead leads.Lead, brief transport.DraftEmailRequest) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a professional outreach email to %s (%s).\n\n", lead.DisplayName(), lead.Platform)
	b.WriteString(leadProfile(lead))
	fmt.Fprintf(&b, "\nSubject: %q\n", brief.Subject)
	fmt.Fprintf(&b, "Main pitch: %q\n", brief.Pitch)
	fmt.Fprintf(&b, "Tone: %s\n", orDefault(brief.Tone, "neutral"))
	fmt.Fprintf(&b, "Length: %s\n", orDefault(brief.Length, "medium"))
	fmt.Fprintf(&b, "Key points: %s\n", orDefault(brief.KeyPoints, "none"))
	fmt.Fprintf(&b, "Call to action: %s\n", orDefault(brief.CallToAction, "none"))
	b.WriteString("\nReturn only the email body as plain text, without the subject line.")

	return d.generate(ctx, "", []Turn{{Role: RoleUser, Text: b.String()}})
}

// GenerateLeads asks the model for candidate leads matching criteria. Entries
// without a username or platform are dropped.
func (d *Drafter) GenerateLeads(ctx context.Context, criteria string) ([]transport.GeneratedLead, error) {
	prompt := fmt.Sprintf(generatePrompt, criteria)
	text, err := d.generate(ctx, "", []Turn{{Role: RoleUser, Text: prompt}})
	if err != nil {
		return nil, err
	}
	return ParseGeneratedLeads(text)
}

func (d *Drafter) generate(ctx context.Context, system string, turns []Turn) (string, error) {
	text, err := d.model.Generate(ctx, system, turns)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ParseGeneratedLeads extracts the lead array from model output. The array
// may be wrapped in a fenced code block.
func ParseGeneratedLeads(text string) ([]transport.GeneratedLead, error) {
	payload := strings.TrimSpace(text)
	if m := fencedJSON.FindStringSubmatch(payload); m != nil {
		payload = strings.TrimSpace(m[1])
	}
	if !strings.HasPrefix(payload, "[") {
		start, end := strings.Index(payload, "["), strings.LastIndex(payload, "]")
		if start < 0 || end <= start {
			return nil, ErrMalformedLeads
		}
		payload = payload[start : end+1]
	}

	var raw []transport.GeneratedLead
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLeads, err)
	}

	out := make([]transport.GeneratedLead, 0, len(raw))
	for _, l := range raw {
		l.Username = strings.TrimPrefix(strings.TrimSpace(l.Username), "@")
		l.Platform = strings.ToLower(strings.TrimSpace(l.Platform))
		if l.Username == "" || l.Platform == "" {
			continue
		}
		if l.Tags == nil {
			l.Tags = []string{}
		}
		out = append(out, l)
		if len(out) == maxGeneratedLeads {
			break
		}
	}
	return out, nil
}

func leadProfile(l leads.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Username: %s\n", l.Username)
	fmt.Fprintf(&b, "Platform: %s\n", l.Platform)
	fmt.Fprintf(&b, "Full name: %s\n", orNA(l.FullName))
	fmt.Fprintf(&b, "Bio: %s\n", orNA(l.Bio))
	fmt.Fprintf(&b, "Followers: %s\n", strconv.FormatInt(l.Followers, 10))
	fmt.Fprintf(&b, "Email: %s\n", orNA(l.Email))
	fmt.Fprintf(&b, "Website: %s\n", orNA(l.Website))
	fmt.Fprintf(&b, "Location: %s\n", orNA(l.Location))
	fmt.Fprintf(&b, "Company: %s\n", orNA(l.CompanyName))
	fmt.Fprintf(&b, "Job title: %s\n", orNA(l.JobTitle))
	tags := "N/A"
	if len(l.Tags) > 0 {
		tags = strings.Join(l.Tags, ", ")
	}
	fmt.Fprintf(&b, "Tags: %s\n", tags)
	return b.String()
}

func orNA(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "N/A"
	}
	return *s
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

const generatePrompt = `Generate a list of potential sales leads matching these criteria: %q.
Return a JSON array. Each element has these fields:
  "username" (handle without @), "platform" (twitter, instagram, linkedin, facebook, tiktok, youtube, pinterest or other),
  "full_name", "bio", "followers" (integer), "email" (or null), "website" (or null), "location" (or null),
  "profile_url", "engagement_score" (number 0-100), "tags" (array of strings),
  "company_name", "company_industry", "company_size", "job_title" (each or null), "tech_stack" (array or null).
Return only the JSON array, at least 3 leads.`
