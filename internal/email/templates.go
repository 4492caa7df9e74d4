package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type welcomeEmailData struct {
	baseEmailData
	Username string
}

type outreachEmailData struct {
	baseEmailData
	Paragraphs []string
	SenderName string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// paragraphs splits a plain-text body on blank lines. Single newlines stay
// inside a paragraph.
func paragraphs(body string) []string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(normalized, "\n\n") {
		if p := strings.TrimSpace(block); p != "" {
			out = append(out, p)
		}
	}
	return out
}
