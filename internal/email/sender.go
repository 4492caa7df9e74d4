// Package email delivers account and outreach mail.
package email

import (
	"context"
	"errors"
	"fmt"

	"leadscope_backend/platform/config"
)

// ErrNotConfigured is returned for outreach mail when SMTP is disabled.
var ErrNotConfigured = errors.New("email delivery is not configured")

type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, username string) error
	// SendLeadEmail delivers a user-written message to a lead. The body is
	// plain text and is sent with an HTML alternative.
	SendLeadEmail(ctx context.Context, toEmail, subject, body string) error
}

// NoopSender drops account mail and refuses outreach mail.
type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	return nil
}

func (NoopSender) SendLeadEmail(ctx context.Context, toEmail, subject, body string) error {
	return ErrNotConfigured
}

// NewSender returns an SMTP sender when email is enabled, NoopSender otherwise.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

func welcomeContent(username string) (string, string, error) {
	subject := fmt.Sprintf(subjectWelcomeFmt, username)
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{Title: subject, Heading: "Welcome aboard"},
		Username:      username,
	})
	return subject, content, err
}

func outreachContent(subject, body, senderName string) (string, error) {
	return renderEmailTemplate("outreach.html", outreachEmailData{
		baseEmailData: baseEmailData{Title: subject},
		Paragraphs:    paragraphs(body),
		SenderName:    senderName,
	})
}
