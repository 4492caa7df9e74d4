// Package crm pushes leads to Salesforce and HubSpot. The API enqueues sync
// jobs and the scheduler worker performs them.
package crm

import (
	"context"
	"errors"
	"strings"

	"leadscope_backend/internal/crm/client"
	"leadscope_backend/internal/leads"

	"github.com/google/uuid"
)

const (
	TargetSalesforce = "salesforce"
	TargetHubSpot    = "hubspot"
)

var (
	// ErrTargetDisabled is returned for a CRM without credentials.
	ErrTargetDisabled = errors.New("crm target not configured")
	// ErrUnknownTarget is returned for a target name outside the supported set.
	ErrUnknownTarget = errors.New("unknown crm target")
)

// Enqueuer schedules a background sync of one lead to one target.
type Enqueuer interface {
	EnqueueCRMSync(ctx context.Context, leadID uuid.UUID, target string) error
}

// PushFunc creates a record in a CRM and returns its id.
type PushFunc func(ctx context.Context, contact client.Contact) (string, error)

// ContactFromLead maps a lead to the CRM-neutral contact. The last word of
// the full name becomes the last name; leads without a name use the username.
func ContactFromLead(l leads.Lead) client.Contact {
	first, last := splitName(l.FullName, l.Username)
	c := client.Contact{
		FirstName: first,
		LastName:  last,
		Source:    l.Platform,
	}
	c.Email = deref(l.Email)
	c.Website = deref(l.Website)
	c.Company = deref(l.CompanyName)
	c.JobTitle = deref(l.JobTitle)
	c.Industry = deref(l.CompanyIndustry)
	return c
}

func splitName(fullName *string, username string) (string, string) {
	if fullName == nil {
		return "", username
	}
	parts := strings.Fields(*fullName)
	switch len(parts) {
	case 0:
		return "", username
	case 1:
		return "", parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
