// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadscope_backend/platform/events"

	"github.com/google/uuid"
)

// Bus machinery lives in platform/events; domain packages only import this one.
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserRegistered is published when a new user account is created.
type UserRegistered struct {
	BaseEvent
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

func (e UserRegistered) EventName() string { return "auth.user.registered" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a single lead is created through the API.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	UserID   uuid.UUID `json:"userId"`
	Platform string    `json:"platform"`
	Source   string    `json:"source"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadsImported is published after a file or scrape import finishes.
type LeadsImported struct {
	BaseEvent
	UserID   uuid.UUID `json:"userId"`
	Source   string    `json:"source"`
	Imported int       `json:"imported"`
	Failed   int       `json:"failed"`
}

func (e LeadsImported) EventName() string { return "leads.import.completed" }

// =============================================================================
// Outreach Domain Events
// =============================================================================

// LeadEmailSent is published after every outreach email attempt.
type LeadEmailSent struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	UserID    uuid.UUID `json:"userId"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Success   bool      `json:"success"`
}

func (e LeadEmailSent) EventName() string { return "outreach.email.sent" }
