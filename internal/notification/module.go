// Package notification reacts to domain events: account mail goes out over the
// email sender and lead activity is pushed to the owner's open event streams.
// Domain modules publish events and never talk to mail or SSE directly.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"leadscope_backend/internal/email"
	"leadscope_backend/internal/events"
	apphttp "leadscope_backend/internal/http"
	"leadscope_backend/internal/notification/sse"
	"leadscope_backend/platform/logger"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	sender email.Sender
	sse    *sse.Service
	log    *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, sse: sse.New(log), log: log}
}

func (m *Module) Name() string { return "notification" }

// RegisterRoutes mounts the caller's event stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/events", m.sse.Handler())
}

// SSE returns the stream service, closed by main on shutdown.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.UserRegistered{}.EventName(), m)
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadsImported{}.EventName(), m)
	bus.Subscribe(events.LeadEmailSent{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserRegistered:
		return m.handleUserRegistered(ctx, e)
	case events.LeadCreated:
		m.sse.Publish(e.UserID, sse.Event{
			Type:   sse.EventLeadCreated,
			LeadID: e.LeadID,
			Data:   map[string]string{"platform": e.Platform, "source": e.Source},
		})
		return nil
	case events.LeadsImported:
		m.sse.Publish(e.UserID, sse.Event{
			Type:    sse.EventImportCompleted,
			Message: fmt.Sprintf("%d imported, %d failed", e.Imported, e.Failed),
			Data:    map[string]any{"source": e.Source, "imported": e.Imported, "failed": e.Failed},
		})
		return nil
	case events.LeadEmailSent:
		return m.handleLeadEmailSent(e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleUserRegistered(ctx context.Context, e events.UserRegistered) error {
	if err := m.sender.SendWelcomeEmail(ctx, e.Email, e.Username); err != nil {
		m.log.ExternalCallFailed("smtp", "welcome_email", err)
		return err
	}
	m.log.Info("welcome email sent", slog.String("user_id", e.UserID.String()))
	return nil
}

func (m *Module) handleLeadEmailSent(e events.LeadEmailSent) error {
	eventType := sse.EventEmailSent
	if !e.Success {
		eventType = sse.EventEmailFailed
	}
	m.sse.Publish(e.UserID, sse.Event{
		Type:    eventType,
		LeadID:  e.LeadID,
		Message: e.Subject,
		Data:    map[string]string{"recipient": e.Recipient},
	})
	return nil
}

// Compile-time checks
var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
