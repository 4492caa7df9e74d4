// Package sse provides Server-Sent Events support for real-time notifications.
package sse

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventLeadCreated     EventType = "lead_created"
	EventImportCompleted EventType = "import_completed"
	EventEmailSent       EventType = "email_sent"
	EventEmailFailed     EventType = "email_failed"
)

const clientBuffer = 32

// Event represents an SSE event payload
type Event struct {
	Type    EventType `json:"type"`
	LeadID  uuid.UUID `json:"leadId,omitempty"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
}

type client struct {
	userID uuid.UUID
	events chan Event
}

// Service manages SSE connections and per-user fan-out.
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{clients: make(map[uuid.UUID][]*client), log: log}
}

// Subscribe opens a stream for userID. The returned cancel func must be
// called once the consumer stops reading.
func (s *Service) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	c := &client{userID: userID, events: make(chan Event, clientBuffer)}

	s.mu.Lock()
	s.clients[userID] = append(s.clients[userID], c)
	s.mu.Unlock()

	return c.events, func() { s.removeClient(c) }
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.userID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.userID] = append(clients[:i], clients[i+1:]...)
			close(c.events)
			break
		}
	}
	if len(s.clients[c.userID]) == 0 {
		delete(s.clients, c.userID)
	}
}

// Publish sends an event to every open stream of userID. Slow clients drop events.
func (s *Service) Publish(userID uuid.UUID, event Event) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	delivered := 0
	for _, c := range s.clients[userID] {
		select {
		case c.events <- event:
			delivered++
		default:
			s.log.Warn("sse buffer full", slog.String("user_id", userID.String()), slog.String("event", string(event.Type)))
		}
	}
	return delivered
}

// Connected reports the number of open streams for userID.
func (s *Service) Connected(userID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[userID])
}

// Handler streams the caller's events until the request context ends.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := httpkit.MustGetIdentity(c)
		if identity == nil {
			return
		}
		userID := identity.UserID()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		stream, cancel := s.Subscribe(userID)
		defer cancel()

		c.SSEvent("connected", gin.H{"userId": userID})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event, ok := <-stream:
				if !ok {
					return
				}
				data, err := json.Marshal(event)
				if err != nil {
					continue
				}
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close disconnects every stream.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, clients := range s.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	s.clients = make(map[uuid.UUID][]*client)
}
