package service

import (
	"context"
	"errors"
	"strings"

	"leadscope_backend/internal/email"
	"leadscope_backend/internal/events"
	"leadscope_backend/internal/leads"
	"leadscope_backend/internal/outreach/drafter"
	"leadscope_backend/internal/outreach/repository"
	"leadscope_backend/internal/outreach/transport"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	chatHistoryLimit = 50

	msgLeadNotFound       = "lead not found"
	msgMessageNotFound    = "chat message not found"
	msgNotYourMessage     = "you can only delete your own messages"
	msgAIUnavailable      = "AI assistant is not configured"
	msgAIFailed           = "AI assistant request failed"
	msgNoLeadEmail        = "lead does not have an email address"
	msgEmailUnavailable   = "email delivery is not configured"
	msgEmailFailed        = "sending email failed"
	msgGeneratedMalformed = "AI response did not contain a lead list"
)

type Service struct {
	leads    leads.Service
	repo     repository.Store
	drafter  *drafter.Drafter
	sender   email.Sender
	eventBus events.Bus
	log      *logger.Logger
}

// New creates the outreach service. drafter may be nil when no AI backend is configured.
func New(leadSvc leads.Service, repo repository.Store, d *drafter.Drafter, sender email.Sender, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{leads: leadSvc, repo: repo, drafter: d, sender: sender, eventBus: eventBus, log: log}
}

func (s *Service) ChatHistory(ctx context.Context, leadID, userID uuid.UUID) (transport.ChatHistoryResponse, error) {
	if _, err := s.lead(ctx, leadID, userID); err != nil {
		return transport.ChatHistoryResponse{}, err
	}
	messages, err := s.repo.ListChatMessages(ctx, leadID, userID, chatHistoryLimit)
	if err != nil {
		return transport.ChatHistoryResponse{}, err
	}
	items := make([]transport.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		items = append(items, toChatResponse(m))
	}
	return transport.ChatHistoryResponse{Items: items}, nil
}

// Chat stores the user's message, asks the model and stores its reply. When
// the model fails the user's message is kept.
func (s *Service) Chat(ctx context.Context, leadID, userID uuid.UUID, req transport.ChatRequest) (transport.ChatReply, error) {
	lead, err := s.lead(ctx, leadID, userID)
	if err != nil {
		return transport.ChatReply{}, err
	}
	if s.drafter == nil {
		return transport.ChatReply{}, apperr.Unavailable(msgAIUnavailable)
	}

	history, err := s.repo.ListChatMessages(ctx, leadID, userID, chatHistoryLimit)
	if err != nil {
		return transport.ChatReply{}, err
	}

	message := strings.TrimSpace(req.Message)
	userMsg, err := s.repo.AddChatMessage(ctx, repository.ChatMessage{
		LeadID: leadID, UserID: userID, Role: drafter.RoleUser, Content: message,
	})
	if err != nil {
		return transport.ChatReply{}, err
	}

	turns := make([]drafter.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, drafter.Turn{Role: m.Role, Text: m.Content})
	}
	reply, err := s.drafter.Chat(ctx, lead, turns, message)
	if err != nil {
		s.log.ExternalCallFailed("gemini", "chat", err)
		return transport.ChatReply{}, apperr.Upstream(msgAIFailed, err)
	}

	modelMsg, err := s.repo.AddChatMessage(ctx, repository.ChatMessage{
		LeadID: leadID, UserID: userID, Role: drafter.RoleModel, Content: reply,
	})
	if err != nil {
		return transport.ChatReply{}, err
	}
	return transport.ChatReply{UserMessage: toChatResponse(userMsg), ModelMessage: toChatResponse(modelMsg)}, nil
}

// DeleteChatMessage removes one message. Only its author may delete it.
func (s *Service) DeleteChatMessage(ctx context.Context, leadID, messageID, userID uuid.UUID) error {
	msg, err := s.repo.GetChatMessage(ctx, messageID, leadID)
	if errors.Is(err, repository.ErrMessageNotFound) {
		return apperr.NotFound(msgMessageNotFound)
	}
	if err != nil {
		return err
	}
	if msg.UserID != userID {
		return apperr.Forbidden(msgNotYourMessage)
	}
	if err := s.repo.DeleteChatMessage(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return apperr.NotFound(msgMessageNotFound)
		}
		return err
	}
	return nil
}

func (s *Service) DraftEmail(ctx context.Context, leadID, userID uuid.UUID, req transport.DraftEmailRequest) (transport.DraftEmailResponse, error) {
	lead, err := s.lead(ctx, leadID, userID)
	if err != nil {
		return transport.DraftEmailResponse{}, err
	}
	if s.drafter == nil {
		return transport.DraftEmailResponse{}, apperr.Unavailable(msgAIUnavailable)
	}

	content, err := s.drafter.DraftEmail(ctx, lead, req)
	if err != nil {
		s.log.ExternalCallFailed("gemini", "draft_email", err)
		return transport.DraftEmailResponse{}, apperr.Upstream(msgAIFailed, err)
	}
	return transport.DraftEmailResponse{EmailContent: content}, nil
}

// SendEmail delivers a message to the lead. Every attempt is logged and announced.
func (s *Service) SendEmail(ctx context.Context, leadID, userID uuid.UUID, req transport.SendEmailRequest) (transport.EmailLogResponse, error) {
	lead, err := s.lead(ctx, leadID, userID)
	if err != nil {
		return transport.EmailLogResponse{}, err
	}
	if lead.Email == nil || strings.TrimSpace(*lead.Email) == "" {
		return transport.EmailLogResponse{}, apperr.BadRequest(msgNoLeadEmail)
	}
	recipient := strings.TrimSpace(*lead.Email)
	subject := strings.TrimSpace(req.Subject)

	sendErr := s.sender.SendLeadEmail(ctx, recipient, subject, req.Body)

	entry := repository.EmailLog{
		LeadID:    leadID,
		UserID:    userID,
		Recipient: recipient,
		Subject:   subject,
		Body:      req.Body,
		Status:    repository.EmailStatusSent,
	}
	if sendErr != nil {
		reason := sendErr.Error()
		entry.Status = repository.EmailStatusFailed
		entry.Error = &reason
		s.log.ExternalCallFailed("smtp", "lead_email", sendErr)
	}

	saved, logErr := s.repo.AddEmailLog(ctx, entry)
	if logErr != nil {
		s.log.DatabaseError("outreach.add_email_log", logErr)
	}

	s.eventBus.Publish(ctx, events.LeadEmailSent{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		UserID:    userID,
		Recipient: recipient,
		Subject:   subject,
		Success:   sendErr == nil,
	})

	switch {
	case errors.Is(sendErr, email.ErrNotConfigured):
		return transport.EmailLogResponse{}, apperr.Unavailable(msgEmailUnavailable)
	case sendErr != nil:
		return transport.EmailLogResponse{}, apperr.Upstream(msgEmailFailed, sendErr)
	case logErr != nil:
		return transport.EmailLogResponse{}, logErr
	}
	return toEmailLogResponse(saved), nil
}

func (s *Service) EmailHistory(ctx context.Context, leadID, userID uuid.UUID) ([]transport.EmailLogResponse, error) {
	if _, err := s.lead(ctx, leadID, userID); err != nil {
		return nil, err
	}
	logs, err := s.repo.ListEmailLogs(ctx, leadID, userID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.EmailLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, toEmailLogResponse(l))
	}
	return out, nil
}

// GenerateLeads asks the model for candidates. Nothing is stored.
func (s *Service) GenerateLeads(ctx context.Context, req transport.GenerateLeadsRequest) (transport.GenerateLeadsResponse, error) {
	if s.drafter == nil {
		return transport.GenerateLeadsResponse{}, apperr.Unavailable(msgAIUnavailable)
	}
	generated, err := s.drafter.GenerateLeads(ctx, strings.TrimSpace(req.Prompt))
	if errors.Is(err, drafter.ErrMalformedLeads) {
		return transport.GenerateLeadsResponse{}, apperr.Upstream(msgGeneratedMalformed, err)
	}
	if err != nil {
		s.log.ExternalCallFailed("gemini", "generate_leads", err)
		return transport.GenerateLeadsResponse{}, apperr.Upstream(msgAIFailed, err)
	}
	return transport.GenerateLeadsResponse{Leads: generated}, nil
}

func (s *Service) lead(ctx context.Context, leadID, userID uuid.UUID) (leads.Lead, error) {
	lead, err := s.leads.GetLead(ctx, leadID, userID)
	if errors.Is(err, leads.ErrLeadNotFound) {
		return leads.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	return lead, err
}

func toChatResponse(m repository.ChatMessage) transport.ChatMessageResponse {
	return transport.ChatMessageResponse{ID: m.ID.String(), Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt}
}

func toEmailLogResponse(e repository.EmailLog) transport.EmailLogResponse {
	return transport.EmailLogResponse{
		ID:        e.ID.String(),
		Recipient: e.Recipient,
		Subject:   e.Subject,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
	}
}
