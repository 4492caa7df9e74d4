package transport

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type ChatRequest struct {
	Message string `json:"message" validate:"required,notblank,max=4000"`
}

type ChatMessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatHistoryResponse struct {
	Items []ChatMessageResponse `json:"items"`
}

// ChatReply returns both stored turns so the client can append them.
type ChatReply struct {
	UserMessage  ChatMessageResponse `json:"userMessage"`
	ModelMessage ChatMessageResponse `json:"modelMessage"`
}

type DraftEmailRequest struct {
	Subject      string `json:"subject" validate:"required,notblank,max=200"`
	Pitch        string `json:"pitch" validate:"required,notblank,max=2000"`
	Tone         string `json:"tone" validate:"omitempty,max=50"`
	Length       string `json:"length" validate:"omitempty,oneof=short medium long"`
	KeyPoints    string `json:"key_points" validate:"omitempty,max=2000"`
	CallToAction string `json:"call_to_action" validate:"omitempty,max=500"`
}

type DraftEmailResponse struct {
	EmailContent string `json:"emailContent"`
}

type SendEmailRequest struct {
	Subject string `json:"subject" validate:"required,notblank,max=200"`
	Body    string `json:"body" validate:"required,notblank,max=20000"`
}

type EmailLogResponse struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type GenerateLeadsRequest struct {
	Prompt string `json:"prompt" validate:"required,min=10,max=1000"`
}

// GeneratedLead uses the lead import field names so candidates can be posted
// straight to the scrape import endpoint.
type GeneratedLead struct {
	Username        string     `json:"username"`
	Platform        string     `json:"platform"`
	FullName        *string    `json:"full_name,omitempty"`
	Bio             *string    `json:"bio,omitempty"`
	Followers       FlexNumber `json:"followers"`
	Email           *string    `json:"email,omitempty"`
	Website         *string    `json:"website,omitempty"`
	Location        *string    `json:"location,omitempty"`
	ProfileURL      *string    `json:"profile_url,omitempty"`
	EngagementScore FlexNumber `json:"engagement_score"`
	Tags            []string   `json:"tags"`
	CompanyName     *string    `json:"company_name,omitempty"`
	CompanyIndustry *string    `json:"company_industry,omitempty"`
	CompanySize     *string    `json:"company_size,omitempty"`
	JobTitle        *string    `json:"job_title,omitempty"`
	TechStack       []string   `json:"tech_stack,omitempty"`
}

type GenerateLeadsResponse struct {
	Leads []GeneratedLead `json:"leads"`
}

// FlexNumber decodes a JSON number or a numeric string. Anything else,
// including null, decodes to zero. Model output is not strict about types.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = FlexNumber(v)
	return nil
}
