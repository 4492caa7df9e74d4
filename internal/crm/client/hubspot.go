package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	hubSpotBaseURL      = "https://api.hubapi.com"
	hubSpotServiceLabel = "hubspot"
)

// HubSpot creates contacts through the CRM v3 objects API.
type HubSpot struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

func NewHubSpot(accessToken string) *HubSpot {
	return &HubSpot{
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:     hubSpotBaseURL,
		accessToken: accessToken,
	}
}

// WithBaseURL points the client at another host. Used by tests.
func (h *HubSpot) WithBaseURL(baseURL string) *HubSpot {
	h.baseURL = strings.TrimRight(baseURL, "/")
	return h
}

type hubSpotContactInput struct {
	Properties map[string]string `json:"properties"`
}

type hubSpotContact struct {
	ID string `json:"id"`
}

// CreateContact returns the new contact id.
func (h *HubSpot) CreateContact(ctx context.Context, c Contact) (string, error) {
	props := map[string]string{
		"firstname": c.FirstName,
		"lastname":  c.LastName,
	}
	setIf(props, "email", c.Email)
	setIf(props, "website", c.Website)
	setIf(props, "company", c.Company)
	setIf(props, "jobtitle", c.JobTitle)
	setIf(props, "industry", c.Industry)

	var out hubSpotContact
	endpoint := h.baseURL + "/crm/v3/objects/contacts"
	if err := postJSON(ctx, h.httpClient, hubSpotServiceLabel, endpoint, h.accessToken, hubSpotContactInput{Properties: props}, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("hubspot did not return a contact id")
	}
	return out.ID, nil
}

func setIf(props map[string]string, key, value string) {
	if value != "" {
		props[key] = value
	}
}
