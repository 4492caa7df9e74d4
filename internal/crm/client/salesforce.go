package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	salesforceAPIVersion   = "v59.0"
	salesforceDefaultCo    = "Unknown"
	salesforceStatusOpen   = "Open - Not Contacted"
	salesforceServiceLabel = "salesforce"
)

// Salesforce creates Lead sobjects through the REST API.
type Salesforce struct {
	httpClient  *http.Client
	instanceURL string
	accessToken string
}

func NewSalesforce(instanceURL, accessToken string) *Salesforce {
	return &Salesforce{
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		instanceURL: strings.TrimRight(instanceURL, "/"),
		accessToken: accessToken,
	}
}

type salesforceLead struct {
	FirstName  string `json:"FirstName,omitempty"`
	LastName   string `json:"LastName"`
	Company    string `json:"Company"`
	Email      string `json:"Email,omitempty"`
	Website    string `json:"Website,omitempty"`
	Title      string `json:"Title,omitempty"`
	Industry   string `json:"Industry,omitempty"`
	LeadSource string `json:"LeadSource,omitempty"`
	Status     string `json:"Status"`
}

type salesforceCreateResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// CreateLead returns the new record id.
func (s *Salesforce) CreateLead(ctx context.Context, c Contact) (string, error) {
	company := c.Company
	if company == "" {
		company = salesforceDefaultCo
	}
	payload := salesforceLead{
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Company:    company,
		Email:      c.Email,
		Website:    c.Website,
		Title:      c.JobTitle,
		Industry:   c.Industry,
		LeadSource: c.Source,
		Status:     salesforceStatusOpen,
	}

	endpoint := fmt.Sprintf("%s/services/data/%s/sobjects/Lead", s.instanceURL, salesforceAPIVersion)
	var out salesforceCreateResponse
	if err := postJSON(ctx, s.httpClient, salesforceServiceLabel, endpoint, s.accessToken, payload, &out); err != nil {
		return "", err
	}
	if !out.Success || out.ID == "" {
		return "", fmt.Errorf("salesforce did not return a lead id")
	}
	return out.ID, nil
}
