// Package client provides HTTP clients for the Salesforce and HubSpot REST APIs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHTTPTimeout = 15 * time.Second

// Contact is the CRM-neutral shape pushed to either system.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
	Website   string
	JobTitle  string
	Industry  string
	Source    string
}

// APIError is a non-2xx answer from a CRM.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Service, e.StatusCode, e.Body)
}

func postJSON(ctx context.Context, hc *http.Client, service, endpoint, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Service: service, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return json.Unmarshal(raw, out)
}
