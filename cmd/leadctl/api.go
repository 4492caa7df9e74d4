package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadscope_backend/internal/leads/transport"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// apiClient calls the JSON API for actions on single leads.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(base, accessToken string) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(base, "/"),
		token:      accessToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		return &apiError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", in, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (c *apiClient) GetLead(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	var out transport.LeadResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/leads/"+id.String(), nil, &out)
	return out, err
}

func (c *apiClient) DeleteLead(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/leads/"+id.String(), nil, nil)
}

// dashboardURL is the list view the loader pages through.
func dashboardURL(base, search, platform, sortBy string) string {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if platform != "" && platform != "all" {
		q.Set("platform", platform)
	}
	if sortBy != "" {
		q.Set("sort_by", sortBy)
	}
	u := strings.TrimRight(base, "/") + "/dashboard"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func runLogin(cmd *cobra.Command, _ []string) error {
	tok, err := newAPIClient(baseURL, "").Login(cmd.Context(), loginEmail, loginPassword)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
