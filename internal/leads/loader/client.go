package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"leadscope_backend/internal/leads/transport"
)

var (
	// ErrUnexpectedStatus is returned for non-2xx page responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrMalformedPage is returned when a page body is not a PageResult.
	ErrMalformedPage = errors.New("malformed page")
)

// PageClient fetches pages from the list view URL it was created with. The
// view's own query parameters (filters, sort) are kept on every request.
type PageClient struct {
	viewURL    *url.URL
	token      string
	httpClient *http.Client
}

// NewPageClient creates a client for viewURL. token, when set, is sent as a
// bearer token. Requests have no timeout: a fetch always runs to completion.
func NewPageClient(viewURL, token string) (*PageClient, error) {
	u, err := url.Parse(viewURL)
	if err != nil {
		return nil, fmt.Errorf("parse view url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("view url must be absolute: %q", viewURL)
	}
	return &PageClient{viewURL: u, token: token, httpClient: &http.Client{}}, nil
}

// PageURL returns the request URL for page.
func (c *PageClient) PageURL(page int) string {
	u := *c.viewURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("ajax", "1")
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchPage implements Fetcher.
func (c *PageClient) FetchPage(ctx context.Context, page int) (transport.PageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PageURL(page), nil)
	if err != nil {
		return transport.PageResult{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transport.PageResult{}, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return transport.PageResult{}, fmt.Errorf("fetch page %d: %w %d", page, ErrUnexpectedStatus, resp.StatusCode)
	}

	var body struct {
		Leads   *[]transport.LeadSummary `json:"leads"`
		HasMore *bool                    `json:"has_more"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return transport.PageResult{}, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}
	if body.Leads == nil || body.HasMore == nil {
		return transport.PageResult{}, fmt.Errorf("%w: leads and has_more are required", ErrMalformedPage)
	}
	return transport.PageResult{Leads: *body.Leads, HasMore: *body.HasMore}, nil
}
