package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSalesforceCreateLead(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/data/v59.0/sobjects/Lead" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sf-token" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"00Q5e000001","success":true,"errors":[]}`))
	}))
	defer srv.Close()

	id, err := NewSalesforce(srv.URL+"/", "sf-token").CreateLead(context.Background(), Contact{LastName: "Lovelace", FirstName: "Ada", Source: "github"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "00Q5e000001" {
		t.Fatalf("expected id 00Q5e000001, got %q", id)
	}
	if got["Company"] != "Unknown" || got["LeadSource"] != "github" || got["LastName"] != "Lovelace" {
		t.Fatalf("unexpected payload: %v", got)
	}
	if _, ok := got["Email"]; ok {
		t.Fatalf("expected empty email to be omitted")
	}
}

func TestSalesforceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`[{"errorCode":"INVALID_SESSION_ID"}]`))
	}))
	defer srv.Close()

	_, err := NewSalesforce(srv.URL, "expired").CreateLead(context.Background(), Contact{LastName: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}

func TestHubSpotCreateContact(t *testing.T) {
	var got hubSpotContactInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crm/v3/objects/contacts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"512","properties":{}}`))
	}))
	defer srv.Close()

	id, err := NewHubSpot("hs-token").WithBaseURL(srv.URL).CreateContact(context.Background(), Contact{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "512" {
		t.Fatalf("expected id 512, got %q", id)
	}
	if got.Properties["email"] != "grace@example.com" || got.Properties["lastname"] != "Hopper" {
		t.Fatalf("unexpected properties: %v", got.Properties)
	}
	if _, ok := got.Properties["website"]; ok {
		t.Fatalf("expected empty website to be omitted")
	}
}
