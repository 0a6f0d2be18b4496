// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-stv/auth"
	"github.com/danielhkuo/quickly-stv/models"
)

const testSalt = "test-admin-salt"

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func TestRequireAdminKey(t *testing.T) {
	electionID := "elec-1"

	tests := []struct {
		name           string
		pathID         string
		adminKey       string
		expectedStatus int
		expectedMsg    string
	}{
		{"valid key", electionID, auth.GenerateAdminKey(electionID, testSalt), http.StatusNoContent, ""},
		{"key for another election", electionID, auth.GenerateAdminKey("elec-2", testSalt), http.StatusUnauthorized, "Invalid admin key"},
		{"key under another salt", electionID, auth.GenerateAdminKey(electionID, "other-salt"), http.StatusUnauthorized, "Invalid admin key"},
		{"missing key", electionID, "", http.StatusUnauthorized, "Invalid admin key"},
		{"missing election id", "", auth.GenerateAdminKey(electionID, testSalt), http.StatusBadRequest, "election_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := RequireAdminKey(testSalt)(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest("POST", "/elections/"+tt.pathID+"/close", nil)
			req.SetPathValue("id", tt.pathID)
			if tt.adminKey != "" {
				req.Header.Set(AdminKeyHeader, tt.adminKey)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if called != (tt.expectedStatus == http.StatusNoContent) {
				t.Errorf("Handler called = %v for status %d", called, w.Code)
			}
			if tt.expectedMsg != "" {
				if msg := decodeError(t, w).Message; msg != tt.expectedMsg {
					t.Errorf("Expected message %q, got %q", tt.expectedMsg, msg)
				}
			}
		})
	}
}

func TestRequireVoterToken(t *testing.T) {
	validToken, err := auth.GenerateVoterToken()
	if err != nil {
		t.Fatalf("Failed to generate voter token: %v", err)
	}

	tests := []struct {
		name           string
		token          string
		expectedStatus int
		expectedMsg    string
	}{
		{"valid token", validToken, http.StatusOK, ""},
		{"missing token", "", http.StatusUnauthorized, "X-Voter-Token header required"},
		{"malformed token", "not-a-token", http.StatusUnauthorized, "Malformed voter token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequireVoterToken(func(w http.ResponseWriter, r *http.Request) {
				seen = VoterToken(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("POST", "/elections/abc/ballots", nil)
			req.SetPathValue("slug", "abc")
			if tt.token != "" {
				req.Header.Set(VoterTokenHeader, tt.token)
			}
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus == http.StatusOK {
				if seen != tt.token {
					t.Errorf("Expected handler to see token %q, got %q", tt.token, seen)
				}
				return
			}
			if msg := decodeError(t, w).Message; msg != tt.expectedMsg {
				t.Errorf("Expected message %q, got %q", tt.expectedMsg, msg)
			}
		})
	}
}

func TestRequireVoterTokenKeepsPathValues(t *testing.T) {
	token, err := auth.GenerateVoterToken()
	if err != nil {
		t.Fatalf("Failed to generate voter token: %v", err)
	}

	var slug string
	handler := RequireVoterToken(func(w http.ResponseWriter, r *http.Request) {
		slug = r.PathValue("slug")
	})

	req := httptest.NewRequest("GET", "/elections/abc/my-ballot", nil)
	req.SetPathValue("slug", "abc")
	req.Header.Set(VoterTokenHeader, token)
	handler(httptest.NewRecorder(), req)

	if slug != "abc" {
		t.Errorf("Expected slug 'abc' after token check, got %q", slug)
	}
}

func TestVoterTokenWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/elections/abc/my-ballot", nil)
	req.Header.Set(VoterTokenHeader, "set-but-unchecked")

	if got := VoterToken(req); got != "" {
		t.Errorf("Expected empty token outside RequireVoterToken, got %q", got)
	}
}
