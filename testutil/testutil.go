// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-stv/auth"
	"github.com/danielhkuo/quickly-stv/cliparse"
	"github.com/danielhkuo/quickly-stv/db"
)

// SetupTestDB opens a fresh SQLite database in a temp dir with the full schema
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quickly-stv-test.db")
	conn, err := db.Open(db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Command:          cliparse.CommandServe,
		Port:             3318,
		DatabaseURL:      "quickly-stv-test.db",
		DatabaseType:     db.TypeSQLite,
		AdminKeySalt:     "test-admin-salt",
		ElectionSlugSalt: "test-slug-salt",
		BaseURL:          "http://localhost:3318",
	}
}

// CreateTestElection creates an election and returns its ID, admin key and share slug.
// status should be "draft", "open", or "closed"; the slug is empty for drafts.
func CreateTestElection(t *testing.T, conn *db.DB, cfg cliparse.Config, status string, seats int, quotaRule string) (electionID, adminKey, shareSlug string) {
	t.Helper()

	electionID, _ = auth.GenerateID(16)
	adminKey = auth.GenerateAdminKey(electionID, cfg.AdminKeySalt)

	var slug *string
	if status == "open" || status == "closed" {
		s := auth.GenerateShareSlug(electionID, cfg.ElectionSlugSalt)
		slug = &s
		shareSlug = s
	}

	var closedAt *time.Time
	if status == "closed" {
		now := time.Now().UTC()
		closedAt = &now
	}

	_, err := conn.Exec(`
		INSERT INTO election (id, title, description, creator_name, seats, quota_rule, status, share_slug, closed_at, created_at)
		VALUES (?, 'Test Election', 'A test election', 'TestUser', ?, ?, ?, ?, ?, ?)
	`, electionID, seats, quotaRule, status, slug, closedAt, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID, adminKey, shareSlug
}

// AddTestCandidate appends a candidate to the roster and returns its ID
func AddTestCandidate(t *testing.T, conn *db.DB, electionID, name string) string {
	t.Helper()

	var position int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM candidate WHERE election_id = ?`, electionID).Scan(&position); err != nil {
		t.Fatalf("Failed to count candidates: %v", err)
	}

	candidateID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO candidate (id, election_id, roster_position, name)
		VALUES (?, ?, ?, ?)
	`, candidateID, electionID, position, name)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// CreateTestVoter registers a username for an election and returns the voter token
func CreateTestVoter(t *testing.T, conn *db.DB, electionID, username string) string {
	t.Helper()

	voterToken, _ := auth.GenerateVoterToken()
	_, err := conn.Exec(`
		INSERT INTO voter_claim (election_id, username, voter_token, created_at)
		VALUES (?, ?, ?, ?)
	`, electionID, username, voterToken, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterToken
}

// SubmitTestBallot stores a ballot with candidate ID -> rank entries
func SubmitTestBallot(t *testing.T, conn *db.DB, electionID, voterToken string, rankings map[string]int) string {
	t.Helper()

	ballotID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO ballot (id, election_id, voter_token, submitted_at)
		VALUES (?, ?, ?, ?)
	`, ballotID, electionID, voterToken, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	for candidateID, rank := range rankings {
		_, err := conn.Exec(`
			INSERT INTO ranking (ballot_id, candidate_id, preference)
			VALUES (?, ?, ?)
		`, ballotID, candidateID, rank)
		if err != nil {
			t.Fatalf("Failed to create test ranking: %v", err)
		}
	}

	return ballotID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
