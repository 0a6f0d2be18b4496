// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-stv/auth"
	"github.com/danielhkuo/quickly-stv/models"
	"github.com/danielhkuo/quickly-stv/testutil"
)

func TestRegisterVoter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	_, _, shareSlug := testutil.CreateTestElection(t, db, cfg, "open", 1, "droop")
	_, _, closedSlug := testutil.CreateTestElection(t, db, cfg, "closed", 1, "droop")

	tests := []struct {
		name           string
		slug           string
		username       string
		expectedStatus int
	}{
		{"valid registration", shareSlug, "alice", http.StatusCreated},
		{"username taken", shareSlug, "alice", http.StatusConflict},
		{"closed election", closedSlug, "bob", http.StatusConflict},
		{"username too short", shareSlug, "a", http.StatusBadRequest},
		{"missing username", shareSlug, "", http.StatusBadRequest},
		{"election not found", "nonexistent", "carol", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/elections/"+tt.slug+"/register",
				models.RegisterVoterRequest{Username: tt.username}, nil)
			req.SetPathValue("slug", tt.slug)
			w := httptest.NewRecorder()

			handler.RegisterVoter(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.RegisterVoterResponse
			testutil.AssertJSON(t, w, &resp)
			if err := auth.ValidateVoterToken(resp.VoterToken); err != nil {
				t.Errorf("Expected well-formed voter token, got %q", resp.VoterToken)
			}
		})
	}
}

func TestSubmitBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	electionID, _, shareSlug := testutil.CreateTestElection(t, db, cfg, "open", 1, "droop")
	a := testutil.AddTestCandidate(t, db, electionID, "A")
	b := testutil.AddTestCandidate(t, db, electionID, "B")
	c := testutil.AddTestCandidate(t, db, electionID, "C")
	voterToken := testutil.CreateTestVoter(t, db, electionID, "alice")
	strangerToken, _ := auth.GenerateVoterToken()

	tests := []struct {
		name           string
		voterToken     string
		rankings       map[string]int
		expectedStatus int
	}{
		{"missing token", "", map[string]int{a: 1}, http.StatusUnauthorized},
		{"malformed token", "not-a-token", map[string]int{a: 1}, http.StatusUnauthorized},
		{"unregistered token", strangerToken, map[string]int{a: 1}, http.StatusUnauthorized},
		{"empty rankings", voterToken, map[string]int{}, http.StatusBadRequest},
		{"unknown candidate", voterToken, map[string]int{"nope": 1}, http.StatusBadRequest},
		{"no first choice", voterToken, map[string]int{a: 2, b: 3}, http.StatusBadRequest},
		{"repeated rank", voterToken, map[string]int{a: 1, b: 1}, http.StatusBadRequest},
		{"rank past roster", voterToken, map[string]int{a: 1, b: 4}, http.StatusBadRequest},
		{"zero rank", voterToken, map[string]int{a: 1, b: 0}, http.StatusBadRequest},
		{"partial ranking", voterToken, map[string]int{b: 1, c: 2}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.voterToken != "" {
				headers["X-Voter-Token"] = tt.voterToken
			}
			req := testutil.MakeRequest("POST", "/elections/"+shareSlug+"/ballots",
				models.SubmitBallotRequest{Rankings: tt.rankings}, headers)
			req.SetPathValue("slug", shareSlug)
			w := httptest.NewRecorder()

			asVoter(handler.SubmitBallot)(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	// Only the accepted ballot is stored, with only its ranked candidates
	var ballots, rankings int
	db.QueryRow("SELECT COUNT(*) FROM ballot WHERE election_id = ?", electionID).Scan(&ballots)
	db.QueryRow(`
		SELECT COUNT(*) FROM ranking r JOIN ballot b ON b.id = r.ballot_id WHERE b.election_id = ?
	`, electionID).Scan(&rankings)
	if ballots != 1 {
		t.Errorf("Expected 1 ballot, got %d", ballots)
	}
	if rankings != 2 {
		t.Errorf("Expected 2 ranking rows, got %d", rankings)
	}
}

func TestSubmitBallotReplacesPrevious(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	electionID, _, shareSlug := testutil.CreateTestElection(t, db, cfg, "open", 1, "droop")
	a := testutil.AddTestCandidate(t, db, electionID, "A")
	b := testutil.AddTestCandidate(t, db, electionID, "B")
	voterToken := testutil.CreateTestVoter(t, db, electionID, "alice")

	submit := func(rankings map[string]int) models.SubmitBallotResponse {
		req := testutil.MakeRequest("POST", "/elections/"+shareSlug+"/ballots",
			models.SubmitBallotRequest{Rankings: rankings}, map[string]string{"X-Voter-Token": voterToken})
		req.SetPathValue("slug", shareSlug)
		w := httptest.NewRecorder()
		asVoter(handler.SubmitBallot)(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.SubmitBallotResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	first := submit(map[string]int{a: 1, b: 2})
	second := submit(map[string]int{b: 1})

	if first.BallotID != second.BallotID {
		t.Errorf("Expected the same ballot to be updated, got %s and %s", first.BallotID, second.BallotID)
	}
	if second.Message != "Ballot updated successfully" {
		t.Errorf("Unexpected message '%s'", second.Message)
	}

	req := testutil.MakeRequest("GET", "/elections/"+shareSlug+"/my-ballot", nil, map[string]string{
		"X-Voter-Token": voterToken,
	})
	req.SetPathValue("slug", shareSlug)
	w := httptest.NewRecorder()
	asVoter(handler.GetMyBallot)(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var mine models.MyBallotResponse
	testutil.AssertJSON(t, w, &mine)
	if len(mine.Rankings) != 1 || mine.Rankings[b] != 1 {
		t.Errorf("Expected only B ranked first, got %v", mine.Rankings)
	}
}

func TestSubmitBallotToClosedElection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	electionID, _, shareSlug := testutil.CreateTestElection(t, db, cfg, "closed", 1, "droop")
	a := testutil.AddTestCandidate(t, db, electionID, "A")
	testutil.AddTestCandidate(t, db, electionID, "B")
	voterToken := testutil.CreateTestVoter(t, db, electionID, "latecomer")

	req := testutil.MakeRequest("POST", "/elections/"+shareSlug+"/ballots",
		models.SubmitBallotRequest{Rankings: map[string]int{a: 1}}, map[string]string{"X-Voter-Token": voterToken})
	req.SetPathValue("slug", shareSlug)
	w := httptest.NewRecorder()

	asVoter(handler.SubmitBallot)(w, req)

	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestGetMyBallot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg)

	electionID, _, shareSlug := testutil.CreateTestElection(t, db, cfg, "open", 1, "droop")
	a := testutil.AddTestCandidate(t, db, electionID, "A")
	b := testutil.AddTestCandidate(t, db, electionID, "B")
	voted := testutil.CreateTestVoter(t, db, electionID, "voted")
	notVoted := testutil.CreateTestVoter(t, db, electionID, "undecided")
	ballotID := testutil.SubmitTestBallot(t, db, electionID, voted, map[string]int{a: 2, b: 1})

	tests := []struct {
		name           string
		voterToken     string
		expectedStatus int
	}{
		{"has ballot", voted, http.StatusOK},
		{"no ballot yet", notVoted, http.StatusNotFound},
		{"missing token", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/elections/"+shareSlug+"/my-ballot", nil, map[string]string{
				"X-Voter-Token": tt.voterToken,
			})
			req.SetPathValue("slug", shareSlug)
			w := httptest.NewRecorder()

			asVoter(handler.GetMyBallot)(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.MyBallotResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.BallotID != ballotID {
				t.Errorf("Expected ballot %s, got %s", ballotID, resp.BallotID)
			}
			if resp.Rankings[a] != 2 || resp.Rankings[b] != 1 {
				t.Errorf("Unexpected rankings %v", resp.Rankings)
			}
		})
	}
}
