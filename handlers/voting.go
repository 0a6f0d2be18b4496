// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-stv/auth"
	"github.com/danielhkuo/quickly-stv/ballotfile"
	"github.com/danielhkuo/quickly-stv/cliparse"
	"github.com/danielhkuo/quickly-stv/db"
	"github.com/danielhkuo/quickly-stv/middleware"
	"github.com/danielhkuo/quickly-stv/models"
	"github.com/danielhkuo/quickly-stv/stv"
)

type VotingHandler struct {
	db  *db.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *db.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// RegisterVoter handles POST /elections/{slug}/register
func (h *VotingHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return
	}

	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}

	if len(req.Username) < 2 || len(req.Username) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username must be 2-50 characters")
		return
	}

	var electionID, status string
	err := h.db.QueryRow(`
		SELECT id, status FROM election WHERE share_slug = ?
	`, shareSlug).Scan(&electionID, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open for voting")
		return
	}

	voterToken, err := auth.GenerateVoterToken()
	if err != nil {
		slog.Error("failed to generate voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}

	// UNIQUE (election_id, username) rejects a second claim
	_, err = h.db.Exec(`
		INSERT INTO voter_claim (election_id, username, voter_token, created_at)
		VALUES (?, ?, ?, ?)
	`, electionID, req.Username, voterToken, time.Now().UTC())

	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Username already taken")
			return
		}
		slog.Error("failed to insert voter claim", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}

	slog.Info("voter registered", "election_id", electionID, "username", req.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterVoterResponse{
		VoterToken: voterToken,
	})
}

// voterElection resolves the slug of a request to an election ID and checks
// that the token middleware.RequireVoterToken accepted is registered for it.
// It writes the error response itself and returns ok=false on failure.
func (h *VotingHandler) voterElection(w http.ResponseWriter, r *http.Request) (electionID, status, voterToken string, ok bool) {
	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return "", "", "", false
	}

	voterToken = middleware.VoterToken(r)
	if voterToken == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
		return "", "", "", false
	}

	err := h.db.QueryRow(`
		SELECT id, status FROM election WHERE share_slug = ?
	`, shareSlug).Scan(&electionID, &status)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return "", "", "", false
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", "", "", false
	}

	var exists bool
	err = h.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM voter_claim
			WHERE election_id = ? AND voter_token = ?
		)
	`, electionID, voterToken).Scan(&exists)

	if err != nil {
		slog.Error("failed to verify voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", "", "", false
	}

	if !exists {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid voter token for this election")
		return "", "", "", false
	}

	return electionID, status, voterToken, true
}

// SubmitBallot handles POST /elections/{slug}/ballots
// A second submission from the same voter replaces the first.
func (h *VotingHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Rankings) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "rankings cannot be empty")
		return
	}

	electionID, status, voterToken, ok := h.voterElection(w, r)
	if !ok {
		return
	}

	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open for voting")
		return
	}

	candidates, err := getCandidates(h.db, electionID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Lay the rankings out by roster position and check them as a whole
	position := make(map[string]int, len(candidates))
	for i, c := range candidates {
		position[c.ID] = i
	}
	ranks := make([]int, len(candidates))
	for i := range ranks {
		ranks[i] = stv.NoPreference
	}
	for candidateID, rank := range req.Rankings {
		pos, known := position[candidateID]
		if !known {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid candidate_id: "+candidateID)
			return
		}
		ranks[pos] = rank
	}

	if err := ballotfile.ValidateRanking(ranks); err != nil {
		if errors.Is(err, ballotfile.ErrNoTopChoice) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "rankings must include a first choice")
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	clientIP := middleware.GetClientIP(r)
	ipHash := auth.HashIP(clientIP, h.cfg.AdminKeySalt)
	userAgent := r.UserAgent()
	now := time.Now().UTC()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// The election may have closed since the status check above. Holding the
	// row keeps a close from counting until this ballot is committed.
	err = tx.QueryRowForUpdate("SELECT status FROM election WHERE id = ?", electionID).Scan(&status)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open for voting")
		return
	}

	var ballotID string
	err = tx.QueryRow(`
		SELECT id FROM ballot WHERE election_id = ? AND voter_token = ?
	`, electionID, voterToken).Scan(&ballotID)

	isUpdate := err == nil
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if isUpdate {
		_, err = tx.Exec(`
			UPDATE ballot
			SET submitted_at = ?, ip_hash = ?, user_agent = ?
			WHERE id = ?
		`, now, ipHash, userAgent, ballotID)

		if err != nil {
			slog.Error("failed to update ballot", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update ballot")
			return
		}

		_, err = tx.Exec(`DELETE FROM ranking WHERE ballot_id = ?`, ballotID)
		if err != nil {
			slog.Error("failed to delete old rankings", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update ballot")
			return
		}
	} else {
		ballotID = uuid.NewString()
		_, err = tx.Exec(`
			INSERT INTO ballot (id, election_id, voter_token, submitted_at, ip_hash, user_agent)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ballotID, electionID, voterToken, now, ipHash, userAgent)

		if err != nil {
			if db.IsUniqueViolation(err) {
				middleware.ErrorResponse(w, http.StatusConflict, "Ballot submitted concurrently, retry")
				return
			}
			slog.Error("failed to insert ballot", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
			return
		}
	}

	for pos, rank := range ranks {
		if rank == stv.NoPreference {
			continue
		}
		_, err = tx.Exec(`
			INSERT INTO ranking (ballot_id, candidate_id, preference)
			VALUES (?, ?, ?)
		`, ballotID, candidates[pos].ID, rank)

		if err != nil {
			slog.Error("failed to insert ranking", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save rankings")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit ballot")
		return
	}

	message := "Ballot submitted successfully"
	if isUpdate {
		message = "Ballot updated successfully"
	}

	slog.Info("ballot submitted", "election_id", electionID, "ballot_id", ballotID, "is_update", isUpdate)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitBallotResponse{
		BallotID: ballotID,
		Message:  message,
	})
}

// GetMyBallot handles GET /elections/{slug}/my-ballot
// Works in any status so voters can check what they cast after closing.
func (h *VotingHandler) GetMyBallot(w http.ResponseWriter, r *http.Request) {
	electionID, _, voterToken, ok := h.voterElection(w, r)
	if !ok {
		return
	}

	var resp models.MyBallotResponse
	err := h.db.QueryRow(`
		SELECT id, submitted_at FROM ballot WHERE election_id = ? AND voter_token = ?
	`, electionID, voterToken).Scan(&resp.BallotID, &resp.SubmittedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "No ballot submitted yet")
		return
	}
	if err != nil {
		slog.Error("failed to query ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT candidate_id, preference FROM ranking WHERE ballot_id = ?
	`, resp.BallotID)
	if err != nil {
		slog.Error("failed to query rankings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	resp.Rankings = make(map[string]int)
	for rows.Next() {
		var candidateID string
		var rank int
		if err := rows.Scan(&candidateID, &rank); err != nil {
			slog.Error("failed to scan ranking", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		resp.Rankings[candidateID] = rank
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
