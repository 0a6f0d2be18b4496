// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-stv/cliparse"
	"github.com/danielhkuo/quickly-stv/db"
	"github.com/danielhkuo/quickly-stv/middleware"
	"github.com/danielhkuo/quickly-stv/models"
	"github.com/danielhkuo/quickly-stv/report"
)

type ResultsHandler struct {
	db  *db.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *db.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// electionBySlug loads an election and writes the error response when it can't.
func (h *ResultsHandler) electionBySlug(w http.ResponseWriter, r *http.Request) (models.Election, bool) {
	var election models.Election

	shareSlug := r.PathValue("slug")
	if shareSlug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "slug is required")
		return election, false
	}

	err := scanElection(h.db.QueryRow(`
		SELECT `+electionColumns+`
		FROM election
		WHERE share_slug = ?
	`, shareSlug), &election)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return election, false
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return election, false
	}
	return election, true
}

// finalSnapshot loads the snapshot CloseElection stored for a closed election
func (h *ResultsHandler) finalSnapshot(election models.Election) (snapshotPayload, error) {
	var payload snapshotPayload
	if election.FinalSnapshotID == nil {
		return payload, fmt.Errorf("closed election %s has no snapshot", election.ID)
	}

	var payloadJSON string
	err := h.db.QueryRow(`
		SELECT payload FROM result_snapshot WHERE id = ?
	`, *election.FinalSnapshotID).Scan(&payloadJSON)
	if err != nil {
		return payload, fmt.Errorf("failed to query snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return payload, fmt.Errorf("failed to parse snapshot payload: %w", err)
	}
	return payload, nil
}

// GetElection handles GET /elections/{slug}
// Returns election details and candidates, but NOT results (results are sealed until closed)
func (h *ResultsHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	election, ok := h.electionBySlug(w, r)
	if !ok {
		return
	}

	candidates, err := getCandidates(h.db, election.ID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ElectionWithCandidates{
		Election:   election,
		Candidates: candidates,
	})
}

// GetResults handles GET /elections/{slug}/results
// Returns 403 while the election is open and the final snapshot once closed
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	election, ok := h.electionBySlug(w, r)
	if !ok {
		return
	}

	// Results are sealed until close
	if election.Status != models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are hidden until the election is closed")
		return
	}

	payload, err := h.finalSnapshot(election)
	if err != nil {
		slog.Error("failed to load snapshot", "error", err, "election_id", election.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Results not available")
		return
	}

	var ballotCount int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM ballot WHERE election_id = ?
	`, election.ID).Scan(&ballotCount)

	if err != nil {
		slog.Error("failed to count ballots for results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Election:    election,
		Result:      payload.Result,
		BallotCount: ballotCount,
		SnapshotID:  *election.FinalSnapshotID,
		InputsHash:  payload.InputsHash,
	})
}

// GetResultsText handles GET /elections/{slug}/results.txt
// Same seal as GetResults; renders the winners line and the round table.
func (h *ResultsHandler) GetResultsText(w http.ResponseWriter, r *http.Request) {
	election, ok := h.electionBySlug(w, r)
	if !ok {
		return
	}

	if election.Status != models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are hidden until the election is closed")
		return
	}

	payload, err := h.finalSnapshot(election)
	if err != nil {
		slog.Error("failed to load snapshot", "error", err, "election_id", election.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Results not available")
		return
	}

	e, res, err := reportFromSnapshot(payload.Result)
	if err != nil {
		slog.Error("failed to read snapshot result", "error", err, "election_id", election.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render results")
		return
	}

	var buf bytes.Buffer
	if err := report.Winners(&buf, res); err != nil {
		slog.Error("failed to render winners", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render results")
		return
	}
	if err := report.Rounds(&buf, e, res); err != nil {
		slog.Error("failed to render rounds", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to render results")
		return
	}

	middleware.TextResponse(w, http.StatusOK, buf.Bytes())
}

// GetBallotCount handles GET /elections/{slug}/ballot-count
// Returns the number of ballots submitted (visible even while open)
func (h *ResultsHandler) GetBallotCount(w http.ResponseWriter, r *http.Request) {
	election, ok := h.electionBySlug(w, r)
	if !ok {
		return
	}

	var count int
	err := h.db.QueryRow(`
		SELECT COUNT(*) FROM ballot WHERE election_id = ?
	`, election.ID).Scan(&count)

	if err != nil {
		slog.Error("failed to count ballots", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BallotCountResponse{
		BallotCount: count,
	})
}
