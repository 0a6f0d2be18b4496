// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-stv/auth"
	"github.com/danielhkuo/quickly-stv/cliparse"
	"github.com/danielhkuo/quickly-stv/db"
	"github.com/danielhkuo/quickly-stv/middleware"
	"github.com/danielhkuo/quickly-stv/models"
	"github.com/danielhkuo/quickly-stv/stv"
)

const (
	maxCandidateName = 100
	defaultQuotaRule = "droop"
)

const electionColumns = `id, title, description, creator_name, seats, quota_rule, method, status,
		share_slug, closed_at, final_snapshot_id, created_at`

func scanElection(row *sql.Row, e *models.Election) error {
	return row.Scan(
		&e.ID, &e.Title, &e.Description, &e.CreatorName, &e.Seats, &e.QuotaRule,
		&e.Method, &e.Status, &e.ShareSlug, &e.ClosedAt, &e.FinalSnapshotID, &e.CreatedAt,
	)
}

// snapshotPayload is what result_snapshot.payload stores
type snapshotPayload struct {
	Result     models.TallyResult `json:"result"`
	InputsHash string             `json:"inputs_hash"`
}

type ElectionHandler struct {
	db  *db.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *db.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.CreatorName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "creator_name is required")
		return
	}
	if req.Seats < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "seats must be at least 1")
		return
	}
	if req.QuotaRule == "" {
		req.QuotaRule = defaultQuotaRule
	}
	if _, err := stv.ParseQuotaRule(req.QuotaRule); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "quota_rule must be hare or droop")
		return
	}

	// Generate election ID
	electionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate election ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	adminKey := auth.GenerateAdminKey(electionID, h.cfg.AdminKeySalt)

	_, err = h.db.Exec(`
		INSERT INTO election (id, title, description, creator_name, seats, quota_rule, method, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, electionID, req.Title, req.Description, req.CreatorName, req.Seats, req.QuotaRule,
		models.MethodSTV, models.StatusDraft, time.Now().UTC())

	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	slog.Info("election created", "election_id", electionID, "creator", req.CreatorName,
		"seats", req.Seats, "quota_rule", req.QuotaRule)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: electionID,
		AdminKey:   adminKey,
	})
}

// AddCandidate handles POST /elections/{id}/candidates
// The candidate takes the next roster position.
func (h *ElectionHandler) AddCandidate(w http.ResponseWriter, r *http.Request) {
	// Admin key checked by middleware.RequireAdminKey
	electionID := r.PathValue("id")

	var req models.AddCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Name) > maxCandidateName {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is too long")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Locked so concurrent adds take roster positions one at a time
	var status string
	err = tx.QueryRowForUpdate("SELECT status FROM election WHERE id = ?", electionID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add candidates to non-draft election")
		return
	}

	var taken bool
	err = tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM candidate WHERE election_id = ? AND name = ?)
	`, electionID, req.Name).Scan(&taken)
	if err != nil {
		slog.Error("failed to check candidate name", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if taken {
		middleware.ErrorResponse(w, http.StatusConflict, "Candidate already on the roster")
		return
	}

	var position int
	err = tx.QueryRow("SELECT COUNT(*) FROM candidate WHERE election_id = ?", electionID).Scan(&position)
	if err != nil {
		slog.Error("failed to count candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	candidateID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate candidate ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO candidate (id, election_id, roster_position, name)
		VALUES (?, ?, ?, ?)
	`, candidateID, electionID, position, req.Name)

	if err != nil {
		// Name clashes were ruled out above, so this is a concurrent add
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Roster changed while adding candidate, retry")
			return
		}
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add candidate")
		return
	}

	slog.Info("candidate added", "election_id", electionID, "candidate_id", candidateID, "position", position)

	middleware.JSONResponse(w, http.StatusCreated, models.AddCandidateResponse{
		CandidateID: candidateID,
		Position:    position,
	})
}

// OpenElection handles POST /elections/{id}/open
func (h *ElectionHandler) OpenElection(w http.ResponseWriter, r *http.Request) {
	// Admin key checked by middleware.RequireAdminKey
	electionID := r.PathValue("id")

	// Check election exists and is in draft status
	var status string
	var seats, candidateCount int
	err := h.db.QueryRow(`
		SELECT e.status, e.seats, COUNT(c.id)
		FROM election e
		LEFT JOIN candidate c ON e.id = c.election_id
		WHERE e.id = ?
		GROUP BY e.status, e.seats
	`, electionID).Scan(&status, &seats, &candidateCount)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not in draft status")
		return
	}

	if candidateCount < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Election must have at least 2 candidates")
		return
	}
	if candidateCount < seats {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Election needs at least as many candidates as seats")
		return
	}

	shareSlug := auth.GenerateShareSlug(electionID, h.cfg.ElectionSlugSalt)

	_, err = h.db.Exec(`
		UPDATE election
		SET status = ?, share_slug = ?
		WHERE id = ?
	`, models.StatusOpen, shareSlug, electionID)

	if err != nil {
		slog.Error("failed to open election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to open election")
		return
	}

	slog.Info("election opened", "election_id", electionID, "share_slug", shareSlug)

	middleware.JSONResponse(w, http.StatusOK, models.OpenElectionResponse{
		ShareSlug: shareSlug,
		ShareURL:  h.cfg.BaseURL + "/elections/" + shareSlug,
	})
}

// GetElectionAdmin handles GET /elections/{id}/admin
// Returns election details for admin access using election ID and admin key
func (h *ElectionHandler) GetElectionAdmin(w http.ResponseWriter, r *http.Request) {
	// Admin key checked by middleware.RequireAdminKey
	electionID := r.PathValue("id")

	var election models.Election
	err := scanElection(h.db.QueryRow(`
		SELECT `+electionColumns+`
		FROM election
		WHERE id = ?
	`, electionID), &election)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
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

// CloseElection handles POST /elections/{id}/close
// Runs the count and stores it as the final snapshot in one transaction.
func (h *ElectionHandler) CloseElection(w http.ResponseWriter, r *http.Request) {
	// Admin key checked by middleware.RequireAdminKey
	electionID := r.PathValue("id")

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	// Locked so no ballot commits between the count and the status change
	var status string
	err = tx.QueryRowForUpdate("SELECT status FROM election WHERE id = ?", electionID).Scan(&status)
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
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open")
		return
	}

	result, inputsHash, err := ComputeSTVResult(tx, electionID)
	if err != nil {
		slog.Error("failed to count election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to count ballots")
		return
	}

	payload, err := json.Marshal(snapshotPayload{Result: result, InputsHash: inputsHash})
	if err != nil {
		slog.Error("failed to encode snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	snapshotID := uuid.NewString()
	closedAt := time.Now().UTC()

	// Guarded on status so a concurrent close loses here instead of
	// writing a second snapshot
	res, err := tx.Exec(`
		UPDATE election
		SET status = ?, closed_at = ?, final_snapshot_id = ?
		WHERE id = ? AND status = ?
	`, models.StatusClosed, closedAt, snapshotID, electionID, models.StatusOpen)

	if err != nil {
		slog.Error("failed to close election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close election")
		return
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO result_snapshot (id, election_id, method, computed_at, payload)
		VALUES (?, ?, ?, ?, ?)
	`, snapshotID, electionID, models.MethodSTV, closedAt, string(payload))

	if err != nil {
		slog.Error("failed to insert snapshot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close election")
		return
	}

	slog.Info("election closed", "election_id", electionID, "snapshot_id", snapshotID,
		"winners", result.Winners, "ballots", result.TotalBallots)

	middleware.JSONResponse(w, http.StatusOK, models.CloseElectionResponse{
		ClosedAt: closedAt,
		Snapshot: models.ResultSnapshot{
			ID:         snapshotID,
			ElectionID: electionID,
			Method:     models.MethodSTV,
			ComputedAt: closedAt,
			Result:     result,
			InputsHash: inputsHash,
		},
	})
}
