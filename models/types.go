package models

import "time"

// Election status constants
const (
	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Counting method constants
const (
	MethodSTV = "stv"
)

// Request types

type CreateElectionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorName string `json:"creator_name"`
	Seats       int    `json:"seats"`
	QuotaRule   string `json:"quota_rule"` // "hare" or "droop"
}

type AddCandidateRequest struct {
	Name string `json:"name"`
}

type RegisterVoterRequest struct {
	Username string `json:"username"`
}

// candidate_id -> rank (1 = most preferred); omitted candidates are unranked
type SubmitBallotRequest struct {
	Rankings map[string]int `json:"rankings"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
	AdminKey   string `json:"admin_key"`
}

type AddCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
	Position    int    `json:"position"`
}

type OpenElectionResponse struct {
	ShareSlug string `json:"share_slug"`
	ShareURL  string `json:"share_url"`
}

type RegisterVoterResponse struct {
	VoterToken string `json:"voter_token"`
}

type SubmitBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Message  string `json:"message"`
}

type MyBallotResponse struct {
	BallotID    string         `json:"ballot_id"`
	Rankings    map[string]int `json:"rankings"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

type CloseElectionResponse struct {
	ClosedAt time.Time      `json:"closed_at"`
	Snapshot ResultSnapshot `json:"snapshot"`
}

type ResultsResponse struct {
	Election    Election    `json:"election"`
	Result      TallyResult `json:"result"`
	BallotCount int         `json:"ballot_count"`
	SnapshotID  string      `json:"snapshot_id"`
	InputsHash  string      `json:"inputs_hash"`
}

type BallotCountResponse struct {
	BallotCount int `json:"ballot_count"`
}

// Domain types

type Election struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatorName     string     `json:"creator_name"`
	Seats           int        `json:"seats"`
	QuotaRule       string     `json:"quota_rule"`
	Method          string     `json:"method"`
	Status          string     `json:"status"`
	ShareSlug       *string    `json:"share_slug,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	FinalSnapshotID *string    `json:"final_snapshot_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Position is the 0-based roster index; it decides elimination ties.
type Candidate struct {
	ID         string `json:"id"`
	ElectionID string `json:"election_id"`
	Position   int    `json:"position"`
	Name       string `json:"name"`
}

type ElectionWithCandidates struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
}

// STV Result Types

type CandidateTotal struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Total       float64 `json:"total"`
}

type TallyRound struct {
	Round       int              `json:"round"`
	Totals      []CandidateTotal `json:"totals"`
	Elected     []string         `json:"elected"`
	Eliminated  []string         `json:"eliminated"`
	Shortcut    bool             `json:"shortcut"`
	Transferred int              `json:"transferred"`
	Exhausted   int              `json:"exhausted"`
}

type TallyResult struct {
	Winners          []string     `json:"winners"`    // names, roster order
	WinnerIDs        []string     `json:"winner_ids"` // candidate IDs, roster order
	Seats            int          `json:"seats"`
	QuotaRule        string       `json:"quota_rule"`
	Quota            int          `json:"quota"`
	TotalBallots     int          `json:"total_ballots"`
	ExhaustedBallots int          `json:"exhausted_ballots"`
	Rounds           []TallyRound `json:"rounds"`
}

type ResultSnapshot struct {
	ID         string      `json:"id"`
	ElectionID string      `json:"election_id"`
	Method     string      `json:"method"`
	ComputedAt time.Time   `json:"computed_at"`
	Result     TallyResult `json:"result"`
	InputsHash string      `json:"inputs_hash"` // sha256 over ballot IDs
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
