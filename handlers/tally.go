// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"

	"github.com/danielhkuo/quickly-stv/auth"
	"github.com/danielhkuo/quickly-stv/db"
	"github.com/danielhkuo/quickly-stv/models"
	"github.com/danielhkuo/quickly-stv/report"
	"github.com/danielhkuo/quickly-stv/stv"
)

// electionTally is a finished count and the roster it ran against
type electionTally struct {
	candidates []models.Candidate
	ballotIDs  []string
	seats      int
	rule       stv.QuotaRule
	result     *stv.Result
}

// ComputeSTVResult counts every stored ballot of an election and returns the
// result along with the hash of the ballot IDs that went into it.
func ComputeSTVResult(q db.Querier, electionID string) (models.TallyResult, string, error) {
	t, err := runTally(q, electionID)
	if err != nil {
		return models.TallyResult{}, "", err
	}
	return t.toModel(), auth.HashInputs(t.ballotIDs), nil
}

func runTally(q db.Querier, electionID string) (*electionTally, error) {
	var seats int
	var ruleName string
	err := q.QueryRow(`
		SELECT seats, quota_rule FROM election WHERE id = ?
	`, electionID).Scan(&seats, &ruleName)
	if err != nil {
		return nil, fmt.Errorf("failed to get election: %w", err)
	}

	rule, err := stv.ParseQuotaRule(ruleName)
	if err != nil {
		return nil, err
	}

	candidates, err := getCandidates(q, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidates: %w", err)
	}

	ballotIDs, rankings, err := getRankings(q, electionID, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to get rankings: %w", err)
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}

	engine, err := stv.NewEngine(names, rankings, stv.Config{
		Seats:  seats,
		Rule:   rule,
		Logger: slog.Default().With("election_id", electionID),
	})
	if err != nil {
		return nil, err
	}

	result, err := engine.Run()
	if err != nil {
		return nil, err
	}

	return &electionTally{
		candidates: candidates,
		ballotIDs:  ballotIDs,
		seats:      seats,
		rule:       rule,
		result:     result,
	}, nil
}

// getCandidates returns the roster in position order
func getCandidates(q db.Querier, electionID string) ([]models.Candidate, error) {
	rows, err := q.Query(`
		SELECT id, election_id, roster_position, name
		FROM candidate
		WHERE election_id = ?
		ORDER BY roster_position
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Position, &c.Name); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// getRankings builds one rank-per-candidate slice per ballot, indexed by
// roster position. Candidates a ballot leaves out are stv.NoPreference.
func getRankings(q db.Querier, electionID string, candidates []models.Candidate) ([]string, [][]int, error) {
	position := make(map[string]int, len(candidates))
	for i, c := range candidates {
		position[c.ID] = i
	}

	rows, err := q.Query(`
		SELECT b.id, r.candidate_id, r.preference
		FROM ballot b
		LEFT JOIN ranking r ON r.ballot_id = b.id
		WHERE b.election_id = ?
		ORDER BY b.submitted_at, b.id
	`, electionID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var ballotIDs []string
	var rankings [][]int
	index := make(map[string]int)
	for rows.Next() {
		var ballotID string
		var candidateID *string
		var preference *int
		if err := rows.Scan(&ballotID, &candidateID, &preference); err != nil {
			return nil, nil, err
		}

		i, ok := index[ballotID]
		if !ok {
			i = len(rankings)
			index[ballotID] = i
			ballotIDs = append(ballotIDs, ballotID)
			ranks := make([]int, len(candidates))
			for j := range ranks {
				ranks[j] = stv.NoPreference
			}
			rankings = append(rankings, ranks)
		}

		if candidateID == nil || preference == nil {
			continue
		}
		pos, ok := position[*candidateID]
		if !ok {
			return nil, nil, fmt.Errorf("ballot %s ranks unknown candidate %s", ballotID, *candidateID)
		}
		rankings[i][pos] = *preference
	}
	return ballotIDs, rankings, rows.Err()
}

func (t *electionTally) toModel() models.TallyResult {
	res := t.result
	out := models.TallyResult{
		Winners:          res.Winners,
		WinnerIDs:        make([]string, len(res.WinnerIDs)),
		Seats:            t.seats,
		QuotaRule:        t.rule.String(),
		Quota:            res.Quota,
		TotalBallots:     res.TotalBallots,
		ExhaustedBallots: res.Exhausted,
		Rounds:           make([]models.TallyRound, len(res.Rounds)),
	}
	if out.Winners == nil {
		out.Winners = []string{}
	}
	for i, id := range res.WinnerIDs {
		out.WinnerIDs[i] = t.candidates[id].ID
	}

	for i, round := range res.Rounds {
		tr := models.TallyRound{
			Round:       round.Number,
			Totals:      make([]models.CandidateTotal, len(round.Totals)),
			Elected:     t.names(round.Elected),
			Eliminated:  t.names(round.Eliminated),
			Shortcut:    round.Shortcut,
			Transferred: round.Transferred,
			Exhausted:   round.Exhausted,
		}
		for id, total := range round.Totals {
			tr.Totals[id] = models.CandidateTotal{
				CandidateID: t.candidates[id].ID,
				Name:        t.candidates[id].Name,
				Total:       total,
			}
		}
		out.Rounds[i] = tr
	}
	return out
}

func (t *electionTally) names(ids []int) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = t.candidates[id].Name
	}
	return names
}

// reportFromSnapshot rebuilds the report.Rounds input from a stored result,
// so the text report always matches the JSON one. Round totals carry the full
// roster in order; a result without rounds falls back to its winners.
func reportFromSnapshot(res models.TallyResult) (report.Election, *stv.Result, error) {
	rule, err := stv.ParseQuotaRule(res.QuotaRule)
	if err != nil {
		return report.Election{}, nil, err
	}

	names := res.Winners
	if len(res.Rounds) > 0 {
		names = make([]string, len(res.Rounds[0].Totals))
		for i, ct := range res.Rounds[0].Totals {
			names[i] = ct.Name
		}
	}
	position := make(map[string]int, len(names))
	for i, name := range names {
		position[name] = i
	}
	ids := func(names []string) ([]int, error) {
		out := make([]int, len(names))
		for i, name := range names {
			pos, ok := position[name]
			if !ok {
				return nil, fmt.Errorf("snapshot names unknown candidate %q", name)
			}
			out[i] = pos
		}
		return out, nil
	}

	out := &stv.Result{
		Winners:      res.Winners,
		Quota:        res.Quota,
		TotalBallots: res.TotalBallots,
		Exhausted:    res.ExhaustedBallots,
		Rounds:       make([]stv.Round, len(res.Rounds)),
	}
	if out.WinnerIDs, err = ids(res.Winners); err != nil {
		return report.Election{}, nil, err
	}

	for i, tr := range res.Rounds {
		if len(tr.Totals) != len(names) {
			return report.Election{}, nil, fmt.Errorf("snapshot round %d has %d totals, roster has %d", tr.Round, len(tr.Totals), len(names))
		}
		round := stv.Round{
			Number:      tr.Round,
			Totals:      make([]float64, len(tr.Totals)),
			Shortcut:    tr.Shortcut,
			Transferred: tr.Transferred,
			Exhausted:   tr.Exhausted,
		}
		for j, ct := range tr.Totals {
			round.Totals[j] = ct.Total
		}
		if round.Elected, err = ids(tr.Elected); err != nil {
			return report.Election{}, nil, err
		}
		if round.Eliminated, err = ids(tr.Eliminated); err != nil {
			return report.Election{}, nil, err
		}
		out.Rounds[i] = round
	}

	return report.Election{Names: names, Seats: res.Seats, Rule: rule}, out, nil
}
