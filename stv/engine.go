// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stv

import (
	"fmt"
	"log/slog"
	"sort"
)

// Phase is the engine state: Running until every seat is settled, then Done.
type Phase int

const (
	Running Phase = iota
	Done
)

func (p Phase) String() string {
	if p == Done {
		return "done"
	}
	return "running"
}

// Config describes the election being counted
type Config struct {
	Seats  int
	Rule   QuotaRule
	Logger *slog.Logger // nil uses slog.Default()
}

// Round records what a single Step decided.
// Totals are the candidate totals the decisions were based on.
type Round struct {
	Number      int
	Totals      []float64
	Elected     []int
	Eliminated  []int
	Shortcut    bool
	Transferred int
	Exhausted   int
}

// Result is the outcome of a finished count.
type Result struct {
	Winners      []string
	WinnerIDs    []int
	Quota        int
	TotalBallots int
	Exhausted    int
	Rounds       []Round
}

// Engine owns all mutable count state for one run.
// Nothing outside the engine may touch the pool or ballots once counting starts.
type Engine struct {
	seats        int
	rule         QuotaRule
	pool         *Pool
	ballots      []*Ballot
	holdings     [][]*Ballot
	totalBallots int
	quota        int
	phase        Phase
	rounds       []Round
	log          *slog.Logger
}

// NewEngine builds the initial state: every candidate Active and every ballot
// held by its first preference. rankings[i][id] is the rank ballot i gives
// candidate id, or NoPreference.
func NewEngine(names []string, rankings [][]int, cfg Config) (*Engine, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: empty roster", ErrInvariantViolation)
	}
	if cfg.Seats <= 0 {
		return nil, fmt.Errorf("%w: seats must be positive, got %d", ErrInvariantViolation, cfg.Seats)
	}
	if cfg.Seats > len(names) {
		return nil, fmt.Errorf("%w: %d seats for %d candidates", ErrInvariantViolation, cfg.Seats, len(names))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		seats:    cfg.Seats,
		rule:     cfg.Rule,
		pool:     NewPool(names),
		ballots:  make([]*Ballot, 0, len(rankings)),
		holdings: make([][]*Ballot, len(names)),
		log:      logger,
	}

	for i, ranking := range rankings {
		if len(ranking) != len(names) {
			return nil, fmt.Errorf("%w: ballot %d has %d entries, want %d",
				ErrInvariantViolation, i, len(ranking), len(names))
		}
		b := NewBallot(ranking)
		e.ballots = append(e.ballots, b)
		if b.Holder() == NoCandidate {
			continue
		}
		e.holdings[b.Holder()] = append(e.holdings[b.Holder()], b)
		e.totalBallots++
	}

	e.quota = Quota(e.totalBallots, e.seats, e.rule)
	e.pool.RecomputeTotals(e.ballots)
	return e, nil
}

func (e *Engine) Pool() *Pool { return e.pool }

func (e *Engine) Ballots() []*Ballot { return e.ballots }

func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) Quota() int { return e.quota }

func (e *Engine) TotalBallots() int { return e.totalBallots }

func (e *Engine) Rounds() []Round { return e.rounds }

// Held returns the ballots candidate id currently holds.
func (e *Engine) Held(id int) []*Ballot { return e.holdings[id] }

// Step runs one round: shortcut check, quota check, elimination fallback,
// transfers and recount.
func (e *Engine) Step() (Round, error) {
	if e.phase == Done {
		return Round{}, fmt.Errorf("%w: count already finished", ErrInvariantViolation)
	}

	round := Round{
		Number: len(e.rounds) + 1,
		Totals: e.pool.Totals(),
	}

	remaining := e.pool.CountActive()
	open := e.seats - e.pool.CountElected()

	if remaining == open {
		round.Elected = e.pool.ElectAllRemaining()
		round.Shortcut = true
		return e.finish(round), nil
	}
	if open == 0 {
		return e.finish(round), nil
	}

	round.Elected = e.electByQuota(open)

	if len(round.Elected) == 0 {
		id, err := e.pool.EliminateLowest()
		if err != nil {
			return Round{}, err
		}
		round.Eliminated = []int{id}
	}

	changed := append(append([]int(nil), round.Elected...), round.Eliminated...)
	sort.Ints(changed)
	for _, id := range changed {
		e.transfer(id, &round)
	}

	e.pool.RecomputeTotals(e.ballots)
	e.rounds = append(e.rounds, round)

	e.log.Debug("round complete",
		"round", round.Number,
		"elected", e.names(round.Elected),
		"eliminated", e.names(round.Eliminated),
		"transferred", round.Transferred,
		"exhausted", round.Exhausted,
	)

	return round, nil
}

// Run steps until Done. A count over N candidates finishes within N rounds.
func (e *Engine) Run() (*Result, error) {
	maxRounds := e.pool.Len()
	for e.phase == Running {
		if len(e.rounds) >= maxRounds {
			return nil, fmt.Errorf("%w: count still running after %d rounds", ErrInvariantViolation, maxRounds)
		}
		if _, err := e.Step(); err != nil {
			return nil, err
		}
	}
	return e.Result(), nil
}

// Result summarises the current state. Winners are in roster order.
func (e *Engine) Result() *Result {
	res := &Result{
		Winners:      e.pool.ElectedNames(),
		Quota:        e.quota,
		TotalBallots: e.totalBallots,
		Rounds:       e.rounds,
	}
	for _, c := range e.pool.Candidates() {
		if c.Status == Elected {
			res.WinnerIDs = append(res.WinnerIDs, c.ID)
		}
	}
	for _, b := range e.ballots {
		// ballots without a first choice were never counted
		if b.Status() == BallotExhausted && b.CurrentRank() > 1 {
			res.Exhausted++
		}
	}
	return res
}

func (e *Engine) finish(round Round) Round {
	e.phase = Done
	e.rounds = append(e.rounds, round)
	e.log.Debug("count finished",
		"round", round.Number,
		"shortcut", round.Shortcut,
		"winners", e.pool.ElectedNames(),
	)
	return round
}

// electByQuota elects Active candidates at or over quota. If more reach quota
// than seats remain, the highest totals win, earlier roster entries first.
func (e *Engine) electByQuota(open int) []int {
	var reached []*Candidate
	for _, c := range e.pool.Active() {
		if c.Total >= float64(e.quota) {
			reached = append(reached, c)
		}
	}
	if len(reached) > open {
		sort.SliceStable(reached, func(i, j int) bool {
			return higherFirst(reached[i], reached[j])
		})
		reached = reached[:open]
	}

	ids := make([]int, 0, len(reached))
	for _, c := range reached {
		c.Status = Elected
		ids = append(ids, c.ID)
	}
	sort.Ints(ids)
	return ids
}

// transfer moves every ballot held by a candidate that left Active this round.
func (e *Engine) transfer(id int, round *Round) {
	held := e.holdings[id]
	elected := e.pool.Candidate(id).Status == Elected

	var factor float64
	if elected && len(held) > 0 {
		factor = surplusFactor(len(held), e.quota)
	}

	for _, b := range held {
		if elected {
			b.Attenuate(factor)
		}
		dest, ok := b.NextDestination(e.pool)
		if !ok {
			b.MarkExhausted()
			round.Exhausted++
			continue
		}
		b.moveTo(dest)
		e.holdings[dest] = append(e.holdings[dest], b)
		round.Transferred++
	}
	e.holdings[id] = nil
}

// surplusFactor is (held - quota) / held in whole ballots, truncated.
// It is 0 whenever quota > 0 and 1 when quota is 0.
func surplusFactor(held, quota int) float64 {
	return float64((held - quota) / held)
}

func (e *Engine) names(ids []int) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = e.pool.Candidate(id).Name
	}
	return names
}
