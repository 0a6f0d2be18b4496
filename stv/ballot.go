// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stv

// NoPreference marks a candidate the voter did not rank.
const NoPreference = -1

// NoCandidate is returned when a ballot has nowhere to go.
const NoCandidate = -1

// BallotStatus is either BallotActive or BallotExhausted.
type BallotStatus int

const (
	BallotActive BallotStatus = iota
	BallotExhausted
)

func (s BallotStatus) String() string {
	if s == BallotExhausted {
		return "exhausted"
	}
	return "active"
}

// Ballot is one voter's ranking plus the state the count mutates.
// preferences[id] is the rank given to candidate id, or NoPreference.
type Ballot struct {
	preferences []int
	currentRank int
	weight      float64
	status      BallotStatus
	holder      int
}

// NewBallot creates a full-weight ballot held by its rank-1 candidate.
// A ballot without a rank 1 is created exhausted.
func NewBallot(preferences []int) *Ballot {
	b := &Ballot{
		preferences: append([]int(nil), preferences...),
		currentRank: 1,
		weight:      1.0,
		holder:      NoCandidate,
	}
	b.holder = b.candidateAt(1)
	if b.holder == NoCandidate {
		b.status = BallotExhausted
	}
	return b
}

// Preferences returns a copy of the rank-per-candidate slice.
func (b *Ballot) Preferences() []int {
	return append([]int(nil), b.preferences...)
}

func (b *Ballot) CurrentRank() int { return b.currentRank }

func (b *Ballot) Weight() float64 { return b.weight }

func (b *Ballot) Status() BallotStatus { return b.status }

// Holder returns the id of the candidate holding the ballot, or NoCandidate.
func (b *Ballot) Holder() int { return b.holder }

// candidateAt returns the first candidate in roster order given rank, or NoCandidate.
func (b *Ballot) candidateAt(rank int) int {
	for id, r := range b.preferences {
		if r == rank {
			return id
		}
	}
	return NoCandidate
}

// NextDestination advances the ballot past its current rank until it reaches
// an Active candidate. The walk stops at the first rank no candidate holds.
func (b *Ballot) NextDestination(pool *Pool) (int, bool) {
	for {
		b.currentRank++
		id := b.candidateAt(b.currentRank)
		if id == NoCandidate {
			return NoCandidate, false
		}
		if pool.Candidate(id).Status == Active {
			return id, true
		}
	}
}

// Attenuate scales the weight by factor, clamped to [0, 1] so weight never grows.
func (b *Ballot) Attenuate(factor float64) {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	b.weight *= factor
}

// MarkExhausted drops the ballot from every future total.
func (b *Ballot) MarkExhausted() {
	b.status = BallotExhausted
	b.holder = NoCandidate
}

func (b *Ballot) moveTo(id int) {
	b.holder = id
}
