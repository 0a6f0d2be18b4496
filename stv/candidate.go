// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stv

import (
	"fmt"
	"sort"
)

// Status is a candidate's position in the count. Transitions only leave Active.
type Status int

const (
	Active Status = iota
	Elected
	Eliminated
)

func (s Status) String() string {
	switch s {
	case Elected:
		return "elected"
	case Eliminated:
		return "eliminated"
	default:
		return "active"
	}
}

// Candidate is one roster entry. ID is the roster index.
type Candidate struct {
	ID     int
	Name   string
	Total  float64
	Status Status
}

// Pool holds the roster in its original order.
type Pool struct {
	candidates []*Candidate
}

// NewPool creates an all-Active pool from roster names.
func NewPool(names []string) *Pool {
	p := &Pool{candidates: make([]*Candidate, len(names))}
	for i, name := range names {
		p.candidates[i] = &Candidate{ID: i, Name: name}
	}
	return p
}

// Len returns the roster size.
func (p *Pool) Len() int {
	return len(p.candidates)
}

// Candidate returns the candidate with the given roster id.
func (p *Pool) Candidate(id int) *Candidate {
	return p.candidates[id]
}

// Candidates returns the roster in order.
func (p *Pool) Candidates() []*Candidate {
	return p.candidates
}

// Active returns the Active candidates in roster order.
func (p *Pool) Active() []*Candidate {
	var active []*Candidate
	for _, c := range p.candidates {
		if c.Status == Active {
			active = append(active, c)
		}
	}
	return active
}

// RecomputeTotals replaces every Active candidate's total with the summed
// weight of the Active ballots it currently holds.
func (p *Pool) RecomputeTotals(ballots []*Ballot) {
	for _, c := range p.candidates {
		if c.Status == Active {
			c.Total = 0
		}
	}
	for _, b := range ballots {
		if b.Status() != BallotActive || b.Holder() == NoCandidate {
			continue
		}
		c := p.candidates[b.Holder()]
		if c.Status == Active {
			c.Total += b.Weight()
		}
	}
}

// ElectAllRemaining marks every Active candidate Elected and returns their ids.
func (p *Pool) ElectAllRemaining() []int {
	var ids []int
	for _, c := range p.Active() {
		c.Status = Elected
		ids = append(ids, c.ID)
	}
	return ids
}

// EliminateLowest eliminates the Active candidate with the smallest total.
// Ties go to the earliest roster entry.
func (p *Pool) EliminateLowest() (int, error) {
	active := p.Active()
	if len(active) == 0 {
		return NoCandidate, fmt.Errorf("%w: no active candidate to eliminate", ErrInvariantViolation)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return lowerFirst(active[i], active[j])
	})

	lowest := active[0]
	lowest.Status = Eliminated
	return lowest.ID, nil
}

// lowerFirst orders by total ascending, then roster id ascending.
func lowerFirst(a, b *Candidate) bool {
	if a.Total != b.Total {
		return a.Total < b.Total
	}
	return a.ID < b.ID
}

// higherFirst orders by total descending, then roster id ascending.
func higherFirst(a, b *Candidate) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	return a.ID < b.ID
}

// CountActive returns the number of Active candidates.
func (p *Pool) CountActive() int {
	n := 0
	for _, c := range p.candidates {
		if c.Status == Active {
			n++
		}
	}
	return n
}

// CountElected returns the number of Elected candidates.
func (p *Pool) CountElected() int {
	n := 0
	for _, c := range p.candidates {
		if c.Status == Elected {
			n++
		}
	}
	return n
}

// ElectedNames returns the names of Elected candidates in roster order.
func (p *Pool) ElectedNames() []string {
	var names []string
	for _, c := range p.candidates {
		if c.Status == Elected {
			names = append(names, c.Name)
		}
	}
	return names
}

// Totals returns a copy of every candidate's current total in roster order.
func (p *Pool) Totals() []float64 {
	totals := make([]float64, len(p.candidates))
	for i, c := range p.candidates {
		totals[i] = c.Total
	}
	return totals
}
