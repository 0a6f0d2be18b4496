// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBallot(t *testing.T) {
	b := NewBallot([]int{2, 1, -1})

	assert.Equal(t, 1, b.Holder())
	assert.Equal(t, 1, b.CurrentRank())
	assert.Equal(t, 1.0, b.Weight())
	assert.Equal(t, BallotActive, b.Status())
}

func TestNewBallotWithoutTopChoice(t *testing.T) {
	b := NewBallot([]int{2, -1, 3})

	assert.Equal(t, NoCandidate, b.Holder())
	assert.Equal(t, BallotExhausted, b.Status())
}

func TestNewBallotCopiesPreferences(t *testing.T) {
	prefs := []int{1, 2}
	b := NewBallot(prefs)
	prefs[0] = 5

	assert.Equal(t, []int{1, 2}, b.Preferences())
}

func TestNextDestination(t *testing.T) {
	tests := []struct {
		name         string
		prefs        []int
		settle       map[int]Status
		expectedID   int
		expectedOK   bool
		expectedRank int
	}{
		{
			name:         "next preference active",
			prefs:        []int{1, 2, 3},
			expectedID:   1,
			expectedOK:   true,
			expectedRank: 2,
		},
		{
			name:         "skips elected and eliminated",
			prefs:        []int{1, 2, 3, 4},
			settle:       map[int]Status{1: Elected, 2: Eliminated},
			expectedID:   3,
			expectedOK:   true,
			expectedRank: 4,
		},
		{
			name:         "no further ranking",
			prefs:        []int{1, -1, -1},
			expectedID:   NoCandidate,
			expectedOK:   false,
			expectedRank: 2,
		},
		{
			name:         "every later choice settled",
			prefs:        []int{1, 2, 3},
			settle:       map[int]Status{1: Eliminated, 2: Elected},
			expectedID:   NoCandidate,
			expectedOK:   false,
			expectedRank: 4,
		},
		{
			name:         "stops at a gap in the ranking",
			prefs:        []int{1, -1, 3},
			expectedID:   NoCandidate,
			expectedOK:   false,
			expectedRank: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make([]string, len(tt.prefs))
			for i := range names {
				names[i] = string(rune('A' + i))
			}
			pool := NewPool(names)
			for id, st := range tt.settle {
				pool.Candidate(id).Status = st
			}

			b := NewBallot(tt.prefs)
			id, ok := b.NextDestination(pool)

			assert.Equal(t, tt.expectedID, id)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedRank, b.CurrentRank())
		})
	}
}

func TestAttenuate(t *testing.T) {
	b := NewBallot([]int{1})

	b.Attenuate(0.5)
	assert.Equal(t, 0.5, b.Weight())

	b.Attenuate(3)
	assert.Equal(t, 0.5, b.Weight(), "weight never increases")

	b.Attenuate(-2)
	assert.Equal(t, 0.0, b.Weight())
}

func TestMarkExhausted(t *testing.T) {
	b := NewBallot([]int{1, 2})
	b.MarkExhausted()

	assert.Equal(t, BallotExhausted, b.Status())
	assert.Equal(t, NoCandidate, b.Holder())
}
