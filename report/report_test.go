// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-stv/stv"
)

func countScenario(t *testing.T) (Election, *stv.Result) {
	t.Helper()

	e := Election{Names: []string{"A", "B", "C"}, Seats: 2, Rule: stv.Droop}
	eng, err := stv.NewEngine(e.Names, [][]int{
		{1, 2, 3},
		{1, 2, 3},
		{2, 1, 3},
	}, stv.Config{Seats: e.Seats, Rule: e.Rule})
	require.NoError(t, err)

	res, err := eng.Run()
	require.NoError(t, err)
	return e, res
}

func TestWinners(t *testing.T) {
	_, res := countScenario(t)

	var buf bytes.Buffer
	require.NoError(t, Winners(&buf, res))
	assert.Equal(t, "A, B\n", buf.String())
}

func TestRounds(t *testing.T) {
	e, res := countScenario(t)

	var buf bytes.Buffer
	require.NoError(t, Rounds(&buf, e, res))
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "3 ballots counted, 2 seats, droop quota 2", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1st round"))
	assert.Contains(t, lines[1], "A 2")
	assert.Contains(t, lines[1], "elected A")
	assert.True(t, strings.HasPrefix(lines[2], "2nd round"))
	assert.Contains(t, lines[2], "eliminated C")
	assert.True(t, strings.HasPrefix(lines[3], "3rd round"))
	assert.Contains(t, lines[3], "elected (remaining fill seats) B")
	assert.NotContains(t, out, "exhausted")
}

func TestRoundsLargeCounts(t *testing.T) {
	e := Election{Names: []string{"A"}, Seats: 1, Rule: stv.Hare}
	res := &stv.Result{
		Winners:      []string{"A"},
		Quota:        12345,
		TotalBallots: 12345,
		Exhausted:    1200,
	}

	var buf bytes.Buffer
	require.NoError(t, Rounds(&buf, e, res))

	assert.Contains(t, buf.String(), "12,345 ballots counted, 1 seat, hare quota 12,345")
	assert.Contains(t, buf.String(), "1,200 exhausted")
}

// shortWriter accepts a fixed number of writes and then fails
type shortWriter struct{ left int }

var errDiskFull = errors.New("disk full")

func (w *shortWriter) Write(p []byte) (int, error) {
	if w.left == 0 {
		return 0, errDiskFull
	}
	w.left--
	return len(p), nil
}

func TestRoundsReportsWriteErrors(t *testing.T) {
	e, res := countScenario(t)

	// The summary line goes through, the round table does not
	err := Rounds(&shortWriter{left: 1}, e, res)
	assert.ErrorIs(t, err, errDiskFull)

	err = Winners(&shortWriter{}, res)
	assert.ErrorIs(t, err, errDiskFull)
}
