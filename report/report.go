// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package report renders a finished count as plain text.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-stv/stv"
)

// Election is the context a report is printed against
type Election struct {
	Names []string
	Seats int
	Rule  stv.QuotaRule
}

// Winners writes the elected names on one line, "A, B".
func Winners(w io.Writer, res *stv.Result) error {
	_, err := fmt.Fprintln(w, strings.Join(res.Winners, ", "))
	return err
}

// Rounds writes a summary line followed by one row per round.
func Rounds(w io.Writer, e Election, res *stv.Result) error {
	_, err := fmt.Fprintf(w, "%s %s counted, %s %s, %s quota %s\n",
		humanize.Comma(int64(res.TotalBallots)), plural(res.TotalBallots, "ballot", "ballots"),
		humanize.Comma(int64(e.Seats)), plural(e.Seats, "seat", "seats"),
		e.Rule, humanize.Comma(int64(res.Quota)),
	)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, round := range res.Rounds {
		cols := []string{humanize.Ordinal(round.Number) + " round"}
		for id, total := range round.Totals {
			cols = append(cols, fmt.Sprintf("%s %s", e.Names[id], humanize.FtoaWithDigits(total, 3)))
		}
		cols = append(cols, outcome(e.Names, round))
		if _, err := fmt.Fprintln(tw, strings.Join(cols, "\t")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if res.Exhausted > 0 {
		_, err = fmt.Fprintf(w, "%s exhausted\n", humanize.Comma(int64(res.Exhausted)))
	}
	return err
}

func outcome(names []string, round stv.Round) string {
	var parts []string
	if len(round.Elected) > 0 {
		label := "elected"
		if round.Shortcut {
			label = "elected (remaining fill seats)"
		}
		parts = append(parts, label+" "+join(names, round.Elected))
	}
	if len(round.Eliminated) > 0 {
		parts = append(parts, "eliminated "+join(names, round.Eliminated))
	}
	if len(parts) == 0 {
		return "seats filled"
	}
	return strings.Join(parts, "; ")
}

func join(names []string, ids []int) string {
	picked := make([]string, len(ids))
	for i, id := range ids {
		picked[i] = names[id]
	}
	return strings.Join(picked, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
