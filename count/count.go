// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package count runs an election from roster and ballot files, without a database.
package count

import (
	"io"
	"log/slog"

	"github.com/danielhkuo/quickly-stv/ballotfile"
	"github.com/danielhkuo/quickly-stv/cliparse"
	"github.com/danielhkuo/quickly-stv/report"
	"github.com/danielhkuo/quickly-stv/stv"
)

// Run tallies cfg.BallotPaths against cfg.RosterPath and writes the winners,
// "A, B". With cfg.Verbose the round table follows.
func Run(w io.Writer, cfg cliparse.Config) error {
	roster, err := ballotfile.LoadRoster(cfg.RosterPath)
	if err != nil {
		return err
	}

	rankings, err := ballotfile.LoadBallots(cfg.BallotPaths, len(roster.Names))
	if err != nil {
		return err
	}
	slog.Debug("ballots loaded", "ballots", len(rankings), "candidates", len(roster.Names),
		"seats", roster.Seats, "quota_rule", roster.Rule)

	engine, err := stv.NewEngine(roster.Names, rankings, stv.Config{
		Seats: roster.Seats,
		Rule:  roster.Rule,
	})
	if err != nil {
		return err
	}

	result, err := engine.Run()
	if err != nil {
		return err
	}

	if err := report.Winners(w, result); err != nil {
		return err
	}
	if !cfg.Verbose {
		return nil
	}
	return report.Rounds(w, report.Election{
		Names: roster.Names,
		Seats: roster.Seats,
		Rule:  roster.Rule,
	}, result)
}
