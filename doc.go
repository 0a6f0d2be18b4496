// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for quickly-stv.

quickly-stv counts multi-seat elections with the Single Transferable Vote.
It runs either as a one-shot counter over ballot files or as an HTTP
service that collects ranked ballots and counts them when the election
closes.

# Counting Files

	quickly-stv count -roster roster.txt ballots/

The roster file holds the candidate count, the seat count, one name per
candidate and the quota selector (0 for Hare, anything else for Droop),
one value per line. Each ballot file holds one rank per candidate in roster
order, -1 for unranked. The winners print on one line, "A, B"; -v adds a
table of every round.

# Starting the Server

	DATABASE_URL=quickly-stv.db ADMIN_KEY_SALT=... ELECTION_SLUG_SALT=... quickly-stv serve

SQLite is the default store; pass -t postgres with a PostgreSQL URL to use
PostgreSQL instead. Settings may also come from a .env file.

# Architecture

  - stv: quota rules, candidate pool, ballots and the round engine
  - ballotfile: roster and ballot file parsing and validation
  - report: plain text rendering of a count
  - handlers: HTTP request handlers (elections, voting, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Token generation and validation
  - db: Connection, placeholder rebinding and schema
  - cliparse: Command and configuration parsing

See package documentation for each component.
*/
package main
