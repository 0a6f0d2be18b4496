// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the store and creates its schema.

# Connections

Open accepts "sqlite" (modernc.org/sqlite, no cgo) or "postgres"
(github.com/lib/pq):

	conn, err := db.Open(db.TypeSQLite, "quickly-stv.db")

Queries are written once with ? placeholders. DB and Tx rewrite them to
$1, $2, ... when talking to PostgreSQL. SQLite runs on a single
connection, so a transaction must issue every query through its Tx and
close rows before the next statement.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		return err
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: title, seats, quota rule and lifecycle state
  - candidate: roster entries; roster_position fixes order and tie-breaks
  - voter_claim: maps usernames to voter tokens
  - ballot: one ballot per voter per election
  - ranking: one row per ranked candidate on a ballot
  - result_snapshot: the stored count of a closed election

# Relationships

	election 1──* candidate
	election 1──* voter_claim
	election 1──* ballot
	ballot 1──* ranking
	election 1──* result_snapshot

# Errors

IsUniqueViolation recognises duplicate keys from either driver, so handlers
can answer 409 without matching error text.
*/
package db
