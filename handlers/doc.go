// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the quickly-stv API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - ElectionHandler: Election lifecycle (create, candidates, open, close)
  - VotingHandler: Voter registration and ballot submission
  - ResultsHandler: Election info and results retrieval

# Election Lifecycle

Elections progress through three states: draft → open → closed

	POST /elections                 → CreateElection (returns admin_key)
	POST /elections/{id}/candidates → AddCandidate (draft only, appends to roster)
	POST /elections/{id}/open       → OpenElection (generates share_slug)
	POST /elections/{id}/close      → CloseElection (runs the STV count)

Admin operations expect the router to wrap them in
middleware.RequireAdminKey; ballot routes expect middleware.RequireVoterToken.
The handlers only check that a voter token is registered for the election.

# Ballots

A ballot maps candidate IDs to ranks. Ranks run from 1 up to the number of
candidates, may not repeat, and must include 1. Candidates left out are
unranked.

# Counting

CloseElection counts inside the closing transaction:

	result, inputsHash, err := ComputeSTVResult(tx, electionID)

The result is stored as a JSON snapshot. GetResults and GetResultsText both
serve that snapshot, so ballots written after close never change the report.
*/
package handlers
