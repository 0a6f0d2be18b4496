// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreateElectionRequest: title, description, creator_name, seats, quota_rule
  - AddCandidateRequest: name
  - RegisterVoterRequest: username
  - SubmitBallotRequest: rankings (candidate ID → rank)

# Response Types

  - CreateElectionResponse: election_id, admin_key
  - AddCandidateResponse: candidate_id, position
  - OpenElectionResponse: share_slug, share_url
  - RegisterVoterResponse: voter_token
  - SubmitBallotResponse: ballot_id, message
  - MyBallotResponse: ballot_id, rankings, submitted_at
  - CloseElectionResponse: closed_at, snapshot
  - ResultsResponse: election, result, ballot_count, snapshot_id, inputs_hash
  - ErrorResponse: error, message

# Count Results

TallyResult holds the winners, the quota and every round. Round totals are
listed in roster order.

# Constants

	StatusDraft  = "draft"
	StatusOpen   = "open"
	StatusClosed = "closed"

	MethodSTV = "stv"
*/
package models
