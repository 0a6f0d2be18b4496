// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the quickly-stv API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(conn, cfg)

# Endpoints

Health:

	GET /health

Election management (admin, requires X-Admin-Key):

	POST /elections                 - Create election
	GET  /elections/{id}/admin      - Get election details
	POST /elections/{id}/candidates - Add candidate
	POST /elections/{id}/open       - Open for voting
	POST /elections/{id}/close      - Count and seal results

Voting (public, uses share slug, requires X-Voter-Token after register):

	POST /elections/{slug}/register  - Register voter identity
	POST /elections/{slug}/ballots   - Submit/replace ranked ballot
	GET  /elections/{slug}/my-ballot - Read own ballot

Results (public):

	GET /elections/{slug}              - Election info and candidates
	GET /elections/{slug}/results      - Final results (closed only)
	GET /elections/{slug}/results.txt  - Final results as text (closed only)
	GET /elections/{slug}/ballot-count - Ballot count
*/
package router
