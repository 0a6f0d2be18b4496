// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one line per request with method, path, status and duration_ms, plus
election_id or slug when the route has one. 5xx responses log at error level.

# Election Credentials

Admin routes carry the election ID in {id} and its key in X-Admin-Key:

	admin := middleware.RequireAdminKey(cfg.AdminKeySalt)
	mux.HandleFunc("POST /elections/{id}/close", middleware.WithLogging(admin(h.CloseElection)))

Ballot routes carry a voter token in X-Voter-Token. RequireVoterToken
rejects missing or malformed tokens and passes the rest on:

	mux.HandleFunc("POST /elections/{slug}/ballots", middleware.WithLogging(middleware.RequireVoterToken(h.SubmitBallot)))

	token := middleware.VoterToken(r)

Whether the token is registered for the election is checked by the handler.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Admin-Key, X-Voter-Token.

# Response Helpers

Write JSON or plain text responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.TextResponse(w, http.StatusOK, buf.Bytes())

Parse JSON request bodies:

	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used for the ballot ip_hash column.
*/
package middleware
