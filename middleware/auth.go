// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-stv/auth"
)

type voterTokenKey struct{}

// RequireAdminKey rejects requests whose X-Admin-Key does not belong to the
// election named by the {id} path value.
func RequireAdminKey(salt string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			electionID := r.PathValue("id")
			if electionID == "" {
				ErrorResponse(w, http.StatusBadRequest, "election_id is required")
				return
			}

			if err := auth.ValidateAdminKey(electionID, r.Header.Get(AdminKeyHeader), salt); err != nil {
				slog.Warn("admin key rejected", "election_id", electionID)
				ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
				return
			}

			next(w, r)
		}
	}
}

// RequireVoterToken checks that X-Voter-Token is present and well formed and
// hands it to next through the request context. Whether the token is
// registered for the election is left to the handler.
func RequireVoterToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(VoterTokenHeader)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
			return
		}
		if err := auth.ValidateVoterToken(token); err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Malformed voter token")
			return
		}

		ctx := context.WithValue(r.Context(), voterTokenKey{}, token)
		next(w, r.WithContext(ctx))
	}
}

// VoterToken returns the token RequireVoterToken accepted, or "" when the
// request did not pass through it.
func VoterToken(r *http.Request) string {
	token, _ := r.Context().Value(voterTokenKey{}).(string)
	return token
}
