// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/quickly-stv/cliparse"
	"github.com/danielhkuo/quickly-stv/db"
	"github.com/danielhkuo/quickly-stv/handlers"
	"github.com/danielhkuo/quickly-stv/middleware"
)

func NewRouter(conn *db.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(conn, cfg)
	votingHandler := handlers.NewVotingHandler(conn, cfg)
	resultsHandler := handlers.NewResultsHandler(conn, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	admin := middleware.RequireAdminKey(cfg.AdminKeySalt)
	voter := middleware.RequireVoterToken

	// Election management (admin operations)
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections/{id}/admin", middleware.WithLogging(admin(electionHandler.GetElectionAdmin)))
	mux.HandleFunc("POST /elections/{id}/candidates", middleware.WithLogging(admin(electionHandler.AddCandidate)))
	mux.HandleFunc("POST /elections/{id}/open", middleware.WithLogging(admin(electionHandler.OpenElection)))
	mux.HandleFunc("POST /elections/{id}/close", middleware.WithLogging(admin(electionHandler.CloseElection)))

	// Voting operations (public, ballots need a registered voter token)
	mux.HandleFunc("POST /elections/{slug}/register", middleware.WithLogging(votingHandler.RegisterVoter))
	mux.HandleFunc("POST /elections/{slug}/ballots", middleware.WithLogging(voter(votingHandler.SubmitBallot)))
	mux.HandleFunc("GET /elections/{slug}/my-ballot", middleware.WithLogging(voter(votingHandler.GetMyBallot)))

	// Results retrieval (public, sealed until close)
	mux.HandleFunc("GET /elections/{slug}", middleware.WithLogging(resultsHandler.GetElection))
	mux.HandleFunc("GET /elections/{slug}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /elections/{slug}/results.txt", middleware.WithLogging(resultsHandler.GetResultsText))
	mux.HandleFunc("GET /elections/{slug}/ballot-count", middleware.WithLogging(resultsHandler.GetBallotCount))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-stv API v1"))
	})

	return mux
}
