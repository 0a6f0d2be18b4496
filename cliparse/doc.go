// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Commands

The first argument picks the command; without one the server starts.

	quickly-stv count -roster roster.txt [-v] ballots/
	quickly-stv serve [-p 3318] [-d quickly-stv.db] [-t sqlite]

Ballot arguments to count may be files or directories. A directory
contributes every regular file in it, in name order.

# Serve Flags

	-p          Server port (default 3318)
	-d          Database URL or SQLite file path
	-t          Database type: sqlite (default) or postgres
	-base-url   Public base URL for share links
	-admin-salt Admin key salt
	-slug-salt  Election slug salt
	-v          Debug logging

# Environment Variables

Serve flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	BASE_URL           → -base-url
	ADMIN_KEY_SALT     → -admin-salt
	ELECTION_SLUG_SALT → -slug-salt

CLI flags take precedence over environment variables. LoadEnv reads a .env
file into the environment first; variables already set are kept.

# Example

	if err := cliparse.LoadEnv(); err != nil {
		slog.Warn("ignoring .env", "error", err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
*/
package cliparse
