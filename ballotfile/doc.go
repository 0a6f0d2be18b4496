// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballotfile reads election input files and validates rankings before
they reach the counting engine.

# Roster File

One value per line:

	3        number of candidates
	2        number of seats
	Alice
	Bob
	Carol
	1        quota selector: 0 for Hare, anything else for Droop

# Ballot Files

One file per voter, one rank per line in roster order. -1 leaves a
candidate unranked:

	2
	1
	-1

# Errors

Every error wraps one of ErrMalformedHeader, ErrBallotLengthMismatch,
ErrNoTopChoice or ErrInvalidRank. Check with errors.Is.
*/
package ballotfile
