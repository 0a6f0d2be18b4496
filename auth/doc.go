// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

The key is URL-safe base64 encoded without padding. The same election ID and
salt always produce the same key, so keys are never stored.

# Voter Tokens

Voter tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateVoterToken()

Each voter gets a token when registering a username and sends it with every
ballot submission. ValidateVoterToken rejects malformed tokens before any
database lookup.

# Share Slugs

Share slugs identify opened elections in public URLs:

	slug := auth.GenerateShareSlug(electionID, salt)

Slugs are base62 (alphanumeric only) and deterministic from the election ID
and salt.

# Hashes

	id, err := auth.GenerateID(16)        // 32 hex characters
	hash := auth.HashIP(ipAddress, salt)  // 16 hex characters
	fp := auth.HashInputs(ballotIDs)      // sha256 over the sorted ballot IDs

HashInputs is stored with every result snapshot so a result can be matched to
the exact ballot set it was counted from.
*/
package auth
