// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-stv/middleware"
	"github.com/danielhkuo/quickly-stv/testutil"
)

// asAdmin wraps h the way the router wraps admin routes
func asAdmin(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireAdminKey(testutil.GetTestConfig().AdminKeySalt)(h)
}

// asVoter wraps h the way the router wraps ballot routes
func asVoter(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RequireVoterToken(h)
}
