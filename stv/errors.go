// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stv

import "errors"

// ErrInvariantViolation reports input or state the count cannot proceed from.
var ErrInvariantViolation = errors.New("invariant violation")
