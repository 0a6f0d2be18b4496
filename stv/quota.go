// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stv

import "fmt"

// QuotaRule selects the threshold formula used for automatic election.
type QuotaRule int

const (
	Hare QuotaRule = iota
	Droop
)

// QuotaRuleFromSelector maps the roster file selector to a rule.
// 0 selects Hare; any other value selects Droop.
func QuotaRuleFromSelector(selector int) QuotaRule {
	if selector == 0 {
		return Hare
	}
	return Droop
}

// ParseQuotaRule accepts "hare" or "droop".
func ParseQuotaRule(s string) (QuotaRule, error) {
	switch s {
	case "hare":
		return Hare, nil
	case "droop":
		return Droop, nil
	}
	return 0, fmt.Errorf("unknown quota rule %q", s)
}

func (r QuotaRule) String() string {
	if r == Hare {
		return "hare"
	}
	return "droop"
}

// Quota returns the integer vote total a candidate needs to be elected
// Hare: floor(ballots / seats)
// Droop: floor(ballots / (seats + 1)) + 1
func Quota(totalBallots, seats int, rule QuotaRule) int {
	if rule == Hare {
		return totalBallots / seats
	}
	return totalBallots/(seats+1) + 1
}
