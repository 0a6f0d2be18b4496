// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package stv counts Single Transferable Vote elections.

# Counting

An Engine is built from the roster names, one ranking per ballot and a Config:

	eng, err := stv.NewEngine([]string{"A", "B", "C"}, rankings, stv.Config{
		Seats: 2,
		Rule:  stv.Droop,
	})
	res, err := eng.Run()
	fmt.Println(strings.Join(res.Winners, ", "))

rankings[i][id] is the rank ballot i gives candidate id (1 = most preferred),
or NoPreference when the voter left the candidate unranked.

# Rounds

Every Step is one round:

 1. Shortcut: when the Active candidates exactly fill the open seats they are
    all elected and the count is Done.
 2. Quota: every Active candidate whose total reaches the quota is elected.
 3. Elimination: if nobody reached quota, the lowest total is eliminated.
    Ties go to the candidate earliest in the roster.
 4. Transfer: every ballot held by a candidate elected or eliminated this round
    moves to its next Active preference, or is exhausted.
 5. Totals are recomputed from the ballots each candidate now holds.

# Quotas

	Hare:  floor(ballots / seats)
	Droop: floor(ballots / (seats + 1)) + 1

Only ballots with a first preference count toward the quota.

# Transfers

All ballots held by an elected candidate move on, each attenuated by the same
factor (held - quota) / held computed in whole ballots. The division is
integer division, so the factor is 0 for any positive quota and transferred
ballots carry no weight. This matches the count rules this package reproduces
and is not a fractional surplus method.

# Seats

The engine never elects more than Seats candidates. When more candidates reach
quota than seats remain, the highest totals take the seats, and the count
stops as soon as every seat is filled.
*/
package stv
