// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballotfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/danielhkuo/quickly-stv/stv"
)

var (
	ErrMalformedHeader      = errors.New("malformed roster header")
	ErrBallotLengthMismatch = errors.New("ballot length does not match roster")
	ErrNoTopChoice          = errors.New("ballot has no first choice")
	ErrInvalidRank          = errors.New("invalid rank")
)

// Roster is a parsed roster descriptor
type Roster struct {
	Names    []string
	Seats    int
	Selector int
	Rule     stv.QuotaRule
}

// ParseRoster reads the candidate count, the seat count, one name per
// candidate and the quota selector, one value per line.
func ParseRoster(r io.Reader) (Roster, error) {
	lines, err := readLines(r)
	if err != nil {
		return Roster{}, err
	}

	if len(lines) < 2 {
		return Roster{}, fmt.Errorf("%w: expected candidate and seat counts", ErrMalformedHeader)
	}

	numCandidates, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || numCandidates < 1 {
		return Roster{}, fmt.Errorf("%w: candidate count %q", ErrMalformedHeader, lines[0])
	}
	seats, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil || seats < 1 {
		return Roster{}, fmt.Errorf("%w: seat count %q", ErrMalformedHeader, lines[1])
	}
	if seats > numCandidates {
		return Roster{}, fmt.Errorf("%w: %d seats for %d candidates", ErrMalformedHeader, seats, numCandidates)
	}

	if len(lines) < 3+numCandidates {
		return Roster{}, fmt.Errorf("%w: expected %d names and a quota selector", ErrMalformedHeader, numCandidates)
	}

	names := make([]string, numCandidates)
	for i := range names {
		names[i] = strings.TrimSpace(lines[2+i])
		if names[i] == "" {
			return Roster{}, fmt.Errorf("%w: candidate %d has no name", ErrMalformedHeader, i+1)
		}
	}

	selectorLine := strings.TrimSpace(lines[2+numCandidates])
	selector, err := strconv.Atoi(selectorLine)
	if err != nil {
		return Roster{}, fmt.Errorf("%w: quota selector %q", ErrMalformedHeader, selectorLine)
	}

	return Roster{
		Names:    names,
		Seats:    seats,
		Selector: selector,
		Rule:     stv.QuotaRuleFromSelector(selector),
	}, nil
}

// ParseBallot reads one rank per candidate in roster order. -1 leaves a
// candidate unranked.
func ParseBallot(r io.Reader, numCandidates int) ([]int, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	var fields []string
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			fields = append(fields, s)
		}
	}
	if len(fields) != numCandidates {
		return nil, fmt.Errorf("%w: got %d entries, want %d", ErrBallotLengthMismatch, len(fields), numCandidates)
	}

	ranks := make([]int, numCandidates)
	for i, f := range fields {
		rank, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d is %q", ErrInvalidRank, i+1, f)
		}
		ranks[i] = rank
	}

	if err := ValidateRanking(ranks); err != nil {
		return nil, err
	}
	return ranks, nil
}

// ValidateRanking checks a rank-per-candidate slice: every entry is
// stv.NoPreference or in 1..len(ranks), no rank repeats, and rank 1 is present.
func ValidateRanking(ranks []int) error {
	seen := make(map[int]bool, len(ranks))
	for i, rank := range ranks {
		if rank == stv.NoPreference {
			continue
		}
		if rank < 1 || rank > len(ranks) {
			return fmt.Errorf("%w: candidate %d has rank %d", ErrInvalidRank, i+1, rank)
		}
		if seen[rank] {
			return fmt.Errorf("%w: rank %d used twice", ErrInvalidRank, rank)
		}
		seen[rank] = true
	}
	if !seen[1] {
		return ErrNoTopChoice
	}
	return nil
}

// LoadRoster parses the roster file at path.
func LoadRoster(path string) (Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return Roster{}, err
	}
	defer f.Close()

	roster, err := ParseRoster(f)
	if err != nil {
		return Roster{}, fmt.Errorf("%s: %w", path, err)
	}
	return roster, nil
}

// LoadBallots parses every ballot file named by paths. A directory
// contributes each regular file inside it, in name order.
func LoadBallots(paths []string, numCandidates int) ([][]int, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}

	ballots := make([][]int, 0, len(files))
	for _, path := range files {
		ranks, err := loadBallot(path, numCandidates)
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, ranks)
	}
	return ballots, nil
}

func loadBallot(path string, numCandidates int) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ranks, err := ParseBallot(f, numCandidates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ranks, nil
}

func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		var inDir []string
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				inDir = append(inDir, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(inDir)
		files = append(files, inDir...)
	}
	return files, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// FormatWinners joins winner names the way results are printed: "A, B".
func FormatWinners(names []string) string {
	return strings.Join(names, ", ")
}
