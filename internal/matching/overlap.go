package matching

import (
	"sort"

	"github.com/standardbeagle/termshield/internal/types"
)

// SortMatches orders matches by start ascending, then confidence, span
// length and term priority descending. The order is total enough for
// ResolveOverlaps to be deterministic.
func SortMatches(matches []types.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		return priorityOf(a) > priorityOf(b)
	})
}

// ResolveOverlaps collapses candidates into a disjoint set sorted by start.
// Scanning left to right, a candidate that starts at or after the last kept
// match's end is kept. One that overlaps it replaces the kept match only
// when its confidence is more than margin (relative) higher; otherwise it
// is dropped. The input slice is reordered in place.
func ResolveOverlaps(matches []types.Match, margin float64) []types.Match {
	if len(matches) == 0 {
		return nil
	}
	SortMatches(matches)

	out := make([]types.Match, 0, len(matches))
	for _, m := range matches {
		if m.End <= m.Start {
			continue
		}
		if len(out) == 0 {
			out = append(out, m)
			continue
		}
		last := &out[len(out)-1]
		if m.Start >= last.End {
			out = append(out, m)
			continue
		}
		if m.Confidence > last.Confidence*(1+margin) {
			*last = m
		}
	}
	return out
}

// Dedupe drops matches repeating an earlier (start, end, term) triple,
// keeping the higher-confidence copy.
func Dedupe(matches []types.Match) []types.Match {
	type key struct {
		start, end int
		term       *types.Term
	}
	seen := make(map[key]int, len(matches))
	out := make([]types.Match, 0, len(matches))
	for _, m := range matches {
		k := key{m.Start, m.End, m.Term}
		if i, ok := seen[k]; ok {
			if m.Confidence > out[i].Confidence {
				out[i] = m
			}
			continue
		}
		seen[k] = len(out)
		out = append(out, m)
	}
	return out
}

func priorityOf(m types.Match) types.Priority {
	if m.Term == nil {
		return 0
	}
	return m.Term.Priority
}
