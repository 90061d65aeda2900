package types

import (
	"fmt"
	"time"
)

// Stats holds cumulative matching counters. They keep growing across calls
// until explicitly reset.
type Stats struct {
	Documents        int64
	ChunkedDocuments int64
	TotalWords       int64
	TotalMatches     int64
	MatchesByKind    map[MatchKind]int64
	CacheHits        int64
	CacheMisses      int64
	Elapsed          time.Duration
}

// NewStats returns zeroed counters.
func NewStats() Stats {
	return Stats{MatchesByKind: make(map[MatchKind]int64)}
}

// Clone returns a deep copy safe to hand to callers.
func (s Stats) Clone() Stats {
	out := s
	out.MatchesByKind = make(map[MatchKind]int64, len(s.MatchesByKind))
	for k, v := range s.MatchesByKind {
		out.MatchesByKind[k] = v
	}
	return out
}

// CacheHitRate returns hits/(hits+misses), or 0 before any lookup.
func (s Stats) CacheHitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

func (s Stats) String() string {
	return fmt.Sprintf("Stats{docs: %d, words: %d, matches: %d, cache: %d/%d, elapsed: %s}",
		s.Documents, s.TotalWords, s.TotalMatches, s.CacheHits, s.CacheHits+s.CacheMisses, s.Elapsed)
}

// Add returns the sum of s and o.
func (s Stats) Add(o Stats) Stats {
	out := s.Clone()
	out.Documents += o.Documents
	out.ChunkedDocuments += o.ChunkedDocuments
	out.TotalWords += o.TotalWords
	out.TotalMatches += o.TotalMatches
	out.CacheHits += o.CacheHits
	out.CacheMisses += o.CacheMisses
	out.Elapsed += o.Elapsed
	for k, v := range o.MatchesByKind {
		out.MatchesByKind[k] += v
	}
	return out
}
