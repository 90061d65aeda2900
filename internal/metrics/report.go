package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/standardbeagle/termshield/internal/types"
)

// Report is a derived view of cumulative matching stats.
type Report struct {
	Documents        int64
	ChunkedDocuments int64
	TotalWords       int64
	TotalMatches     int64
	MatchesByKind    map[types.MatchKind]int64

	CacheHits    int64
	CacheMisses  int64
	CacheHitRate float64

	Elapsed          time.Duration
	MatchesPerKWords float64
	AvgDocumentTime  time.Duration
}

// NewReport derives a Report from s.
func NewReport(s types.Stats) *Report {
	r := &Report{
		Documents:        s.Documents,
		ChunkedDocuments: s.ChunkedDocuments,
		TotalWords:       s.TotalWords,
		TotalMatches:     s.TotalMatches,
		MatchesByKind:    make(map[types.MatchKind]int64, len(s.MatchesByKind)),
		CacheHits:        s.CacheHits,
		CacheMisses:      s.CacheMisses,
		CacheHitRate:     s.CacheHitRate(),
		Elapsed:          s.Elapsed,
	}
	for k, v := range s.MatchesByKind {
		r.MatchesByKind[k] = v
	}
	if s.TotalWords > 0 {
		r.MatchesPerKWords = float64(s.TotalMatches) * 1000 / float64(s.TotalWords)
	}
	if s.Documents > 0 {
		r.AvgDocumentTime = s.Elapsed / time.Duration(s.Documents)
	}
	return r
}

// FormatAsJSON returns the report as a JSON-serializable map
func (r *Report) FormatAsJSON() map[string]interface{} {
	kinds := make(map[string]int64, len(types.MatchKinds()))
	for _, k := range types.MatchKinds() {
		kinds[k.String()] = r.MatchesByKind[k]
	}

	return map[string]interface{}{
		"documents": map[string]interface{}{
			"total":   r.Documents,
			"chunked": r.ChunkedDocuments,
			"words":   r.TotalWords,
		},
		"matches": map[string]interface{}{
			"total":          r.TotalMatches,
			"per_1000_words": r.MatchesPerKWords,
			"by_kind":        kinds,
		},
		"cache": map[string]interface{}{
			"hits":     r.CacheHits,
			"misses":   r.CacheMisses,
			"hit_rate": r.CacheHitRate,
		},
		"timing": map[string]interface{}{
			"elapsed_ms":      r.Elapsed.Milliseconds(),
			"avg_document_ms": float64(r.AvgDocumentTime.Microseconds()) / 1000,
		},
	}
}

// FormatAsText returns the report as human-readable text
func (r *Report) FormatAsText() string {
	var sb strings.Builder

	sb.WriteString("TERMSHIELD MATCHING REPORT\n")
	sb.WriteString("─────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("  Documents:          %d (%d chunked)\n", r.Documents, r.ChunkedDocuments))
	sb.WriteString(fmt.Sprintf("  Words:              %d\n", r.TotalWords))
	sb.WriteString(fmt.Sprintf("  Matches:            %d (%.1f per 1000 words)\n", r.TotalMatches, r.MatchesPerKWords))

	sb.WriteString("\nMATCHES BY KIND\n")
	sb.WriteString("─────────────────────────────────────────\n")
	for _, k := range types.MatchKinds() {
		n := r.MatchesByKind[k]
		if n == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-14s %8d\n", k, n))
	}

	sb.WriteString("\nCACHE\n")
	sb.WriteString("─────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("  Hits/Misses:        %d/%d (%.1f%%)\n", r.CacheHits, r.CacheMisses, r.CacheHitRate*100))

	sb.WriteString("\nTIMING\n")
	sb.WriteString("─────────────────────────────────────────\n")
	sb.WriteString(fmt.Sprintf("  Total:              %s\n", r.Elapsed.Round(time.Microsecond)))
	sb.WriteString(fmt.Sprintf("  Per Document:       %s\n", r.AvgDocumentTime.Round(time.Microsecond)))

	return sb.String()
}
