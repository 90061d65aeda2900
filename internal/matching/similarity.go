package matching

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/termshield/internal/types"
	"github.com/standardbeagle/termshield/internal/vocabulary"
)

// Composite similarity weights.
const (
	sequenceWeight = 0.4
	editWeight     = 0.4
	affixWeight    = 0.1
	variantWeight  = 0.1

	// shared prefix/suffix length that earns full affix credit
	affixSpan = 3
)

// Similarity scores two strings in [0,1]:
//
//	0.4·sequence ratio + 0.4·edit ratio + 0.1·affix ratio + 0.1·variant bonus
//
// The sequence ratio is Ratcliff/Obershelp, the edit ratio is one minus the
// insert/delete distance over the combined length, the affix ratio credits a
// shared prefix and suffix, and the variant bonus applies when the pair
// differs by a regional spelling. Identical strings score 1; the score does
// not depend on argument order.
func Similarity(a, b string, variants []vocabulary.SpellingVariant) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	seq := sequenceRatio(ra, rb)
	if alt := sequenceRatio(rb, ra); alt > seq {
		seq = alt
	}

	edit := 1 - float64(edlib.LCSEditDistance(a, b))/float64(len(ra)+len(rb))

	score := sequenceWeight*seq + editWeight*edit + affixWeight*affixRatio(ra, rb)
	if isSpellingVariant(a, b, variants) {
		score += variantWeight
	}
	return types.Clamp(score)
}

// sequenceRatio is 2·M/T where M counts characters matched by recursively
// taking the longest common block and T is the combined length.
func sequenceRatio(a, b []rune) float64 {
	return 2 * float64(matchingRunes(a, b)) / float64(len(a)+len(b))
}

func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	i, j, size := longestBlock(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingRunes(a[:i], b[:j]) + matchingRunes(a[i+size:], b[j+size:])
}

// longestBlock finds the longest common substring, earliest in a on ties.
func longestBlock(a, b []rune) (int, int, int) {
	bestI, bestJ, best := 0, 0, 0
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
					bestI, bestJ = i-best, j-best
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, best
}

func affixRatio(a, b []rune) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	prefix := 0
	for prefix < n && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < n && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}
	return 0.5*capUnit(float64(prefix)/affixSpan) + 0.5*capUnit(float64(suffix)/affixSpan)
}

func capUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

// isSpellingVariant reports whether one string carries the British fragment
// of a variant pair where the other carries the American one.
func isSpellingVariant(a, b string, variants []vocabulary.SpellingVariant) bool {
	for _, v := range variants {
		if hasVariant(a, b, v) || hasVariant(b, a, v) {
			return true
		}
	}
	return false
}

func hasVariant(british, american string, v vocabulary.SpellingVariant) bool {
	return strings.Contains(british, v.British) &&
		strings.Contains(american, v.American) &&
		!strings.Contains(american, v.British)
}
