package matching

import (
	"github.com/standardbeagle/termshield/internal/index"
	"github.com/standardbeagle/termshield/internal/types"
)

// minFuzzyTokenLen is the shortest token considered for approximate matching.
const minFuzzyTokenLen = 3

// fuzzyStrategy shortlists keys by phonetic code and shared trigrams, then
// scores each with Similarity. Tokens that already hit the index exactly
// are skipped.
type fuzzyStrategy struct {
	engine *Engine
}

func (s *fuzzyStrategy) Kind() types.MatchKind { return types.MatchFuzzy }

func (s *fuzzyStrategy) Find(sc *Scan) []types.Match {
	idx := s.engine.cat.Index
	threshold := s.engine.opts.fuzzyThreshold

	var out []types.Match
	for i, tok := range sc.Tokens {
		if sc.ExactHit[i] || runeLen(tok.Text) < minFuzzyTokenLen {
			continue
		}
		word := index.Fold(tok.Text)

		type hit struct {
			score float64
			key   string
		}
		best := make(map[*types.Term]hit)
		var order []*types.Term

		for _, key := range candidates(idx, word) {
			if key == word {
				continue
			}
			score := s.engine.similarity(word, key)
			if score < threshold {
				continue
			}
			for _, t := range idx.Entries(key) {
				if t.CaseSensitive {
					continue
				}
				prev, seen := best[t]
				if !seen {
					order = append(order, t)
				}
				if !seen || score > prev.score {
					best[t] = hit{score, key}
				}
			}
		}

		for _, t := range order {
			h := best[t]
			out = append(out, newMatch(sc.Text, tok.Start, tok.End, t, types.MatchFuzzy, h.score, h.key))
		}
	}
	return out
}

// candidates is the phonetic bucket of word united with the keys sharing
// enough trigrams with it.
func candidates(idx *index.TermIndex, word string) []string {
	phonetic := idx.PhoneticCandidates(word)
	grams := idx.NGramCandidates(word, index.MinSharedGrams(word))

	seen := make(map[string]bool, len(phonetic)+len(grams))
	out := make([]string, 0, len(phonetic)+len(grams))
	for _, list := range [][]string{phonetic, grams} {
		for _, key := range list {
			if !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	return out
}
