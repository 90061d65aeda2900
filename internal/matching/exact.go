package matching

import (
	"strings"

	"github.com/standardbeagle/termshield/internal/index"
	"github.com/standardbeagle/termshield/internal/types"
)

// minPartialKeyLen is the shortest index key the partial pass searches for
// inside longer words.
const minPartialKeyLen = 4

// exactStrategy looks every token up in the index.
type exactStrategy struct {
	idx *index.TermIndex
}

func (s *exactStrategy) Kind() types.MatchKind { return types.MatchExact }

func (s *exactStrategy) Find(sc *Scan) []types.Match {
	var out []types.Match
	for i, tok := range sc.Tokens {
		// Bare uppercase aliases belong to the abbreviation pass
		if isAbbreviationToken(tok.Text) && s.idx.IsAlias(tok.Text) {
			sc.ExactHit[i] = true
			continue
		}
		terms := s.idx.Lookup(tok.Text)
		if len(terms) == 0 {
			continue
		}
		sc.ExactHit[i] = true
		key := index.Fold(tok.Text)
		for _, t := range terms {
			out = append(out, newMatch(sc.Text, tok.Start, tok.End, t, types.MatchExact, 1, key))
		}
	}
	return out
}

// partialStrategy finds index keys embedded in longer words, e.g.
// "dialysis" inside "haemodialysis-related". Confidence is the key/word
// length ratio, scaled.
type partialStrategy struct {
	idx       *index.TermIndex
	threshold float64
}

func (s *partialStrategy) Kind() types.MatchKind { return types.MatchPartial }

func (s *partialStrategy) Find(sc *Scan) []types.Match {
	var out []types.Match
	for _, tok := range sc.Tokens {
		word := strings.ToLower(tok.Text)
		wordLen := runeLen(word)
		if wordLen <= minPartialKeyLen {
			continue
		}
		for _, key := range s.idx.SingleWordKeys() {
			keyLen := runeLen(key)
			if keyLen < minPartialKeyLen || keyLen >= wordLen || !strings.Contains(word, key) {
				continue
			}
			ratio := float64(keyLen) / float64(wordLen)
			if ratio < s.threshold {
				continue
			}
			for _, t := range s.idx.Entries(key) {
				if t.CaseSensitive {
					continue
				}
				out = append(out, newMatch(sc.Text, tok.Start, tok.End, t, types.MatchPartial, ratio, key))
			}
		}
	}
	return out
}

// multiWordStrategy matches phrase forms, longest first, allowing any
// whitespace between their words.
type multiWordStrategy struct {
	idx *index.TermIndex
}

func (s *multiWordStrategy) Kind() types.MatchKind { return types.MatchMultiWord }

func (s *multiWordStrategy) Find(sc *Scan) []types.Match {
	var out []types.Match
	for _, p := range s.idx.MultiWord() {
		for _, loc := range p.Re.FindAllStringIndex(sc.Text, -1) {
			if !index.AtWordBoundary(sc.Text, loc[0], loc[1]) {
				continue
			}
			for _, t := range s.idx.Lookup(sc.Text[loc[0]:loc[1]]) {
				out = append(out, newMatch(sc.Text, loc[0], loc[1], t, types.MatchMultiWord, 1, p.Key))
			}
		}
	}
	return out
}

// abbreviationStrategy accepts bare uppercase tokens that are registered
// verbatim as an alias.
type abbreviationStrategy struct {
	idx *index.TermIndex
}

func (s *abbreviationStrategy) Kind() types.MatchKind { return types.MatchAbbreviation }

func (s *abbreviationStrategy) Find(sc *Scan) []types.Match {
	var out []types.Match
	for _, tok := range sc.Tokens {
		if !isAbbreviationToken(tok.Text) {
			continue
		}
		for _, t := range s.idx.AliasTerms(tok.Text) {
			out = append(out, newMatch(sc.Text, tok.Start, tok.End, t, types.MatchAbbreviation, 1, tok.Text))
		}
	}
	return out
}
