// Package index builds the read-only lookup structures the matchers query:
// an exact key index over every canonical form and alias, a phonetic index,
// a trigram index and precompiled patterns for multi-word forms.
//
// A TermIndex is immutable once built and safe for concurrent use.
package index

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/standardbeagle/termshield/internal/debug"
	"github.com/standardbeagle/termshield/internal/types"
)

// GramSize is the width of the sliding window used by the n-gram index.
const GramSize = 3

// Pattern is a compiled multi-word form. Whitespace between tokens matches
// any run of whitespace.
type Pattern struct {
	Key string
	Re  *regexp.Regexp
}

type TermIndex struct {
	terms      []*types.Term
	exact      map[string][]*types.Term // folded key -> terms
	aliases    map[string][]*types.Term // literal alias -> terms
	keys       []string                 // sorted folded keys
	singleKeys []string                 // sorted folded keys without whitespace
	multiWord  []Pattern                // longest key first
	phonetic   map[string][]string      // phonetic code -> single-word keys
	metaphone  map[string][]string      // double metaphone code -> single-word keys
	grams      map[string][]string      // trigram -> single-word keys
	byPriority map[types.Priority][]*types.Term
}

// New indexes terms under their canonical text and every alias.
func New(terms []*types.Term) *TermIndex {
	idx := &TermIndex{
		terms:      terms,
		exact:      make(map[string][]*types.Term),
		aliases:    make(map[string][]*types.Term),
		phonetic:   make(map[string][]string),
		metaphone:  make(map[string][]string),
		grams:      make(map[string][]string),
		byPriority: make(map[types.Priority][]*types.Term),
	}

	for _, t := range terms {
		if t == nil {
			continue
		}
		idx.byPriority[t.Priority] = append(idx.byPriority[t.Priority], t)
		for i, form := range t.Forms() {
			// abbreviation aliases only match verbatim, through the alias table
			if i > 0 && IsAbbreviation(form) {
				continue
			}
			key := Fold(form)
			if key == "" {
				continue
			}
			idx.exact[key] = appendUnique(idx.exact[key], t)
		}
		for _, alias := range t.Aliases {
			if alias != "" {
				idx.aliases[alias] = appendUnique(idx.aliases[alias], t)
			}
		}
	}

	idx.keys = make([]string, 0, len(idx.exact))
	for key := range idx.exact {
		idx.keys = append(idx.keys, key)
	}
	sort.Strings(idx.keys)

	var multi []string
	for _, key := range idx.keys {
		if strings.Contains(key, " ") {
			multi = append(multi, key)
			continue
		}
		idx.singleKeys = append(idx.singleKeys, key)
		idx.addSoundAlike(key)
		for _, g := range Grams(key) {
			idx.grams[g] = appendUniqueString(idx.grams[g], key)
		}
	}

	sort.SliceStable(multi, func(i, j int) bool {
		return utf8.RuneCountInString(multi[i]) > utf8.RuneCountInString(multi[j])
	})
	idx.multiWord = make([]Pattern, 0, len(multi))
	for _, key := range multi {
		idx.multiWord = append(idx.multiWord, Pattern{Key: key, Re: CompileForm(key, false)})
	}

	debug.LogIndex("indexed %d terms: %d keys, %d multi-word, %d phonetic codes, %d grams\n",
		len(terms), len(idx.keys), len(idx.multiWord), len(idx.phonetic), len(idx.grams))
	return idx
}

func (idx *TermIndex) addSoundAlike(key string) {
	if code := PhoneticKey(key); code != "" {
		idx.phonetic[code] = appendUniqueString(idx.phonetic[code], key)
	}
	for _, code := range metaphoneCodes(key) {
		idx.metaphone[code] = appendUniqueString(idx.metaphone[code], key)
	}
}

// Len returns the number of indexed terms.
func (idx *TermIndex) Len() int { return len(idx.terms) }

// Terms returns the indexed terms in load order.
func (idx *TermIndex) Terms() []*types.Term { return idx.terms }

// Keys returns every folded key in sorted order.
func (idx *TermIndex) Keys() []string { return idx.keys }

// SingleWordKeys returns the folded keys that contain no whitespace.
func (idx *TermIndex) SingleWordKeys() []string { return idx.singleKeys }

// MultiWord returns the compiled multi-word patterns, longest key first.
func (idx *TermIndex) MultiWord() []Pattern { return idx.multiWord }

// Entries returns every term registered under key, ignoring case
// sensitivity. key must already be folded.
func (idx *TermIndex) Entries(key string) []*types.Term { return idx.exact[key] }

// Lookup returns the terms whose forms match token. Case-insensitive terms
// match after folding; case-sensitive ones only when token equals one of
// their forms literally (modulo whitespace runs).
func (idx *TermIndex) Lookup(token string) []*types.Term {
	candidates := idx.exact[Fold(token)]
	if len(candidates) == 0 {
		return nil
	}
	var out []*types.Term
	literal := collapseSpace(token)
	for _, t := range candidates {
		if t.CaseSensitive && !hasForm(t, literal) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// AliasTerms returns the terms that list token verbatim as an alias.
func (idx *TermIndex) AliasTerms(token string) []*types.Term { return idx.aliases[token] }

// IsAlias reports whether token is registered verbatim as an alias.
func (idx *TermIndex) IsAlias(token string) bool { return len(idx.aliases[token]) > 0 }

// TermsByPriority returns the terms of priority p in load order.
func (idx *TermIndex) TermsByPriority(p types.Priority) []*types.Term { return idx.byPriority[p] }

// PhoneticCandidates returns the single-word keys that share a phonetic or
// Double Metaphone code with token.
func (idx *TermIndex) PhoneticCandidates(token string) []string {
	var out []string
	if code := PhoneticKey(token); code != "" {
		out = append(out, idx.phonetic[code]...)
	}
	for _, code := range metaphoneCodes(token) {
		for _, key := range idx.metaphone[code] {
			out = appendUniqueString(out, key)
		}
	}
	return out
}

// NGramCandidates returns the single-word keys sharing at least minShared
// distinct trigrams with token, sorted.
func (idx *TermIndex) NGramCandidates(token string, minShared int) []string {
	if minShared < 1 {
		minShared = 1
	}
	counts := make(map[string]int)
	for _, g := range Grams(Fold(token)) {
		for _, key := range idx.grams[g] {
			counts[key]++
		}
	}
	var out []string
	for key, n := range counts {
		if n >= minShared {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// MinSharedGrams is the shortlist bound for a token: a third of its windows,
// rounded up.
func MinSharedGrams(token string) int {
	windows := utf8.RuneCountInString(token) - GramSize + 1
	if windows <= 0 {
		return 1
	}
	return (windows + 2) / 3
}

// Grams returns the distinct trigrams of s in first-seen order.
func Grams(s string) []string {
	runes := []rune(s)
	if len(runes) < GramSize {
		return nil
	}
	seen := make(map[string]bool, len(runes))
	out := make([]string, 0, len(runes)-GramSize+1)
	for i := 0; i+GramSize <= len(runes); i++ {
		g := string(runes[i : i+GramSize])
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// IsAbbreviation reports whether s looks like a bare abbreviation: at least
// two characters, an uppercase ASCII letter first, then only uppercase ASCII
// letters or digits.
func IsAbbreviation(s string) bool {
	if len(s) < 2 || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// Fold lowercases s and collapses whitespace runs to one space.
func Fold(s string) string {
	return collapseSpace(strings.ToLower(strings.TrimSpace(s)))
}

// CompileForm builds the pattern for a surface form; whitespace inside the
// form matches any whitespace run. Word boundaries are checked by callers
// with AtWordBoundary since \b only understands ASCII.
func CompileForm(form string, caseSensitive bool) *regexp.Regexp {
	parts := strings.Fields(form)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	expr := strings.Join(parts, `\s+`)
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.MustCompile(expr)
}

// AtWordBoundary reports whether text[start:end] is not glued to a letter or
// digit on either side.
func AtWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func collapseSpace(s string) string {
	if !strings.ContainsFunc(s, unicode.IsSpace) {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

func hasForm(t *types.Term, literal string) bool {
	for _, f := range t.Forms() {
		if collapseSpace(f) == literal {
			return true
		}
	}
	return false
}

func appendUnique(list []*types.Term, t *types.Term) []*types.Term {
	for _, existing := range list {
		if existing == t {
			return list
		}
	}
	return append(list, t)
}

func appendUniqueString(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
