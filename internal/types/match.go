package types

import (
	"fmt"
	"unicode/utf8"
)

// MatchKind identifies which strategy produced a match. Each kind carries
// its own confidence rule, see Adjust.
type MatchKind uint8

const (
	MatchExact MatchKind = iota
	MatchPartial
	MatchMultiWord
	MatchAbbreviation
	MatchFuzzy
	MatchContextual
)

// Fixed confidences for the kinds that do not scale a raw score.
const (
	AbbreviationConfidence = 0.95
	ContextualConfidence   = 0.85

	partialScale = 0.9
	fuzzyScale   = 0.9
)

// MatchKinds lists every kind in pipeline order.
func MatchKinds() []MatchKind {
	return []MatchKind{MatchExact, MatchPartial, MatchMultiWord, MatchAbbreviation, MatchFuzzy, MatchContextual}
}

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchPartial:
		return "partial"
	case MatchMultiWord:
		return "multiword"
	case MatchAbbreviation:
		return "abbreviation"
	case MatchFuzzy:
		return "fuzzy"
	case MatchContextual:
		return "contextual"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseMatchKind is the inverse of String.
func ParseMatchKind(s string) (MatchKind, error) {
	for _, k := range MatchKinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown match kind %q", s)
}

func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MatchKind) UnmarshalText(b []byte) error {
	parsed, err := ParseMatchKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Adjust turns a strategy's raw score into the kind's confidence.
//
//	exact, multiword  1.0
//	partial           raw × 0.9
//	abbreviation      0.95
//	fuzzy             raw × 0.9
//	contextual        0.85
func (k MatchKind) Adjust(raw float64) float64 {
	switch k {
	case MatchExact, MatchMultiWord:
		return 1.0
	case MatchPartial:
		return Clamp(raw * partialScale)
	case MatchAbbreviation:
		return AbbreviationConfidence
	case MatchFuzzy:
		return Clamp(raw * fuzzyScale)
	case MatchContextual:
		return ContextualConfidence
	default:
		return Clamp(raw)
	}
}

// IsLiteral reports whether the kind matched the vocabulary form verbatim
// (modulo case and whitespace) rather than approximately.
func (k MatchKind) IsLiteral() bool {
	return k == MatchExact || k == MatchMultiWord || k == MatchAbbreviation
}

// Match is one located occurrence of a vocabulary term. Start and End are
// byte offsets into the searched text, End exclusive.
type Match struct {
	Term       *Term
	Text       string
	Start      int
	End        int
	Kind       MatchKind
	Confidence float64
	Variant    string // the index key that produced the hit
	Context    string // surrounding snippet
}

// Len returns the span length in bytes.
func (m Match) Len() int { return m.End - m.Start }

// Overlaps reports whether the two half-open spans intersect.
func (m Match) Overlaps(o Match) bool {
	return m.Start < o.End && o.Start < m.End
}

// Shift returns a copy of m moved by offset bytes.
func (m Match) Shift(offset int) Match {
	m.Start += offset
	m.End += offset
	return m
}

func (m Match) String() string {
	name := "<nil>"
	if m.Term != nil {
		name = m.Term.Text
	}
	return fmt.Sprintf("Match{%q→%q [%d,%d) %s %.3f}", m.Text, name, m.Start, m.End, m.Kind, m.Confidence)
}

// SnippetRadius is the number of bytes of surrounding text kept in Match.Context.
const SnippetRadius = 30

// Snippet returns up to radius bytes either side of [start,end), widened or
// narrowed to rune boundaries so the result is valid UTF-8.
func Snippet(text string, start, end, radius int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		return ""
	}
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}
