package matching

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/termshield/internal/types"
	"github.com/standardbeagle/termshield/internal/vocabulary"
)

func exampleVocabulary() *vocabulary.Vocabulary {
	return &vocabulary.Vocabulary{
		Terms: []*types.Term{
			{Text: "chest pain", Category: types.CategorySymptom, Priority: types.PriorityHigh},
			{Text: "Amoxicillin", Category: types.CategoryMedication, Priority: types.PriorityHigh, Aliases: []string{"amoxicillin"}},
			{Text: "twice daily", Category: types.CategoryAbbreviation, Priority: types.PriorityMedium, Aliases: []string{"BID"}},
		},
	}
}

type expected struct {
	text string
	kind types.MatchKind
	conf float64
}

func summarize(ms []types.Match) []expected {
	out := make([]expected, len(ms))
	for i, m := range ms {
		out[i] = expected{m.Text, m.Kind, m.Confidence}
	}
	return out
}

func TestExampleSentence(t *testing.T) {
	e := NewEngine(NewCatalog(exampleVocabulary()))
	text := "Patient has chest pain and was given 500mg of Amoxicillin BID"

	want := []expected{
		{"chest pain", types.MatchMultiWord, 1.0},
		{"Amoxicillin", types.MatchExact, 1.0},
		{"BID", types.MatchAbbreviation, 0.95},
	}

	for name, find := range map[string]func(string) []types.Match{
		"exact":      e.FindExactMatches,
		"fuzzy":      e.FindFuzzyMatches,
		"contextual": e.FindMatches,
	} {
		t.Run(name, func(t *testing.T) {
			got := find(text)
			require.Len(t, got, 3)
			assert.Equal(t, want, summarize(got))

			assert.Equal(t, 12, got[0].Start)
			assert.Equal(t, 22, got[0].End)
			assert.Equal(t, "twice daily", got[2].Term.Text)
			for _, m := range got {
				assert.Equal(t, text[m.Start:m.End], m.Text)
				assert.Contains(t, m.Context, m.Text)
			}
		})
	}
}

func TestFuzzyExample(t *testing.T) {
	vocab := &vocabulary.Vocabulary{
		Terms: []*types.Term{{Text: "hemorrhage", Category: types.CategoryCondition, Priority: types.PriorityCritical}},
	}
	e := NewEngine(NewCatalog(vocab), WithFuzzyThreshold(0.85))

	assert.Empty(t, e.FindExactMatches("mild hemorrage"))

	got := e.FindFuzzyMatches("mild hemorrage")
	require.Len(t, got, 1)
	m := got[0]
	assert.Equal(t, types.MatchFuzzy, m.Kind)
	assert.Equal(t, "hemorrage", m.Text)
	assert.Equal(t, "hemorrhage", m.Variant)
	assert.Equal(t, 5, m.Start)
	assert.GreaterOrEqual(t, m.Confidence, 0.85*0.9)

	strict := NewEngine(NewCatalog(vocab), WithFuzzyThreshold(0.95))
	assert.Empty(t, strict.FindFuzzyMatches("mild hemorrage"))
}

func TestFuzzySkipsShortAndExactTokens(t *testing.T) {
	vocab := &vocabulary.Vocabulary{
		Terms: []*types.Term{
			{Text: "ab", Category: types.CategoryAbbreviation, Priority: types.PriorityLow},
			{Text: "fever", Category: types.CategorySymptom, Priority: types.PriorityMedium},
		},
	}
	e := NewEngine(NewCatalog(vocab))

	assert.Empty(t, e.FindFuzzyMatches("an ax"), "tokens under three runes are never fuzzy matched")

	got := e.FindFuzzyMatches("fever")
	require.Len(t, got, 1)
	assert.Equal(t, types.MatchExact, got[0].Kind)
}

func TestPartialMatches(t *testing.T) {
	vocab := &vocabulary.Vocabulary{
		Terms: []*types.Term{{Text: "dialysis", Category: types.CategoryProcedure, Priority: types.PriorityHigh}},
	}
	e := NewEngine(NewCatalog(vocab))

	got := e.FindExactMatches("started hemodialysis today")
	require.Len(t, got, 1)
	assert.Equal(t, types.MatchPartial, got[0].Kind)
	assert.Equal(t, "hemodialysis", got[0].Text, "partial matches cover the whole word")
	assert.InDelta(t, 8.0/12.0*0.9, got[0].Confidence, 1e-9)

	assert.Empty(t, e.FindExactMatches("dialysisunitstaff"), "ratio below the partial threshold")

	loose := NewEngine(NewCatalog(vocab), WithPartialThreshold(0.4))
	assert.Len(t, loose.FindExactMatches("dialysisunitstaff"), 1)
}

func TestCaseSensitiveTerms(t *testing.T) {
	vocab := &vocabulary.Vocabulary{
		Terms: []*types.Term{{Text: "DNR", Category: types.CategoryAbbreviation, Priority: types.PriorityCritical, CaseSensitive: true}},
	}
	e := NewEngine(NewCatalog(vocab))

	got := e.FindMatches("Status: DNR confirmed")
	require.Len(t, got, 1)
	assert.Equal(t, types.MatchExact, got[0].Kind)

	assert.Empty(t, e.FindMatches("status: dnr confirmed"))
}

func TestMultiWordWhitespace(t *testing.T) {
	e := NewEngine(NewCatalog(exampleVocabulary()))

	got := e.FindExactMatches("severe CHEST\n\t pain")
	require.Len(t, got, 1)
	assert.Equal(t, "CHEST\n\t pain", got[0].Text)
	assert.Equal(t, types.MatchMultiWord, got[0].Kind)

	assert.Empty(t, e.FindExactMatches("chestpain"))
	assert.Empty(t, e.FindExactMatches("xchest pain"), "phrases respect word boundaries")
}

func TestAbbreviationNeedsRegisteredAlias(t *testing.T) {
	e := NewEngine(NewCatalog(exampleVocabulary()))

	assert.Empty(t, e.FindExactMatches("take XYZ"))

	// abbreviation aliases only match in their registered case
	assert.Empty(t, e.FindExactMatches("take it bid"))
	assert.Empty(t, e.FindExactMatches("take it Bid"))

	got := e.FindExactMatches("take it BID")
	require.Len(t, got, 1)
	assert.Equal(t, types.MatchAbbreviation, got[0].Kind)
}

type stubStrategy struct{}

func (stubStrategy) Kind() types.MatchKind { return types.MatchAbbreviation }

func (stubStrategy) Find(s *Scan) []types.Match {
	term := &types.Term{Text: "once daily", Category: types.CategoryAbbreviation, Priority: types.PriorityMedium}
	var out []types.Match
	for _, tok := range s.Tokens {
		if tok.Text == "QD" || tok.Text == "OD" {
			out = append(out, newMatch(s.Text, tok.Start, tok.End, term, types.MatchAbbreviation, 1, tok.Text))
		}
	}
	return out
}

func TestCustomStrategy(t *testing.T) {
	e := NewEngine(NewCatalog(exampleVocabulary()), WithStrategy(stubStrategy{}))

	got := e.FindMatches("Amoxicillin QD")
	require.Len(t, got, 2)
	assert.Equal(t, "once daily", got[1].Term.Text)
	assert.Equal(t, 0.95, got[1].Confidence)
}

func TestSimilarityCache(t *testing.T) {
	vocab := &vocabulary.Vocabulary{
		Terms: []*types.Term{{Text: "hemorrhage", Category: types.CategoryCondition, Priority: types.PriorityCritical}},
	}
	e := NewEngine(NewCatalog(vocab), WithSimilarityCacheSize(4))

	e.FindFuzzyMatches("hemorrage")
	first := e.SimilarityStats()
	assert.NotZero(t, first.Misses)

	e.FindFuzzyMatches("hemorrage")
	assert.NotZero(t, e.SimilarityStats().Hits)
	assert.LessOrEqual(t, e.SimilarityStats().Len, 4)
}

func TestEmptyAndOddInput(t *testing.T) {
	e := NewEngine(NewCatalog(vocabulary.Default()))

	for _, text := range []string{"", "   ", "\x00\xff\xfe", "🙂🙂🙂", strings.Repeat("-", 100)} {
		assert.NotPanics(t, func() {
			assert.Empty(t, e.FindMatches(text))
		})
	}

	empty := NewEngine(NewCatalog(nil))
	assert.Empty(t, empty.FindMatches("chest pain"))
}

// TestMatchInvariants checks disjointness, ordering, bounds and offsets over
// generated clinical-ish text.
func TestMatchInvariants(t *testing.T) {
	vocab := vocabulary.Default()
	e := NewEngine(NewCatalog(vocab))

	words := []string{
		"patient", "presented", "with", "chest", "pain", "hemorrage", "haemorrhage", "BID", "bid",
		"Amoxicillin", "amoxicilin", "heart", "failure", "ER", "ward", "cardiac", "ECG", "STAT",
		"shortness", "of", "breath", "dialysis", "hemodialysis", "oedema", "tumour", "insulin",
		"units", "x-ray", "fracture", "heat", "stroke", "café", "naïve", "500mg", "mg", "DNR",
	}
	seps := []string{" ", "  ", "\n", ", ", ". ", "\t"}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		var b strings.Builder
		n := 1 + rng.Intn(40)
		for j := 0; j < n; j++ {
			b.WriteString(words[rng.Intn(len(words))])
			b.WriteString(seps[rng.Intn(len(seps))])
		}
		text := b.String()

		got := e.FindMatches(text)
		for k, m := range got {
			require.GreaterOrEqual(t, m.Confidence, 0.0, text)
			require.LessOrEqual(t, m.Confidence, 1.0, text)
			require.Less(t, m.Start, m.End, text)
			require.Equal(t, text[m.Start:m.End], m.Text, text)
			require.NotNil(t, m.Term)
			if k > 0 {
				require.LessOrEqual(t, got[k-1].End, m.Start, "overlap in %q", text)
			}
		}
	}
}

func TestFuzzyCanBeDisabled(t *testing.T) {
	vocab := &vocabulary.Vocabulary{
		Terms: []*types.Term{{Text: "hemorrhage", Category: types.CategoryCondition, Priority: types.PriorityCritical}},
	}
	e := NewEngine(NewCatalog(vocab), WithFuzzy(false))

	assert.Empty(t, e.FindFuzzyMatches("mild hemorrage"))
	assert.Empty(t, e.FindMatches("mild hemorrage"))
	assert.Len(t, e.FindMatches("mild hemorrhage"), 1)
}
