package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/termshield/internal/types"
)

func testTerms() []*types.Term {
	return []*types.Term{
		{Text: "chest pain", Category: types.CategorySymptom, Priority: types.PriorityHigh},
		{Text: "Amoxicillin", Category: types.CategoryMedication, Priority: types.PriorityHigh, Aliases: []string{"amoxicillin"}},
		{Text: "twice daily", Category: types.CategoryAbbreviation, Priority: types.PriorityMedium, Aliases: []string{"BID"}},
		{Text: "hemorrhage", Category: types.CategoryCondition, Priority: types.PriorityCritical, Aliases: []string{"haemorrhage"}},
		{Text: "shortness of breath", Category: types.CategorySymptom, Priority: types.PriorityHigh},
		{Text: "DNR", Category: types.CategoryAbbreviation, Priority: types.PriorityCritical, CaseSensitive: true},
		{Text: "cold", Category: types.CategorySymptom, Priority: types.PriorityLow},
		{Text: "COLD", Category: types.CategoryCondition, Priority: types.PriorityHigh, CaseSensitive: true},
	}
}

func TestLookup(t *testing.T) {
	idx := New(testTerms())

	tests := []struct {
		token string
		want  []string
	}{
		{"Amoxicillin", []string{"Amoxicillin"}},
		{"AMOXICILLIN", []string{"Amoxicillin"}},
		{"twice DAILY", []string{"twice daily"}},
		{"bid", nil},
		{"BID", nil},
		{"Chest   Pain", []string{"chest pain"}},
		{"DNR", []string{"DNR"}},
		{"dnr", nil},
		{"cold", []string{"cold"}},
		{"COLD", []string{"cold", "COLD"}},
		{"aspirin", nil},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			var got []string
			for _, term := range idx.Lookup(tt.token) {
				got = append(got, term.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAliasesAndPriority(t *testing.T) {
	idx := New(testTerms())

	assert.True(t, idx.IsAlias("BID"))
	assert.False(t, idx.IsAlias("bid"), "aliases are literal")
	assert.False(t, idx.IsAlias("DNR"), "canonical text is not an alias")
	require.Len(t, idx.AliasTerms("BID"), 1)

	crit := idx.TermsByPriority(types.PriorityCritical)
	assert.Len(t, crit, 2)
	assert.Equal(t, 8, idx.Len())
}

func TestKeysDeduplicateForms(t *testing.T) {
	idx := New(testTerms())

	// "Amoxicillin" and its alias fold to the same key with one entry
	require.Len(t, idx.Entries("amoxicillin"), 1)
	assert.Contains(t, idx.Keys(), "haemorrhage")
	assert.NotContains(t, idx.SingleWordKeys(), "chest pain")
	assert.Len(t, idx.Entries("cold"), 2)
	assert.NotContains(t, idx.Keys(), "bid", "abbreviation aliases stay out of the folded keys")
}

func TestIsAbbreviation(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"BID", true},
		{"CO2", true},
		{"T4", true},
		{"A", false},
		{"bid", false},
		{"Ami", false},
		{"4AT", false},
		{"ÉCG", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAbbreviation(tt.s))
		})
	}
}

func TestMultiWordPatterns(t *testing.T) {
	idx := New(testTerms())

	patterns := idx.MultiWord()
	require.Len(t, patterns, 3)
	assert.Equal(t, "shortness of breath", patterns[0].Key, "longest first")

	var chest Pattern
	for _, p := range patterns {
		if p.Key == "chest pain" {
			chest = p
		}
	}
	require.NotNil(t, chest.Re)
	loc := chest.Re.FindStringIndex("severe CHEST\n\tpain today")
	require.NotNil(t, loc)
	assert.Equal(t, []int{7, 18}, loc)
}

func TestPhoneticKey(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"hemorrhage", "hemorrage"},
		{"haemorrhage", "hemorrhage"},
		{"pharmacy", "farmacy"},
		{"oedema", "edema"},
		{"xylitol", "ksylitol"},
	}
	for _, tt := range tests {
		t.Run(tt.a+"~"+tt.b, func(t *testing.T) {
			assert.Equal(t, PhoneticKey(tt.a), PhoneticKey(tt.b))
		})
	}

	assert.Equal(t, "hmrg", PhoneticKey("Hemorrhage"))
	assert.Equal(t, "", PhoneticKey("123"))
	assert.LessOrEqual(t, len(PhoneticKey("supercalifragilisticexpialidocious")), MaxPhoneticKeyLen)
}

func TestPhoneticCandidates(t *testing.T) {
	idx := New(testTerms())

	assert.Contains(t, idx.PhoneticCandidates("hemorrage"), "hemorrhage")
	assert.NotContains(t, idx.PhoneticCandidates("hemorrage"), "chest pain", "multi-word keys are not bucketed")
	assert.Empty(t, idx.PhoneticCandidates(""))
}

func TestNGramCandidates(t *testing.T) {
	idx := New(testTerms())

	token := "amoxicilin"
	got := idx.NGramCandidates(token, MinSharedGrams(token))
	assert.Contains(t, got, "amoxicillin")
	assert.NotContains(t, got, "hemorrhage")

	assert.Empty(t, idx.NGramCandidates("zz", 1))
}

func TestGrams(t *testing.T) {
	assert.Equal(t, []string{"hem", "emo", "mor"}, Grams("hemor"))
	assert.Equal(t, []string{"aaa"}, Grams("aaaa"))
	assert.Nil(t, Grams("ab"))
	assert.Equal(t, []string{"čěš", "ěšť"}, Grams("čěšť"), "windows are rune based")
}

func TestMinSharedGrams(t *testing.T) {
	assert.Equal(t, 1, MinSharedGrams("ab"))
	assert.Equal(t, 1, MinSharedGrams("abc"))
	assert.Equal(t, 1, MinSharedGrams("abcde"))
	assert.Equal(t, 2, MinSharedGrams("abcdef"))
	assert.Equal(t, 3, MinSharedGrams("hemorrhage"))
}

func TestAtWordBoundary(t *testing.T) {
	text := "préhemorrhage hemorrhage, x"
	assert.False(t, AtWordBoundary(text, 4, 14), "glued to a non-ASCII letter")
	assert.True(t, AtWordBoundary(text, 15, 25))
	assert.True(t, AtWordBoundary(text, 27, 28))
	assert.True(t, AtWordBoundary("abc", 0, 3))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "chest pain", Fold("  Chest \t PAIN "))
	assert.Equal(t, "", Fold("   "))
}
