package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/termshield/internal/types"
	"github.com/standardbeagle/termshield/internal/vocabulary"
)

var testVariants = []vocabulary.SpellingVariant{
	{British: "haem", American: "hem"},
	{British: "oedema", American: "edema"},
}

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"a", "hemorrhage", "chest pain", "čerstvý", ""} {
		assert.Equal(t, 1.0, Similarity(s, s, testVariants), s)
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	pairs := [][2]string{
		{"hemorrage", "hemorrhage"},
		{"haemorrhage", "hemorrhage"},
		{"abcab", "bcabc"},
		{"arrythmia", "arrhythmia"},
		{"pneumonia", "amnesia"},
		{"x", "hemorrhage"},
		{"oedema", "edema"},
		{"aab", "aba"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1], testVariants)
		ba := Similarity(p[1], p[0], testVariants)
		assert.Equal(t, ab, ba, "%s / %s", p[0], p[1])
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
	}
}

func TestSimilarityScores(t *testing.T) {
	tests := []struct {
		a, b     string
		min, max float64
	}{
		{"hemorrage", "hemorrhage", types.DefaultFuzzyThreshold, 0.87},
		{"arrythmia", "arrhythmia", types.DefaultFuzzyThreshold, 0.87},
		{"pneumonia", "amnesia", 0, 0.7},
		{"fever", "liver", 0, 0.7},
		{"abc", "", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			got := Similarity(tt.a, tt.b, testVariants)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestSimilarityVariantBonus(t *testing.T) {
	with := Similarity("haemorrhage", "hemorrhage", testVariants)
	without := Similarity("haemorrhage", "hemorrhage", nil)
	assert.InDelta(t, variantWeight, with-without, 1e-9)

	// both sides British: no bonus
	assert.Equal(t,
		Similarity("haemorrhage", "haemorrhag", nil),
		Similarity("haemorrhage", "haemorrhag", testVariants))
}

func TestSequenceRatio(t *testing.T) {
	// "hemorr" + "age" matched out of 19 runes
	assert.InDelta(t, 18.0/19.0, sequenceRatio([]rune("hemorrage"), []rune("hemorrhage")), 1e-9)
	assert.Equal(t, 0.0, sequenceRatio([]rune("abc"), []rune("xyz")))
	assert.Equal(t, 1.0, sequenceRatio([]rune("abc"), []rune("abc")))
}

func TestAffixRatio(t *testing.T) {
	assert.Equal(t, 1.0, affixRatio([]rune("hemorrage"), []rune("hemorrhage")))
	assert.InDelta(t, 0.5*(1.0/3.0)+0.5, affixRatio([]rune("haemorrhage"), []rune("hemorrhage")), 1e-9)
	assert.Equal(t, 0.0, affixRatio([]rune("abc"), []rune("xyz")))
}
