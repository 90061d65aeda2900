package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/termshield/internal/types"
)

func span(start, end int, conf float64) types.Match {
	return types.Match{Start: start, End: end, Confidence: conf}
}

func spans(ms []types.Match) [][3]float64 {
	out := make([][3]float64, len(ms))
	for i, m := range ms {
		out[i] = [3]float64{float64(m.Start), float64(m.End), m.Confidence}
	}
	return out
}

func TestResolveOverlaps(t *testing.T) {
	tests := []struct {
		name string
		in   []types.Match
		want [][3]float64
	}{
		{
			name: "disjoint matches are kept in order",
			in:   []types.Match{span(10, 15, 0.9), span(0, 5, 1.0), span(5, 10, 0.8)},
			want: [][3]float64{{0, 5, 1.0}, {5, 10, 0.8}, {10, 15, 0.9}},
		},
		{
			name: "later overlapping match within margin is dropped",
			in:   []types.Match{span(0, 5, 0.5), span(2, 8, 0.59)},
			want: [][3]float64{{0, 5, 0.5}},
		},
		{
			name: "later overlapping match beyond margin replaces",
			in:   []types.Match{span(0, 5, 0.5), span(2, 8, 0.7)},
			want: [][3]float64{{2, 8, 0.7}},
		},
		{
			name: "same start prefers higher confidence",
			in:   []types.Match{span(0, 4, 0.6), span(0, 9, 0.95)},
			want: [][3]float64{{0, 9, 0.95}},
		},
		{
			name: "same start and confidence prefers the longer span",
			in:   []types.Match{span(0, 5, 1.0), span(0, 10, 1.0)},
			want: [][3]float64{{0, 10, 1.0}},
		},
		{
			name: "replacement does not disturb earlier kept matches",
			in:   []types.Match{span(0, 3, 0.9), span(4, 8, 0.4), span(6, 12, 0.9)},
			want: [][3]float64{{0, 3, 0.9}, {6, 12, 0.9}},
		},
		{
			name: "empty spans are ignored",
			in:   []types.Match{span(3, 3, 1.0), span(0, 2, 0.5)},
			want: [][3]float64{{0, 2, 0.5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOverlaps(tt.in, types.DefaultOverlapMargin)
			assert.Equal(t, tt.want, spans(got))
		})
	}

	assert.Nil(t, ResolveOverlaps(nil, 0.2))
}

func TestResolveOverlapsMarginIsConfigurable(t *testing.T) {
	in := func() []types.Match { return []types.Match{span(0, 5, 0.5), span(2, 8, 0.55)} }

	assert.Equal(t, [][3]float64{{0, 5, 0.5}}, spans(ResolveOverlaps(in(), 0.2)))
	assert.Equal(t, [][3]float64{{2, 8, 0.55}}, spans(ResolveOverlaps(in(), 0)))
}

func TestResolveOverlapsPriorityTieBreak(t *testing.T) {
	low := &types.Term{Text: "cold", Priority: types.PriorityLow}
	high := &types.Term{Text: "COLD", Priority: types.PriorityHigh}

	got := ResolveOverlaps([]types.Match{
		{Term: low, Start: 0, End: 4, Confidence: 1},
		{Term: high, Start: 0, End: 4, Confidence: 1},
	}, 0.2)
	require.Len(t, got, 1)
	assert.Same(t, high, got[0].Term)
}

func TestDedupe(t *testing.T) {
	a := &types.Term{Text: "a"}
	b := &types.Term{Text: "b"}

	got := Dedupe([]types.Match{
		{Term: a, Start: 0, End: 3, Confidence: 0.7},
		{Term: b, Start: 0, End: 3, Confidence: 0.6},
		{Term: a, Start: 0, End: 3, Confidence: 0.9},
		{Term: a, Start: 4, End: 6, Confidence: 0.5},
	})

	require.Len(t, got, 3)
	assert.Equal(t, 0.9, got[0].Confidence, "higher-confidence duplicate wins")
	assert.Same(t, b, got[1].Term)
	assert.Equal(t, 4, got[2].Start)
}
