// Package matching locates vocabulary terms in free text.
//
// An Engine runs a fixed pipeline of strategies over a shared, read-only
// Catalog:
//
//	exact → partial → multi-word → abbreviation   (FindExactMatches)
//	  + fuzzy                                      (FindFuzzyMatches)
//	  + context re-weighting and specialty terms   (FindContextualMatches)
//
// Every stage ends with ResolveOverlaps, so results are always disjoint and
// sorted by start offset. Engines are cheap to build and safe for concurrent
// use; each owns a synchronized similarity cache.
package matching

import (
	"github.com/standardbeagle/termshield/internal/cache"
	"github.com/standardbeagle/termshield/internal/debug"
	"github.com/standardbeagle/termshield/internal/index"
	"github.com/standardbeagle/termshield/internal/types"
	"github.com/standardbeagle/termshield/internal/vocabulary"
)

// Catalog bundles the immutable data every engine reads: the vocabulary, its
// term index, per-specialty indexes and the stemmed keyword tables. Build it
// once and share it.
type Catalog struct {
	Vocab *vocabulary.Vocabulary
	Index *index.TermIndex

	specialties []specialtyProfile
	urgent      []keyword
	settings    []settingProfile
	clues       map[string][]clueProfile // folded phrase -> clues
}

// NewCatalog indexes vocab.
func NewCatalog(vocab *vocabulary.Vocabulary) *Catalog {
	if vocab == nil {
		vocab = &vocabulary.Vocabulary{}
	}
	c := &Catalog{
		Vocab: vocab,
		Index: index.New(vocab.Terms),
	}
	c.buildContextTables()
	return c
}

// Scan is the per-call state strategies share: the text, its tokens, and
// which tokens already resolved to an exact index hit.
type Scan struct {
	Text     string
	Tokens   []Token
	ExactHit []bool
}

func newScan(text string) *Scan {
	tokens := Tokenize(text)
	return &Scan{Text: text, Tokens: tokens, ExactHit: make([]bool, len(tokens))}
}

// Strategy produces candidate matches of one kind. Strategies run in
// registration order and may read what earlier ones recorded on the Scan.
type Strategy interface {
	Kind() types.MatchKind
	Find(s *Scan) []types.Match
}

type options struct {
	fuzzyThreshold   float64
	partialThreshold float64
	overlapMargin    float64
	simCacheSize     int
	fuzzy            bool
	extra            []Strategy
}

// Option configures an Engine.
type Option func(*options)

// WithFuzzyThreshold sets the minimum composite similarity for fuzzy hits.
func WithFuzzyThreshold(t float64) Option {
	return func(o *options) { o.fuzzyThreshold = t }
}

// WithPartialThreshold sets the minimum key/word length ratio for partial hits.
func WithPartialThreshold(t float64) Option {
	return func(o *options) { o.partialThreshold = t }
}

// WithOverlapMargin sets the relative margin a later overlapping candidate
// needs to replace a kept match.
func WithOverlapMargin(m float64) Option {
	return func(o *options) { o.overlapMargin = m }
}

// WithSimilarityCacheSize bounds the memoized similarity pairs.
func WithSimilarityCacheSize(n int) Option {
	return func(o *options) { o.simCacheSize = n }
}

// WithFuzzy enables or disables the approximate stage. When disabled the
// fuzzy and contextual entry points skip it.
func WithFuzzy(enabled bool) Option {
	return func(o *options) { o.fuzzy = enabled }
}

// WithStrategy appends a custom strategy to the literal stage, after the
// built-in abbreviation pass.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.extra = append(o.extra, s) }
}

// Engine runs the strategy pipeline against a Catalog.
type Engine struct {
	cat  *Catalog
	opts options
	sim  *cache.FIFO[uint64, float64]

	literal []Strategy
	fuzzy   Strategy
}

// NewEngine builds an engine over cat.
func NewEngine(cat *Catalog, opts ...Option) *Engine {
	o := options{
		fuzzyThreshold:   types.DefaultFuzzyThreshold,
		partialThreshold: types.DefaultPartialThreshold,
		overlapMargin:    types.DefaultOverlapMargin,
		simCacheSize:     types.DefaultSimilarityCacheSize,
		fuzzy:            true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		cat:  cat,
		opts: o,
		sim:  cache.NewFIFO[uint64, float64](o.simCacheSize, cache.EvictOldestHalf),
	}
	e.literal = []Strategy{
		&exactStrategy{idx: cat.Index},
		&partialStrategy{idx: cat.Index, threshold: o.partialThreshold},
		&multiWordStrategy{idx: cat.Index},
		&abbreviationStrategy{idx: cat.Index},
	}
	e.literal = append(e.literal, o.extra...)
	if o.fuzzy {
		e.fuzzy = &fuzzyStrategy{engine: e}
	}
	return e
}

// Catalog returns the engine's shared data.
func (e *Engine) Catalog() *Catalog { return e.cat }

// FindExactMatches runs the literal stage: exact tokens, partial tokens,
// multi-word phrases and abbreviations.
func (e *Engine) FindExactMatches(text string) []types.Match {
	return e.resolve(e.collectLiteral(newScan(text)))
}

// FindFuzzyMatches adds approximate matches for tokens without an exact hit.
func (e *Engine) FindFuzzyMatches(text string) []types.Match {
	s := newScan(text)
	return e.resolve(e.collectApproximate(s))
}

// collectApproximate runs the literal strategies, then the fuzzy one when
// enabled.
func (e *Engine) collectApproximate(s *Scan) []types.Match {
	matches := e.collectLiteral(s)
	if e.fuzzy != nil {
		matches = append(matches, e.fuzzy.Find(s)...)
	}
	return matches
}

// FindMatches runs the full pipeline with a freshly analysed context.
func (e *Engine) FindMatches(text string) []types.Match {
	return e.FindContextualMatches(text, nil)
}

// SimilarityStats returns the similarity cache counters.
func (e *Engine) SimilarityStats() cache.Stats { return e.sim.Stats() }

func (e *Engine) collectLiteral(s *Scan) []types.Match {
	var matches []types.Match
	for _, st := range e.literal {
		found := st.Find(s)
		if len(found) > 0 {
			debug.LogMatch("%s pass: %d candidates\n", st.Kind(), len(found))
		}
		matches = append(matches, found...)
	}
	return matches
}

func (e *Engine) resolve(matches []types.Match) []types.Match {
	for i := range matches {
		matches[i].Confidence = types.Clamp(matches[i].Confidence)
	}
	return ResolveOverlaps(matches, e.opts.overlapMargin)
}

// similarity memoizes Similarity for folded pairs.
func (e *Engine) similarity(a, b string) float64 {
	key := cache.PairKey(a, b)
	if v, ok := e.sim.Get(key); ok {
		return v
	}
	v := Similarity(a, b, e.cat.Vocab.Variants)
	e.sim.Put(key, v)
	return v
}

func newMatch(text string, start, end int, t *types.Term, kind types.MatchKind, raw float64, variant string) types.Match {
	return types.Match{
		Term:       t,
		Text:       text[start:end],
		Start:      start,
		End:        end,
		Kind:       kind,
		Confidence: kind.Adjust(raw),
		Variant:    variant,
		Context:    types.Snippet(text, start, end, types.SnippetRadius),
	}
}
