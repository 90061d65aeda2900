// Package orchestrator runs the matching engine over whole documents. Small
// documents are matched in one pass; large ones are split into overlapping
// chunks that a bounded worker pool matches in parallel. Whole-document
// results are cached by content hash.
package orchestrator

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/termshield/internal/cache"
	"github.com/standardbeagle/termshield/internal/config"
	"github.com/standardbeagle/termshield/internal/debug"
	"github.com/standardbeagle/termshield/internal/index"
	"github.com/standardbeagle/termshield/internal/matching"
	"github.com/standardbeagle/termshield/internal/types"
	"github.com/standardbeagle/termshield/internal/vocabulary"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers overrides the configured worker limit.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithEngineOptions appends engine options after the ones derived from the
// configuration, e.g. extra strategies.
func WithEngineOptions(opts ...matching.Option) Option {
	return func(o *Orchestrator) { o.engineOpts = append(o.engineOpts, opts...) }
}

type fastPattern struct {
	term *types.Term
	form string
	re   *regexp.Regexp
}

// Orchestrator is safe for concurrent use. The result cache and the stats
// are the only state shared between calls.
type Orchestrator struct {
	cfg        *config.Config
	cat        *matching.Catalog
	engine     *matching.Engine
	engineOpts []matching.Option
	workers    int
	fast       []fastPattern

	results *cache.FIFO[uint64, []types.Match]

	statsMu sync.Mutex
	stats   types.Stats
}

// New indexes vocab and validates cfg. A nil cfg means config.Default().
func New(vocab *vocabulary.Vocabulary, cfg *config.Config, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := cfg.Matching
	o := &Orchestrator{
		cfg: cfg,
		cat: matching.NewCatalog(vocab),
		engineOpts: []matching.Option{
			matching.WithFuzzyThreshold(m.FuzzyThreshold),
			matching.WithPartialThreshold(m.PartialThreshold),
			matching.WithOverlapMargin(m.OverlapMargin),
			matching.WithSimilarityCacheSize(m.SimilarityCacheSize),
			matching.WithFuzzy(m.EnableFuzzy),
		},
		workers: cfg.Orchestrator.Workers(),
		results: cache.NewFIFO[uint64, []types.Match](cfg.Orchestrator.ResultCacheSize, cache.EvictOldest),
		stats:   types.NewStats(),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.engine = matching.NewEngine(o.cat, o.engineOpts...)
	o.fast = compileFastPath(o.cat.Index)
	debug.LogIndex("orchestrator ready: %d terms, %d fast-path patterns, %d workers\n",
		o.cat.Index.Len(), len(o.fast), o.workers)
	return o, nil
}

// compileFastPath builds one pattern per distinct form of every Critical term.
// Abbreviation aliases match verbatim only, as in the literal stage.
func compileFastPath(idx *index.TermIndex) []fastPattern {
	var out []fastPattern
	for _, t := range idx.TermsByPriority(types.PriorityCritical) {
		seen := make(map[string]bool)
		for i, form := range t.Forms() {
			caseSensitive := t.CaseSensitive || (i > 0 && index.IsAbbreviation(form))
			key := form
			if !caseSensitive {
				key = index.Fold(form)
			}
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, fastPattern{term: t, form: form, re: index.CompileForm(form, caseSensitive)})
		}
	}
	return out
}

// Catalog returns the shared, read-only matching data.
func (o *Orchestrator) Catalog() *matching.Catalog { return o.cat }

// Config returns the validated configuration.
func (o *Orchestrator) Config() *config.Config { return o.cfg }

// FindMatches returns disjoint matches sorted by start offset.
func (o *Orchestrator) FindMatches(text string) []types.Match {
	matches, _ := o.FindMatchesContext(context.Background(), text)
	return matches
}

// FindMatchesContext is FindMatches with cancellation between chunks. The
// only error it returns is the context's.
func (o *Orchestrator) FindMatchesContext(ctx context.Context, text string) ([]types.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	key := cache.ContentKey(text)
	if cached, ok := o.results.Get(key); ok {
		debug.LogCache("result cache hit for %d-byte document\n", len(text))
		out := clone(cached)
		o.record(text, out, false, true, time.Since(start))
		return out, nil
	}

	var (
		matches []types.Match
		chunked = len(text) >= o.cfg.Orchestrator.ChunkThreshold
		err     error
	)
	if chunked {
		matches, err = o.matchChunked(ctx, text)
		if err != nil {
			return nil, err
		}
	} else {
		matches = o.merge(append(o.fastPath(text), o.run(o.engine, text, nil)...))
	}

	o.results.Put(key, clone(matches))
	o.record(text, matches, chunked, false, time.Since(start))
	return matches, nil
}

// AnalyzeContext profiles text without matching it.
func (o *Orchestrator) AnalyzeContext(text string) *types.MedicalContext {
	return o.engine.AnalyzeContext(text)
}

func (o *Orchestrator) run(e *matching.Engine, text string, mctx *types.MedicalContext) []types.Match {
	if o.cfg.Matching.EnableContext {
		return e.FindContextualMatches(text, mctx)
	}
	return e.FindFuzzyMatches(text)
}

func (o *Orchestrator) fastPath(text string) []types.Match {
	var out []types.Match
	for _, fp := range o.fast {
		for _, loc := range fp.re.FindAllStringIndex(text, -1) {
			if !index.AtWordBoundary(text, loc[0], loc[1]) {
				continue
			}
			out = append(out, types.Match{
				Term:       fp.term,
				Text:       text[loc[0]:loc[1]],
				Start:      loc[0],
				End:        loc[1],
				Kind:       types.MatchExact,
				Confidence: 1.0,
				Variant:    fp.form,
				Context:    types.Snippet(text, loc[0], loc[1], types.SnippetRadius),
			})
		}
	}
	return out
}

func (o *Orchestrator) merge(matches []types.Match) []types.Match {
	return matching.ResolveOverlaps(matching.Dedupe(matches), o.cfg.Matching.OverlapMargin)
}

// matchChunked analyses the context once for the whole document, then
// matches every chunk with its own engine.
func (o *Orchestrator) matchChunked(ctx context.Context, text string) ([]types.Match, error) {
	oc := o.cfg.Orchestrator
	chunks := splitChunks(text, oc.ChunkSize, oc.ChunkOverlap)

	var mctx *types.MedicalContext
	if o.cfg.Matching.EnableContext {
		mctx = o.engine.AnalyzeContext(text)
	}

	workers := o.workers
	if workers > len(chunks) {
		workers = len(chunks)
	}
	debug.LogChunk("%d bytes -> %d chunks, %d workers\n", len(text), len(chunks), workers)

	results := make([][]types.Match, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := matching.NewEngine(o.cat, o.engineOpts...)
			found := o.run(e, text[c.start:c.end], mctx)
			for j := range found {
				m := found[j].Shift(c.start)
				m.Context = types.Snippet(text, m.Start, m.End, types.SnippetRadius)
				found[j] = m
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := o.fastPath(text)
	for _, r := range results {
		merged = append(merged, r...)
	}
	return o.merge(merged), nil
}

type span struct{ start, end int }

// splitChunks cuts text into windows of about size bytes. Each window ends
// on whitespace when one exists in its second half, and the next window
// starts at a word start about overlap bytes before the previous end.
// Windows always advance and stay on rune boundaries.
func splitChunks(text string, size, overlap int) []span {
	var out []span
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			out = append(out, span{start, len(text)})
			break
		}

		if cut := lastSpace(text, start+size/2, end); cut > start {
			end = cut
		} else {
			end = runeStart(text, end)
		}
		out = append(out, span{start, end})

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		if ws := lastSpace(text, next-overlap, next); ws >= 0 && ws+1 > start {
			next = ws + 1
		} else if ws := firstSpace(text, next, end); ws >= 0 {
			next = ws + 1
		} else {
			next = end
		}
		start = runeStart(text, next)
	}
	return out
}

// lastSpace returns the highest index in [lo,hi] holding ASCII whitespace.
func lastSpace(text string, lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi >= len(text) {
		hi = len(text) - 1
	}
	for i := hi; i >= lo; i-- {
		if isSpace(text[i]) {
			return i
		}
	}
	return -1
}

// firstSpace returns the lowest index in [lo,hi) holding ASCII whitespace.
func firstSpace(text string, lo, hi int) int {
	for i := lo; i < hi && i < len(text); i++ {
		if isSpace(text[i]) {
			return i
		}
	}
	return -1
}

func runeStart(text string, i int) int {
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func clone(ms []types.Match) []types.Match {
	if ms == nil {
		return nil
	}
	out := make([]types.Match, len(ms))
	copy(out, ms)
	return out
}

func (o *Orchestrator) record(text string, matches []types.Match, chunked, hit bool, elapsed time.Duration) {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()

	s := &o.stats
	s.Documents++
	if chunked {
		s.ChunkedDocuments++
	}
	s.TotalWords += int64(len(strings.Fields(text)))
	s.TotalMatches += int64(len(matches))
	for _, m := range matches {
		s.MatchesByKind[m.Kind]++
	}
	if hit {
		s.CacheHits++
	} else {
		s.CacheMisses++
	}
	s.Elapsed += elapsed
}

// Stats returns a snapshot of the cumulative counters.
func (o *Orchestrator) Stats() types.Stats {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	return o.stats.Clone()
}

// ResetStats zeroes the counters.
func (o *Orchestrator) ResetStats() {
	o.statsMu.Lock()
	o.stats = types.NewStats()
	o.statsMu.Unlock()
}

// ClearCache drops every cached document result.
func (o *Orchestrator) ClearCache() {
	o.results.Clear()
	debug.LogCache("result cache cleared\n")
}

// CacheStats returns the result cache counters.
func (o *Orchestrator) CacheStats() cache.Stats { return o.results.Stats() }
