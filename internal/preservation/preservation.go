// Package preservation shields matched vocabulary terms from machine
// translation. Prepare swaps protected spans for opaque placeholders; after
// the external translation step, Restore puts back either the verified
// original or the vocabulary's own translation.
package preservation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/standardbeagle/termshield/internal/debug"
	"github.com/standardbeagle/termshield/internal/types"
)

// Placeholder delimiters. They are not letters in any script, so
// translators tend to copy them through untouched.
const (
	placeholderOpen  = "⟦MT"
	placeholderClose = "⟧"
)

// Matcher finds the terms to protect. *orchestrator.Orchestrator and
// *matching.Engine both satisfy it.
type Matcher interface {
	FindMatches(text string) []types.Match
}

// TranslateFunc is the opaque translation backend: text in, text out.
type TranslateFunc func(ctx context.Context, text string) (string, error)

// Entry records what a placeholder stands for.
type Entry struct {
	Placeholder string          `json:"placeholder"`
	Original    string          `json:"original"`
	Translation string          `json:"translation,omitempty"`
	Term        string          `json:"term"`
	Category    types.Category  `json:"category"`
	Priority    types.Priority  `json:"priority"`
	Confidence  float64         `json:"confidence"`
	Kind        types.MatchKind `json:"kind"`
	Start       int             `json:"start"`
	End         int             `json:"end"`
}

// Map is keyed by placeholder.
type Map map[string]Entry

// Sorted returns the entries ordered by their position in the source text.
func (m Map) Sorted() []Entry {
	out := make([]Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Placeholder < out[j].Placeholder
	})
	return out
}

// Prepared is the output of Prepare.
type Prepared struct {
	Text   string `json:"text"`
	Map    Map    `json:"map"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// WarningKind classifies a restore problem.
type WarningKind string

const (
	WarningMissingPlaceholder WarningKind = "missing_placeholder"
	WarningCriticalMissing    WarningKind = "critical_missing"
)

// Warning is a non-fatal restore problem. Callers that need strict
// guarantees treat any warning as a failure.
type Warning struct {
	Kind        WarningKind `json:"kind"`
	Placeholder string      `json:"placeholder"`
	Term        string      `json:"term"`
	Message     string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Restored is the output of Restore.
type Restored struct {
	Text     string    `json:"text"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHighConfidence sets the confidence at which High priority terms are
// protected.
func WithHighConfidence(c float64) Option {
	return func(p *Pipeline) { p.highConfidence = c }
}

// WithSessionTag fixes the placeholder tag instead of deriving one from a
// random UUID.
func WithSessionTag(tag string) Option {
	return func(p *Pipeline) { p.tag = tag }
}

// WithTranslations controls whether Translate restores vocabulary
// translations (the default) or the original text.
func WithTranslations(use bool) Option {
	return func(p *Pipeline) { p.useTranslations = use }
}

// Pipeline is safe for concurrent use; the placeholder counter is the only
// mutable state.
type Pipeline struct {
	matcher         Matcher
	highConfidence  float64
	useTranslations bool
	tag             string
	counter         atomic.Uint64
}

// New returns a pipeline protecting the terms matcher finds.
func New(matcher Matcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		matcher:         matcher,
		highConfidence:  types.DefaultHighConfidence,
		useTranslations: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tag == "" {
		p.tag = strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	}
	return p
}

// ShouldPreserve reports whether m is protected: always for Critical terms,
// for High terms at or above the confidence bar, for Medium terms matched
// literally, and for any term flagged preserve-exact.
func (p *Pipeline) ShouldPreserve(m types.Match) bool {
	t := m.Term
	if t == nil {
		return false
	}
	if t.PreserveExact {
		return true
	}
	switch t.Priority {
	case types.PriorityCritical:
		return true
	case types.PriorityHigh:
		return m.Confidence >= p.highConfidence
	case types.PriorityMedium:
		return m.Kind.IsLiteral()
	}
	return false
}

func (p *Pipeline) nextPlaceholder() string {
	n := p.counter.Add(1)
	return placeholderOpen + p.tag + "_" + strconv.FormatUint(n, 10) + placeholderClose
}

// Prepare replaces every protected match in text with a fresh placeholder.
// Overlapping or out-of-range matches are skipped.
func (p *Pipeline) Prepare(text, sourceLang, targetLang string) Prepared {
	prep := Prepared{Text: text, Map: make(Map), Source: sourceLang, Target: targetLang}

	var kept []types.Match
	for _, m := range p.matcher.FindMatches(text) {
		if p.ShouldPreserve(m) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return prep
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start > kept[j].Start })

	type splice struct {
		start, end  int
		placeholder string
	}
	splices := make([]splice, 0, len(kept))
	limit := len(text)
	for _, m := range kept {
		if m.Start < 0 || m.End > limit || m.Start >= m.End {
			continue
		}
		ph := p.nextPlaceholder()
		tr, _ := m.Term.Translation(targetLang)
		prep.Map[ph] = Entry{
			Placeholder: ph,
			Original:    text[m.Start:m.End],
			Translation: tr,
			Term:        m.Term.Text,
			Category:    m.Term.Category,
			Priority:    m.Term.Priority,
			Confidence:  m.Confidence,
			Kind:        m.Kind,
			Start:       m.Start,
			End:         m.End,
		}
		splices = append(splices, splice{m.Start, m.End, ph})
		limit = m.Start
	}

	// splices run from the end of the text towards the start
	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for i := len(splices) - 1; i >= 0; i-- {
		s := splices[i]
		b.WriteString(text[pos:s.start])
		b.WriteString(s.placeholder)
		pos = s.end
	}
	b.WriteString(text[pos:])
	prep.Text = b.String()

	debug.LogPreserve("prepared %d of %d protected spans (%s -> %s)\n", len(splices), len(kept), sourceLang, targetLang)
	return prep
}

// Restore swaps placeholders in translated back to the protected terms.
// Missing placeholders and Critical terms absent from the result become
// warnings; Restore never fails.
func (p *Pipeline) Restore(translated string, m Map, useTranslations bool) Restored {
	return Restore(translated, m, useTranslations)
}

// Restore is the stateless form of Pipeline.Restore.
func Restore(translated string, m Map, useTranslations bool) Restored {
	var (
		out      Restored
		pairs    []string
		critical []Entry
	)
	for _, e := range m.Sorted() {
		if e.Priority == types.PriorityCritical {
			critical = append(critical, e)
		}
		if !strings.Contains(translated, e.Placeholder) {
			out.Warnings = append(out.Warnings, Warning{
				Kind:        WarningMissingPlaceholder,
				Placeholder: e.Placeholder,
				Term:        e.Term,
				Message:     fmt.Sprintf("placeholder for %q was lost in translation", e.Original),
			})
			continue
		}
		pairs = append(pairs, e.Placeholder, replacement(e, useTranslations))
	}

	out.Text = translated
	if len(pairs) > 0 {
		out.Text = strings.NewReplacer(pairs...).Replace(translated)
	}

	for _, e := range critical {
		lit := replacement(e, useTranslations)
		if !strings.Contains(out.Text, lit) {
			out.Warnings = append(out.Warnings, Warning{
				Kind:        WarningCriticalMissing,
				Placeholder: e.Placeholder,
				Term:        e.Term,
				Message:     fmt.Sprintf("critical term %q is missing from the restored text", lit),
			})
		}
	}

	if len(out.Warnings) > 0 {
		debug.LogPreserve("restore: %d warnings\n", len(out.Warnings))
	}
	return out
}

func replacement(e Entry, useTranslations bool) string {
	if useTranslations && e.Translation != "" {
		return e.Translation
	}
	return e.Original
}

// Translate runs one prepare, translate, restore cycle. Errors from fn are
// returned as is; there is no retry or timeout around it.
func (p *Pipeline) Translate(ctx context.Context, text, sourceLang, targetLang string, fn TranslateFunc) (Restored, error) {
	prep := p.Prepare(text, sourceLang, targetLang)
	translated, err := fn(ctx, prep.Text)
	if err != nil {
		return Restored{}, err
	}
	return Restore(translated, prep.Map, p.useTranslations), nil
}

// Identity is a TranslateFunc that returns its input.
func Identity(_ context.Context, text string) (string, error) { return text, nil }
