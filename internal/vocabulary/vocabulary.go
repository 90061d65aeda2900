// Package vocabulary supplies the read-only reference data the matchers run
// against: protected terms with category and priority metadata, per-language
// translations, and the domain tables used for context analysis (specialty
// keywords, urgency and setting keywords, context clues and regional
// spelling variants).
//
// A Vocabulary is assembled once, either from the built-in clinical set
// (Default), from files (LoadFile, LoadGlob) or both (Merge), and is never
// mutated after it is handed to an engine.
package vocabulary

import (
	"sort"
	"strings"

	"github.com/standardbeagle/termshield/internal/types"
)

// Position constrains where a context clue keyword must appear relative to
// the matched term.
type Position string

const (
	PositionBefore   Position = "before"
	PositionAfter    Position = "after"
	PositionAnywhere Position = "anywhere"
)

// Specialty describes a clinical specialty for context scoring.
type Specialty struct {
	Name       string
	Keywords   []string         // presence of these raises the specialty score
	Categories []types.Category // term categories that align with the specialty
	Terms      []*types.Term    // specialty-only vocabulary, searched when the specialty dominates
}

// SettingGroup maps a clinical setting to the keywords that reveal it.
// Groups are checked in order; the first one with a present keyword wins.
type SettingGroup struct {
	Setting  types.Setting
	Keywords []string
}

// ContextClue adjusts the confidence of a term when Keyword appears near it.
type ContextClue struct {
	Phrase      string // term text (any form) the clue applies to, case-insensitive
	Keyword     string
	Weight      float64 // multiplier applied when satisfied
	Position    Position
	MaxDistance int // bytes between the match and the keyword
}

// SpellingVariant pairs a British spelling fragment with its American form.
type SpellingVariant struct {
	British  string
	American string
}

// Vocabulary is the complete reference data set.
type Vocabulary struct {
	Terms          []*types.Term
	Specialties    []Specialty
	UrgentKeywords []string
	Settings       []SettingGroup
	Clues          []ContextClue
	Variants       []SpellingVariant
}

// Len returns the number of general terms.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Terms)
}

// Specialty returns the named specialty.
func (v *Vocabulary) Specialty(name string) (Specialty, bool) {
	for _, s := range v.Specialties {
		if s.Name == name {
			return s, true
		}
	}
	return Specialty{}, false
}

// CluesFor returns the clues registered for a term form.
func (v *Vocabulary) CluesFor(phrase string) []ContextClue {
	var out []ContextClue
	for _, c := range v.Clues {
		if strings.EqualFold(c.Phrase, phrase) {
			out = append(out, c)
		}
	}
	return out
}

type termKey struct {
	text     string
	category types.Category
}

// Merge combines vocabularies left to right. Terms sharing canonical text
// (case-insensitive) and category collapse into one: aliases and
// translations are unioned, the higher priority wins, and the flags are
// OR-ed. Domain tables are concatenated, with specialties of the same name
// merged.
func Merge(vocabs ...*Vocabulary) *Vocabulary {
	out := &Vocabulary{}
	terms := make(map[termKey]*types.Term)
	var order []termKey

	for _, v := range vocabs {
		if v == nil {
			continue
		}
		for _, t := range v.Terms {
			key := termKey{strings.ToLower(t.Text), t.Category}
			existing, ok := terms[key]
			if !ok {
				terms[key] = cloneTerm(t)
				order = append(order, key)
				continue
			}
			mergeTerm(existing, t)
		}

		for _, s := range v.Specialties {
			merged := false
			for i := range out.Specialties {
				if out.Specialties[i].Name == s.Name {
					out.Specialties[i].Keywords = unionStrings(out.Specialties[i].Keywords, s.Keywords)
					out.Specialties[i].Categories = unionCategories(out.Specialties[i].Categories, s.Categories)
					out.Specialties[i].Terms = append(out.Specialties[i].Terms, s.Terms...)
					merged = true
					break
				}
			}
			if !merged {
				out.Specialties = append(out.Specialties, Specialty{
					Name:       s.Name,
					Keywords:   append([]string(nil), s.Keywords...),
					Categories: append([]types.Category(nil), s.Categories...),
					Terms:      append([]*types.Term(nil), s.Terms...),
				})
			}
		}

		out.UrgentKeywords = unionStrings(out.UrgentKeywords, v.UrgentKeywords)
		out.Settings = append(out.Settings, v.Settings...)
		out.Clues = append(out.Clues, v.Clues...)
		out.Variants = append(out.Variants, v.Variants...)
	}

	out.Terms = make([]*types.Term, 0, len(order))
	for _, key := range order {
		out.Terms = append(out.Terms, terms[key])
	}
	return out
}

func cloneTerm(t *types.Term) *types.Term {
	c := *t
	c.Aliases = append([]string(nil), t.Aliases...)
	if t.Translations != nil {
		c.Translations = make(map[string]string, len(t.Translations))
		for k, v := range t.Translations {
			c.Translations[k] = v
		}
	}
	return &c
}

func mergeTerm(dst, src *types.Term) {
	if src.Priority > dst.Priority {
		dst.Priority = src.Priority
	}
	dst.Aliases = unionStrings(dst.Aliases, src.Aliases)
	dst.CaseSensitive = dst.CaseSensitive || src.CaseSensitive
	dst.PreserveExact = dst.PreserveExact || src.PreserveExact
	if dst.Specialty == "" {
		dst.Specialty = src.Specialty
	}
	for lang, tr := range src.Translations {
		if dst.Translations == nil {
			dst.Translations = make(map[string]string)
		}
		if _, ok := dst.Translations[lang]; !ok {
			dst.Translations[lang] = tr
		}
	}
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func unionCategories(a, b []types.Category) []types.Category {
	seen := make(map[types.Category]bool)
	var out []types.Category
	for _, c := range append(append([]types.Category(nil), a...), b...) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// SpecialtyNames returns the specialty names in sorted order.
func (v *Vocabulary) SpecialtyNames() []string {
	names := make([]string, 0, len(v.Specialties))
	for _, s := range v.Specialties {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}
