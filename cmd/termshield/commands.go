package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/termshield/internal/matching"
	"github.com/standardbeagle/termshield/internal/orchestrator"
	"github.com/standardbeagle/termshield/internal/preservation"
	"github.com/standardbeagle/termshield/internal/types"
)

// matchOutput is the JSON shape of one match.
type matchOutput struct {
	Text       string          `json:"text"`
	Term       string          `json:"term"`
	Category   types.Category  `json:"category"`
	Priority   types.Priority  `json:"priority"`
	Kind       types.MatchKind `json:"kind"`
	Confidence float64         `json:"confidence"`
	Start      int             `json:"start"`
	End        int             `json:"end"`
	Variant    string          `json:"variant,omitempty"`
	Context    string          `json:"context,omitempty"`
}

func toOutput(ms []types.Match) []matchOutput {
	out := make([]matchOutput, 0, len(ms))
	for _, m := range ms {
		out = append(out, matchOutput{
			Text:       m.Text,
			Term:       m.Term.Text,
			Category:   m.Term.Category,
			Priority:   m.Term.Priority,
			Kind:       m.Kind,
			Confidence: m.Confidence,
			Start:      m.Start,
			End:        m.End,
			Variant:    m.Variant,
			Context:    m.Context,
		})
	}
	return out
}

func writeMatches(c *cli.Context, w io.Writer, ms []types.Match) error {
	if wantJSON(c) {
		return writeJSON(w, toOutput(ms))
	}
	if len(ms) == 0 {
		_, err := fmt.Fprintln(w, "No matches")
		return err
	}
	for _, m := range ms {
		if _, err := fmt.Fprintf(w, "[%d,%d)\t%-12s\t%.3f\t%q -> %s (%s, %s)\n",
			m.Start, m.End, m.Kind, m.Confidence, m.Text, m.Term.Text, m.Term.Category, m.Term.Priority); err != nil {
			return err
		}
	}
	return nil
}

func matchCommand(c *cli.Context) error {
	if c.Bool("watch") {
		return watchCommand(c)
	}

	o, _, err := newOrchestrator(c)
	if err != nil {
		return err
	}
	text, err := readInput(c)
	if err != nil {
		return err
	}

	matches, err := o.FindMatchesContext(c.Context, text)
	if err != nil {
		return err
	}
	if err := writeMatches(c, c.App.Writer, matches); err != nil {
		return err
	}
	return printStats(c, o)
}

// contextOutput is the JSON shape of an analysed context.
type contextOutput struct {
	Specialties []types.SpecialtyScore `json:"specialties"`
	Dominant    []string               `json:"dominant"`
	Urgency     types.Urgency          `json:"urgency"`
	Setting     types.Setting          `json:"setting"`
	Conditions  []string               `json:"conditions"`
	Procedures  []string               `json:"procedures"`
	Medications []string               `json:"medications"`
}

func contextCommand(c *cli.Context) error {
	o, _, err := newOrchestrator(c)
	if err != nil {
		return err
	}
	text, err := readInput(c)
	if err != nil {
		return err
	}

	mctx := o.AnalyzeContext(text)
	out := contextOutput{
		Specialties: mctx.Dominant(0),
		Urgency:     mctx.Urgency,
		Setting:     mctx.Setting,
		Conditions:  mctx.Conditions,
		Procedures:  mctx.Procedures,
		Medications: mctx.Medications,
	}
	for _, d := range mctx.Dominant(matching.DominantSpecialtyScore) {
		out.Dominant = append(out.Dominant, d.Name)
	}

	if wantJSON(c) {
		return writeJSON(c.App.Writer, out)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Urgency:      %s\n", out.Urgency)
	fmt.Fprintf(w, "Setting:      %s\n", out.Setting)
	fmt.Fprintf(w, "Dominant:     %s\n", joinOrNone(out.Dominant))
	for _, s := range out.Specialties {
		fmt.Fprintf(w, "  %-18s %.2f\n", s.Name, s.Score)
	}
	fmt.Fprintf(w, "Conditions:   %s\n", joinOrNone(out.Conditions))
	fmt.Fprintf(w, "Procedures:   %s\n", joinOrNone(out.Procedures))
	fmt.Fprintf(w, "Medications:  %s\n", joinOrNone(out.Medications))
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func prepareCommand(c *cli.Context) error {
	o, cfg, err := newOrchestrator(c)
	if err != nil {
		return err
	}
	text, err := readInput(c)
	if err != nil {
		return err
	}

	p := preservation.New(o, preservation.WithHighConfidence(cfg.Preservation.HighConfidence))
	prep := p.Prepare(text, c.String("source"), c.String("target"))

	w := c.App.Writer
	if out := c.String("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	if err := writeJSON(w, prep); err != nil {
		return err
	}
	return printStats(c, o)
}

// errRestoreWarnings is returned by restore --strict.
var errRestoreWarnings = errors.New("restoration produced warnings")

func restoreCommand(c *cli.Context) error {
	data, err := os.ReadFile(c.String("prepared"))
	if err != nil {
		return fmt.Errorf("failed to read prepared document: %w", err)
	}
	var prep preservation.Prepared
	if err := json.Unmarshal(data, &prep); err != nil {
		return fmt.Errorf("failed to parse prepared document: %w", err)
	}

	translated, err := readInput(c)
	if err != nil {
		return err
	}

	restored := preservation.Restore(translated, prep.Map, !c.Bool("original"))
	if wantJSON(c) {
		if err := writeJSON(c.App.Writer, restored); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprint(c.App.Writer, restored.Text); err != nil {
			return err
		}
		for _, w := range restored.Warnings {
			fmt.Fprintf(c.App.ErrWriter, "warning: %s\n", w)
		}
	}

	if c.Bool("strict") && len(restored.Warnings) > 0 {
		return fmt.Errorf("%w: %d", errRestoreWarnings, len(restored.Warnings))
	}
	return nil
}

// vocabSummary is the JSON shape of the vocab command.
type vocabSummary struct {
	Terms       int                    `json:"terms"`
	ByCategory  map[types.Category]int `json:"by_category"`
	ByPriority  map[string]int         `json:"by_priority"`
	Specialties []string               `json:"specialties"`
	Clues       int                    `json:"clues"`
	Variants    int                    `json:"variants"`
	Languages   []string               `json:"languages"`
}

func vocabCommand(c *cli.Context) error {
	o, _, err := newOrchestrator(c)
	if err != nil {
		return err
	}
	vocab := o.Catalog().Vocab

	s := vocabSummary{
		Terms:       vocab.Len(),
		ByCategory:  make(map[types.Category]int),
		ByPriority:  make(map[string]int),
		Specialties: vocab.SpecialtyNames(),
		Clues:       len(vocab.Clues),
		Variants:    len(vocab.Variants),
	}
	langs := make(map[string]bool)
	for _, t := range vocab.Terms {
		s.ByCategory[t.Category]++
		s.ByPriority[t.Priority.String()]++
		for lang := range t.Translations {
			langs[lang] = true
		}
	}
	for lang := range langs {
		s.Languages = append(s.Languages, lang)
	}
	sort.Strings(s.Languages)

	if wantJSON(c) {
		return writeJSON(c.App.Writer, s)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Terms:        %d\n", s.Terms)
	for _, cat := range types.Categories() {
		if n := s.ByCategory[cat]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat, n)
		}
	}
	for _, p := range []types.Priority{types.PriorityCritical, types.PriorityHigh, types.PriorityMedium, types.PriorityLow} {
		fmt.Fprintf(w, "  %-14s %d\n", p, s.ByPriority[p.String()])
	}
	fmt.Fprintf(w, "Specialties:  %s\n", joinOrNone(s.Specialties))
	fmt.Fprintf(w, "Clues:        %d\n", s.Clues)
	fmt.Fprintf(w, "Variants:     %d\n", s.Variants)
	fmt.Fprintf(w, "Languages:    %s\n", joinOrNone(s.Languages))
	return nil
}

var _ preservation.Matcher = (*orchestrator.Orchestrator)(nil)
