package matching

import (
	"regexp"
	"strings"

	"github.com/surgebase/porter2"

	"github.com/standardbeagle/termshield/internal/debug"
	"github.com/standardbeagle/termshield/internal/index"
	"github.com/standardbeagle/termshield/internal/types"
	"github.com/standardbeagle/termshield/internal/vocabulary"
)

// Context weighting constants.
const (
	// specialties scoring above this count as dominant
	DominantSpecialtyScore = 0.3

	specialtyBonusRate = 0.2
	specialtyBonusCap  = 0.15
	emergencyBoost     = 1.05
)

// keyword is a context keyword prepared for matching. Literal keywords
// (all-caps, like "ER" or "OR") compare against raw tokens case-sensitively;
// the rest compare Porter2 stems so "cardiac" still finds "Cardiac" and
// "breathing" finds "breath".
type keyword struct {
	raw     string
	literal bool
	stems   string // space-joined stems
}

func newKeyword(s string) keyword {
	s = strings.TrimSpace(s)
	if isAbbreviationToken(s) {
		return keyword{raw: s, literal: true}
	}
	return keyword{raw: s, stems: stemJoin(Tokenize(s))}
}

type specialtyProfile struct {
	name       string
	keywords   []keyword
	categories map[types.Category]bool
	idx        *index.TermIndex // specialty-only vocabulary, nil when empty
}

type settingProfile struct {
	setting  types.Setting
	keywords []keyword
}

type clueProfile struct {
	clue vocabulary.ContextClue
	re   *regexp.Regexp
}

func (c *Catalog) buildContextTables() {
	for _, sp := range c.Vocab.Specialties {
		p := specialtyProfile{
			name:       sp.Name,
			categories: make(map[types.Category]bool, len(sp.Categories)),
		}
		for _, kw := range sp.Keywords {
			p.keywords = append(p.keywords, newKeyword(kw))
		}
		for _, cat := range sp.Categories {
			p.categories[cat] = true
		}
		if len(sp.Terms) > 0 {
			p.idx = index.New(sp.Terms)
		}
		c.specialties = append(c.specialties, p)
	}

	for _, kw := range c.Vocab.UrgentKeywords {
		c.urgent = append(c.urgent, newKeyword(kw))
	}

	for _, g := range c.Vocab.Settings {
		p := settingProfile{setting: g.Setting}
		for _, kw := range g.Keywords {
			p.keywords = append(p.keywords, newKeyword(kw))
		}
		c.settings = append(c.settings, p)
	}

	c.clues = make(map[string][]clueProfile)
	for _, cl := range c.Vocab.Clues {
		phrase := index.Fold(cl.Phrase)
		c.clues[phrase] = append(c.clues[phrase], clueProfile{clue: cl, re: index.CompileForm(cl.Keyword, false)})
	}
}

// textProfile is the stemmed view of a text used for keyword presence.
type textProfile struct {
	raw    map[string]bool
	stems  map[string]bool
	joined string // " stem stem ... "
}

func profileText(tokens []Token) textProfile {
	p := textProfile{
		raw:   make(map[string]bool, len(tokens)),
		stems: make(map[string]bool, len(tokens)),
	}
	var b strings.Builder
	b.WriteByte(' ')
	for _, tok := range tokens {
		p.raw[tok.Text] = true
		st := stem(tok.Text)
		p.stems[st] = true
		b.WriteString(st)
		b.WriteByte(' ')
	}
	p.joined = b.String()
	return p
}

func (p textProfile) has(kw keyword) bool {
	if kw.literal {
		return p.raw[kw.raw]
	}
	if kw.stems == "" {
		return false
	}
	if !strings.Contains(kw.stems, " ") {
		return p.stems[kw.stems]
	}
	return strings.Contains(p.joined, " "+kw.stems+" ")
}

func stem(word string) string {
	return porter2.Stem(strings.ToLower(word))
}

func stemJoin(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = stem(tok.Text)
	}
	return strings.Join(parts, " ")
}

// AnalyzeContext builds the domain profile of text: specialty scores (the
// fraction of each specialty's keywords present), urgency, the first
// clinical setting with a present keyword, and the conditions, procedures
// and medications found by the literal stage.
func (e *Engine) AnalyzeContext(text string) *types.MedicalContext {
	ctx := types.NewMedicalContext()
	s := newScan(text)
	p := profileText(s.Tokens)

	for _, sp := range e.cat.specialties {
		if len(sp.keywords) == 0 {
			continue
		}
		present := 0
		for _, kw := range sp.keywords {
			if p.has(kw) {
				present++
			}
		}
		ctx.Specialties[sp.name] = float64(present) / float64(len(sp.keywords))
	}

	for _, kw := range e.cat.urgent {
		if p.has(kw) {
			ctx.Urgency = types.UrgencyUrgent
			break
		}
	}

settings:
	for _, g := range e.cat.settings {
		for _, kw := range g.keywords {
			if p.has(kw) {
				ctx.Setting = g.setting
				break settings
			}
		}
	}

	seen := make(map[*types.Term]bool)
	for _, m := range e.resolve(e.collectLiteral(s)) {
		if seen[m.Term] {
			continue
		}
		seen[m.Term] = true
		switch m.Term.Category {
		case types.CategoryCondition:
			ctx.Conditions = append(ctx.Conditions, m.Term.Text)
		case types.CategoryProcedure:
			ctx.Procedures = append(ctx.Procedures, m.Term.Text)
		case types.CategoryMedication:
			ctx.Medications = append(ctx.Medications, m.Term.Text)
		}
	}

	return ctx
}

// FindContextualMatches runs the fuzzy pipeline, re-weights each match by
// the context profile and adds exact hits from the vocabularies of dominant
// specialties. A nil ctx is analysed from text.
func (e *Engine) FindContextualMatches(text string, ctx *types.MedicalContext) []types.Match {
	if ctx == nil {
		ctx = e.AnalyzeContext(text)
	}

	s := newScan(text)
	matches := e.resolve(e.collectApproximate(s))

	dominant := ctx.Dominant(DominantSpecialtyScore)
	for i := range matches {
		matches[i].Confidence = types.Clamp(matches[i].Confidence * e.contextFactor(text, matches[i], ctx, dominant))
	}

	extra := e.specialtyMatches(s, dominant)
	if len(extra) > 0 {
		debug.LogMatch("specialty vocabulary: %d contextual candidates\n", len(extra))
	}
	return e.resolve(append(matches, extra...))
}

// contextFactor combines the specialty bonus, satisfied clues and the
// emergency boost into one multiplier.
func (e *Engine) contextFactor(text string, m types.Match, ctx *types.MedicalContext, dominant []types.SpecialtyScore) float64 {
	factor := 1.0
	if m.Term == nil {
		return factor
	}

	// Specialties are sorted by score, so the first aligned one is the best
	for _, d := range dominant {
		if m.Term.Specialty == d.Name || e.cat.alignsWith(d.Name, m.Term.Category) {
			bonus := d.Score * specialtyBonusRate
			if bonus > specialtyBonusCap {
				bonus = specialtyBonusCap
			}
			factor *= 1 + bonus
			break
		}
	}

	seen := make(map[string]bool, len(m.Term.Aliases)+1)
	for _, form := range m.Term.Forms() {
		key := index.Fold(form)
		if seen[key] {
			continue
		}
		seen[key] = true
		for _, cp := range e.cat.clues[key] {
			if clueSatisfied(text, m, cp) {
				factor *= cp.clue.Weight
			}
		}
	}

	if ctx.Setting == types.SettingEmergency && m.Term.Priority == types.PriorityCritical {
		factor *= emergencyBoost
	}
	return factor
}

func (c *Catalog) alignsWith(specialty string, cat types.Category) bool {
	for _, sp := range c.specialties {
		if sp.name == specialty {
			return sp.categories[cat]
		}
	}
	return false
}

// clueSatisfied reports whether the clue keyword occurs, on a word boundary,
// within MaxDistance bytes on the allowed side of the match.
func clueSatisfied(text string, m types.Match, cp clueProfile) bool {
	dist := cp.clue.MaxDistance
	var windows [][2]int
	switch cp.clue.Position {
	case vocabulary.PositionBefore:
		windows = [][2]int{{m.Start - dist, m.Start}}
	case vocabulary.PositionAfter:
		windows = [][2]int{{m.End, m.End + dist}}
	default:
		windows = [][2]int{{m.Start - dist, m.Start}, {m.End, m.End + dist}}
	}

	for _, w := range windows {
		lo, hi := w[0], w[1]
		if lo < 0 {
			lo = 0
		}
		if hi > len(text) {
			hi = len(text)
		}
		if lo >= hi {
			continue
		}
		for _, loc := range cp.re.FindAllStringIndex(text[lo:hi], -1) {
			if index.AtWordBoundary(text, lo+loc[0], lo+loc[1]) {
				return true
			}
		}
	}
	return false
}

// specialtyMatches searches the own vocabulary of every dominant specialty
// with the literal passes only and relabels the hits as contextual.
func (e *Engine) specialtyMatches(s *Scan, dominant []types.SpecialtyScore) []types.Match {
	var out []types.Match
	for _, d := range dominant {
		sp := e.cat.specialty(d.Name)
		if sp == nil || sp.idx == nil {
			continue
		}
		sc := &Scan{Text: s.Text, Tokens: s.Tokens, ExactHit: make([]bool, len(s.Tokens))}
		passes := []Strategy{
			&exactStrategy{idx: sp.idx},
			&multiWordStrategy{idx: sp.idx},
			&abbreviationStrategy{idx: sp.idx},
		}
		for _, st := range passes {
			for _, m := range st.Find(sc) {
				m.Kind = types.MatchContextual
				m.Confidence = types.MatchContextual.Adjust(1)
				out = append(out, m)
			}
		}
	}
	return out
}

func (c *Catalog) specialty(name string) *specialtyProfile {
	for i := range c.specialties {
		if c.specialties[i].name == name {
			return &c.specialties[i]
		}
	}
	return nil
}
