package types

import (
	"fmt"
	"strings"
)

// Matching defaults shared by the engine, the orchestrator and the config layer.
const (
	DefaultFuzzyThreshold   = 0.85 // minimum composite similarity for a fuzzy hit
	DefaultPartialThreshold = 0.6  // minimum key/word length ratio for a partial hit
	DefaultOverlapMargin    = 0.20 // a later overlapping match must beat the kept one by this much

	DefaultSimilarityCacheSize = 10000
	DefaultResultCacheSize     = 128

	DefaultChunkThreshold = 10000 // documents at or above this many bytes are chunked
	DefaultChunkSize      = 5000
	DefaultChunkOverlap   = 200

	DefaultHighConfidence = 0.85 // HIGH priority terms are preserved at or above this confidence
)

// Category classifies a vocabulary term. The set is closed.
type Category string

const (
	CategoryCondition    Category = "condition"
	CategorySymptom      Category = "symptom"
	CategoryProcedure    Category = "procedure"
	CategoryMedication   Category = "medication"
	CategoryAnatomy      Category = "anatomy"
	CategoryLabTest      Category = "lab_test"
	CategoryAbbreviation Category = "abbreviation"
	CategoryDosage       Category = "dosage"
	CategoryDevice       Category = "device"
	CategorySpecialty    Category = "specialty"
)

var allCategories = []Category{
	CategoryCondition, CategorySymptom, CategoryProcedure, CategoryMedication,
	CategoryAnatomy, CategoryLabTest, CategoryAbbreviation, CategoryDosage,
	CategoryDevice, CategorySpecialty,
}

// Categories returns every known category in declaration order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts a string to a Category, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Priority orders terms by how important it is to keep them intact.
// Higher values win.
type Priority uint8

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", uint8(p))
	}
}

// ParsePriority converts "critical", "high", "medium" or "low" to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return PriorityCritical, nil
	case "high":
		return PriorityHigh, nil
	case "medium", "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(b []byte) error {
	parsed, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Term is a canonical vocabulary entry. Terms are built once when the
// vocabulary is loaded and must not be mutated afterwards; matches and
// indexes hold pointers to them.
type Term struct {
	Text          string
	Category      Category
	Priority      Priority
	Aliases       []string
	CaseSensitive bool
	PreserveExact bool
	Translations  map[string]string // target language -> translated form
	Specialty     string            // owning specialty, empty when general
}

// Forms returns the canonical text followed by every alias.
func (t *Term) Forms() []string {
	forms := make([]string, 0, len(t.Aliases)+1)
	forms = append(forms, t.Text)
	forms = append(forms, t.Aliases...)
	return forms
}

// Translation returns the term's translation for lang, if one exists.
func (t *Term) Translation(lang string) (string, bool) {
	if t == nil || t.Translations == nil {
		return "", false
	}
	tr, ok := t.Translations[strings.ToLower(lang)]
	if !ok || tr == "" {
		return "", false
	}
	return tr, true
}

// HasAlias reports whether alias is one of the term's registered aliases,
// compared literally.
func (t *Term) HasAlias(alias string) bool {
	for _, a := range t.Aliases {
		if a == alias {
			return true
		}
	}
	return false
}

func (t *Term) String() string {
	return fmt.Sprintf("Term{%q, %s, %s}", t.Text, t.Category, t.Priority)
}

// Clamp limits a confidence value to [0,1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
