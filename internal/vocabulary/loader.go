package vocabulary

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/termshield/internal/debug"
	tserrors "github.com/standardbeagle/termshield/internal/errors"
	"github.com/standardbeagle/termshield/internal/types"
)

// fileVocabulary is the on-disk schema shared by the TOML, YAML and JSON
// formats.
type fileVocabulary struct {
	Terms          []fileTerm      `toml:"terms" yaml:"terms" json:"terms"`
	Specialties    []fileSpecialty `toml:"specialties" yaml:"specialties" json:"specialties"`
	UrgentKeywords []string        `toml:"urgent_keywords" yaml:"urgent_keywords" json:"urgent_keywords"`
	Settings       []fileSetting   `toml:"settings" yaml:"settings" json:"settings"`
	Clues          []fileClue      `toml:"clues" yaml:"clues" json:"clues"`
	Variants       []fileVariant   `toml:"variants" yaml:"variants" json:"variants"`
}

type fileTerm struct {
	Text          string            `toml:"text" yaml:"text" json:"text"`
	Category      string            `toml:"category" yaml:"category" json:"category"`
	Priority      string            `toml:"priority" yaml:"priority" json:"priority"`
	Aliases       []string          `toml:"aliases" yaml:"aliases" json:"aliases"`
	CaseSensitive bool              `toml:"case_sensitive" yaml:"case_sensitive" json:"case_sensitive"`
	PreserveExact bool              `toml:"preserve_exact" yaml:"preserve_exact" json:"preserve_exact"`
	Translations  map[string]string `toml:"translations" yaml:"translations" json:"translations"`
	Specialty     string            `toml:"specialty" yaml:"specialty" json:"specialty"`
}

type fileSpecialty struct {
	Name       string     `toml:"name" yaml:"name" json:"name"`
	Keywords   []string   `toml:"keywords" yaml:"keywords" json:"keywords"`
	Categories []string   `toml:"categories" yaml:"categories" json:"categories"`
	Terms      []fileTerm `toml:"terms" yaml:"terms" json:"terms"`
}

type fileSetting struct {
	Setting  string   `toml:"setting" yaml:"setting" json:"setting"`
	Keywords []string `toml:"keywords" yaml:"keywords" json:"keywords"`
}

type fileClue struct {
	Phrase      string  `toml:"phrase" yaml:"phrase" json:"phrase"`
	Keyword     string  `toml:"keyword" yaml:"keyword" json:"keyword"`
	Weight      float64 `toml:"weight" yaml:"weight" json:"weight"`
	Position    string  `toml:"position" yaml:"position" json:"position"`
	MaxDistance int     `toml:"max_distance" yaml:"max_distance" json:"max_distance"`
}

type fileVariant struct {
	British  string `toml:"british" yaml:"british" json:"british"`
	American string `toml:"american" yaml:"american" json:"american"`
}

// defaultClueDistance applies when a clue omits max_distance.
const defaultClueDistance = 100

// LoadFile reads one vocabulary file. The format follows the extension:
// .toml, .yaml/.yml or .json.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tserrors.NewVocabularyError(path, err)
	}
	return Parse(path, data)
}

// LoadGlob loads and merges every file in fsys matching the doublestar
// pattern, in lexical order. Failures are collected so one bad file reports
// alongside the others instead of hiding them.
func LoadGlob(fsys fs.FS, pattern string) (*Vocabulary, error) {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, tserrors.NewVocabularyError(pattern, err)
	}
	sort.Strings(matches)

	var (
		loaded []*Vocabulary
		errs   []error
	)
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			errs = append(errs, tserrors.NewVocabularyError(name, err))
			continue
		}
		v, err := Parse(name, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		loaded = append(loaded, v)
	}

	if err := tserrors.NewMultiError(errs).ErrorOrNil(); err != nil {
		return nil, err
	}
	debug.LogIndex("loaded %d vocabulary files for %q\n", len(loaded), pattern)
	return Merge(loaded...), nil
}

// LoadPaths resolves each pattern under baseDir and merges the results,
// optionally on top of the built-in vocabulary.
func LoadPaths(baseDir string, patterns []string, builtin bool) (*Vocabulary, error) {
	var parts []*Vocabulary
	if builtin {
		parts = append(parts, Default())
	}

	fsys := os.DirFS(baseDir)
	var errs []error
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, tserrors.NewVocabularyError(pattern, fmt.Errorf("invalid glob pattern")))
			continue
		}
		v, err := LoadGlob(fsys, pattern)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		parts = append(parts, v)
	}
	if err := tserrors.NewMultiError(errs).ErrorOrNil(); err != nil {
		return nil, err
	}
	return Merge(parts...), nil
}

// Parse decodes vocabulary data; name selects the format by extension and
// labels errors.
func Parse(name string, data []byte) (*Vocabulary, error) {
	var fv fileVocabulary
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		err = toml.Unmarshal(data, &fv)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fv)
	case ".json":
		err = json.Unmarshal(data, &fv)
	default:
		err = fmt.Errorf("unsupported vocabulary format %q", filepath.Ext(name))
	}
	if err != nil {
		return nil, tserrors.NewVocabularyError(name, err)
	}

	return fv.convert(name)
}

func (fv *fileVocabulary) convert(name string) (*Vocabulary, error) {
	v := &Vocabulary{
		UrgentKeywords: fv.UrgentKeywords,
	}

	for _, ft := range fv.Terms {
		t, err := ft.convert(name)
		if err != nil {
			return nil, err
		}
		v.Terms = append(v.Terms, t)
	}

	for _, fs := range fv.Specialties {
		if fs.Name == "" {
			return nil, tserrors.NewVocabularyError(name, fmt.Errorf("specialty without a name"))
		}
		s := Specialty{Name: fs.Name, Keywords: fs.Keywords}
		for _, c := range fs.Categories {
			cat, err := types.ParseCategory(c)
			if err != nil {
				return nil, tserrors.NewVocabularyError(name, err).WithEntry(fs.Name)
			}
			s.Categories = append(s.Categories, cat)
		}
		for _, ft := range fs.Terms {
			if ft.Specialty == "" {
				ft.Specialty = fs.Name
			}
			t, err := ft.convert(name)
			if err != nil {
				return nil, err
			}
			s.Terms = append(s.Terms, t)
		}
		v.Specialties = append(v.Specialties, s)
	}

	for _, fsg := range fv.Settings {
		setting, err := parseSetting(fsg.Setting)
		if err != nil {
			return nil, tserrors.NewVocabularyError(name, err).WithEntry(fsg.Setting)
		}
		v.Settings = append(v.Settings, SettingGroup{Setting: setting, Keywords: fsg.Keywords})
	}

	for _, fc := range fv.Clues {
		clue, err := fc.convert()
		if err != nil {
			return nil, tserrors.NewVocabularyError(name, err).WithEntry(fc.Phrase)
		}
		v.Clues = append(v.Clues, clue)
	}

	for _, fvar := range fv.Variants {
		if fvar.British == "" || fvar.American == "" {
			return nil, tserrors.NewVocabularyError(name, fmt.Errorf("spelling variant needs both forms"))
		}
		v.Variants = append(v.Variants, SpellingVariant{
			British:  strings.ToLower(fvar.British),
			American: strings.ToLower(fvar.American),
		})
	}

	return v, nil
}

func (ft fileTerm) convert(name string) (*types.Term, error) {
	if strings.TrimSpace(ft.Text) == "" {
		return nil, tserrors.NewVocabularyError(name, fmt.Errorf("term without text"))
	}
	cat, err := types.ParseCategory(ft.Category)
	if err != nil {
		return nil, tserrors.NewVocabularyError(name, err).WithEntry(ft.Text)
	}
	prio, err := types.ParsePriority(ft.Priority)
	if err != nil {
		return nil, tserrors.NewVocabularyError(name, err).WithEntry(ft.Text)
	}

	var translations map[string]string
	if len(ft.Translations) > 0 {
		translations = make(map[string]string, len(ft.Translations))
		for lang, tr := range ft.Translations {
			translations[strings.ToLower(lang)] = tr
		}
	}

	return &types.Term{
		Text:          strings.TrimSpace(ft.Text),
		Category:      cat,
		Priority:      prio,
		Aliases:       ft.Aliases,
		CaseSensitive: ft.CaseSensitive,
		PreserveExact: ft.PreserveExact,
		Translations:  translations,
		Specialty:     ft.Specialty,
	}, nil
}

func (fc fileClue) convert() (ContextClue, error) {
	if fc.Phrase == "" || fc.Keyword == "" {
		return ContextClue{}, fmt.Errorf("clue needs phrase and keyword")
	}
	if fc.Weight <= 0 {
		return ContextClue{}, fmt.Errorf("clue weight must be positive, got %v", fc.Weight)
	}
	pos := Position(strings.ToLower(fc.Position))
	switch pos {
	case "":
		pos = PositionAnywhere
	case PositionBefore, PositionAfter, PositionAnywhere:
	default:
		return ContextClue{}, fmt.Errorf("unknown clue position %q", fc.Position)
	}
	dist := fc.MaxDistance
	if dist <= 0 {
		dist = defaultClueDistance
	}
	return ContextClue{
		Phrase:      fc.Phrase,
		Keyword:     fc.Keyword,
		Weight:      fc.Weight,
		Position:    pos,
		MaxDistance: dist,
	}, nil
}

func parseSetting(s string) (types.Setting, error) {
	switch types.Setting(strings.ToLower(s)) {
	case types.SettingEmergency:
		return types.SettingEmergency, nil
	case types.SettingICU:
		return types.SettingICU, nil
	case types.SettingSurgical:
		return types.SettingSurgical, nil
	case types.SettingInpatient:
		return types.SettingInpatient, nil
	case types.SettingOutpatient:
		return types.SettingOutpatient, nil
	default:
		return "", fmt.Errorf("unknown clinical setting %q", s)
	}
}
