package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/termshield/internal/types"
)

// DefaultConfigFile is the file name Load looks for in a project directory.
const DefaultConfigFile = ".termshield.kdl"

type Config struct {
	Version      int
	Matching     Matching
	Orchestrator Orchestrator
	Preservation Preservation
	Vocabulary   Vocabulary
}

// Matching tunes the strategy pipeline. The thresholds are empirical and
// exposed so deployments can calibrate them.
type Matching struct {
	FuzzyThreshold      float64 // minimum composite similarity for fuzzy hits (default 0.85)
	PartialThreshold    float64 // minimum key/word length ratio for partial hits (default 0.6)
	OverlapMargin       float64 // relative margin a later overlapping match needs to replace a kept one (default 0.2)
	EnableFuzzy         bool
	EnableContext       bool
	SimilarityCacheSize int // memoized similarity pairs per engine
}

type Orchestrator struct {
	ChunkThreshold  int // documents at or above this many bytes are chunked
	ChunkSize       int
	ChunkOverlap    int
	ResultCacheSize int // whole-document results kept, oldest evicted first
	MaxWorkers      int // 0 = GOMAXPROCS
}

type Preservation struct {
	HighConfidence float64 // HIGH priority terms are preserved at or above this confidence
}

type Vocabulary struct {
	UseBuiltin bool
	Paths      []string // doublestar patterns, relative to BaseDir
	BaseDir    string
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Version: 1,
		Matching: Matching{
			FuzzyThreshold:      types.DefaultFuzzyThreshold,
			PartialThreshold:    types.DefaultPartialThreshold,
			OverlapMargin:       types.DefaultOverlapMargin,
			EnableFuzzy:         true,
			EnableContext:       true,
			SimilarityCacheSize: types.DefaultSimilarityCacheSize,
		},
		Orchestrator: Orchestrator{
			ChunkThreshold:  types.DefaultChunkThreshold,
			ChunkSize:       types.DefaultChunkSize,
			ChunkOverlap:    types.DefaultChunkOverlap,
			ResultCacheSize: types.DefaultResultCacheSize,
		},
		Preservation: Preservation{
			HighConfidence: types.DefaultHighConfidence,
		},
		Vocabulary: Vocabulary{
			UseBuiltin: true,
			BaseDir:    ".",
		},
	}
}

// Load reads configuration from path. A missing file yields the defaults; a
// present file is parsed, then validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := parseKDL(string(data))
	if err != nil {
		return nil, err
	}

	// Vocabulary patterns are relative to the directory holding the config file
	if !filepath.IsAbs(cfg.Vocabulary.BaseDir) {
		cfg.Vocabulary.BaseDir = filepath.Clean(filepath.Join(filepath.Dir(path), cfg.Vocabulary.BaseDir))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
