package config

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"

	tserrors "github.com/standardbeagle/termshield/internal/errors"
)

// Validate checks every section and returns the first problem as a
// *errors.ConfigError naming the offending field.
func (c *Config) Validate() error {
	if err := validateMatching(&c.Matching); err != nil {
		return err
	}
	if err := validateOrchestrator(&c.Orchestrator); err != nil {
		return err
	}
	if err := validateUnit("preservation.high_confidence", c.Preservation.HighConfidence); err != nil {
		return err
	}
	return nil
}

func validateMatching(m *Matching) error {
	if err := validateUnit("matching.fuzzy_threshold", m.FuzzyThreshold); err != nil {
		return err
	}
	if m.FuzzyThreshold == 0 {
		return tserrors.NewConfigError("matching.fuzzy_threshold", "0", errors.New("must be greater than zero"))
	}
	if err := validateUnit("matching.partial_threshold", m.PartialThreshold); err != nil {
		return err
	}
	if m.OverlapMargin < 0 {
		return tserrors.NewConfigError("matching.overlap_margin", formatFloat(m.OverlapMargin), errors.New("must not be negative"))
	}
	if m.SimilarityCacheSize <= 0 {
		return tserrors.NewConfigError("matching.similarity_cache_size", strconv.Itoa(m.SimilarityCacheSize), errors.New("must be positive"))
	}
	return nil
}

func validateOrchestrator(o *Orchestrator) error {
	if o.ChunkSize <= 0 {
		return tserrors.NewConfigError("orchestrator.chunk_size", strconv.Itoa(o.ChunkSize), errors.New("must be positive"))
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		return tserrors.NewConfigError("orchestrator.chunk_overlap", strconv.Itoa(o.ChunkOverlap),
			fmt.Errorf("must be within [0,%d)", o.ChunkSize))
	}
	if o.ChunkThreshold < o.ChunkSize {
		return tserrors.NewConfigError("orchestrator.chunk_threshold", strconv.Itoa(o.ChunkThreshold),
			fmt.Errorf("must be at least chunk_size (%d)", o.ChunkSize))
	}
	if o.ResultCacheSize <= 0 {
		return tserrors.NewConfigError("orchestrator.result_cache_size", strconv.Itoa(o.ResultCacheSize), errors.New("must be positive"))
	}
	if o.MaxWorkers < 0 {
		return tserrors.NewConfigError("orchestrator.max_workers", strconv.Itoa(o.MaxWorkers), errors.New("must not be negative"))
	}
	return nil
}

func validateUnit(field string, v float64) error {
	if v < 0 || v > 1 {
		return tserrors.NewConfigError(field, formatFloat(v), errors.New("must be within [0,1]"))
	}
	return nil
}

// Workers resolves MaxWorkers, falling back to GOMAXPROCS.
func (o Orchestrator) Workers() int {
	if o.MaxWorkers > 0 {
		return o.MaxWorkers
	}
	return runtime.GOMAXPROCS(0)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
