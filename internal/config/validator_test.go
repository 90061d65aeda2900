package config

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tserrors "github.com/standardbeagle/termshield/internal/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"defaults", func(*Config) {}, ""},
		{"fuzzy above one", func(c *Config) { c.Matching.FuzzyThreshold = 1.2 }, "matching.fuzzy_threshold"},
		{"fuzzy zero", func(c *Config) { c.Matching.FuzzyThreshold = 0 }, "matching.fuzzy_threshold"},
		{"partial negative", func(c *Config) { c.Matching.PartialThreshold = -0.1 }, "matching.partial_threshold"},
		{"negative margin", func(c *Config) { c.Matching.OverlapMargin = -1 }, "matching.overlap_margin"},
		{"empty similarity cache", func(c *Config) { c.Matching.SimilarityCacheSize = 0 }, "matching.similarity_cache_size"},
		{"zero chunk size", func(c *Config) { c.Orchestrator.ChunkSize = 0 }, "orchestrator.chunk_size"},
		{"overlap as large as chunk", func(c *Config) { c.Orchestrator.ChunkOverlap = c.Orchestrator.ChunkSize }, "orchestrator.chunk_overlap"},
		{"threshold below chunk size", func(c *Config) { c.Orchestrator.ChunkThreshold = 10 }, "orchestrator.chunk_threshold"},
		{"empty result cache", func(c *Config) { c.Orchestrator.ResultCacheSize = 0 }, "orchestrator.result_cache_size"},
		{"negative workers", func(c *Config) { c.Orchestrator.MaxWorkers = -1 }, "orchestrator.max_workers"},
		{"high confidence above one", func(c *Config) { c.Preservation.HighConfidence = 2 }, "preservation.high_confidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var cfgErr *tserrors.ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %T", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestWorkersDefaultsToGOMAXPROCS(t *testing.T) {
	o := Default().Orchestrator
	assert.Equal(t, runtime.GOMAXPROCS(0), o.Workers())
}
