package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 0.85, cfg.Matching.FuzzyThreshold)
	assert.Equal(t, 0.6, cfg.Matching.PartialThreshold)
	assert.Equal(t, 0.2, cfg.Matching.OverlapMargin)
	assert.True(t, cfg.Matching.EnableFuzzy)
	assert.True(t, cfg.Matching.EnableContext)
	assert.Equal(t, 10000, cfg.Orchestrator.ChunkThreshold)
	assert.Equal(t, 5000, cfg.Orchestrator.ChunkSize)
	assert.Equal(t, 200, cfg.Orchestrator.ChunkOverlap)
	assert.True(t, cfg.Vocabulary.UseBuiltin)
	assert.NoError(t, cfg.Validate())
}

func TestParseKDL_Overrides(t *testing.T) {
	kdlContent := `
matching {
    fuzzy_threshold 0.9
    partial_threshold 0.7
    overlap_margin 0.25
    enable_fuzzy false
    similarity_cache_size 500
}
orchestrator {
    chunk_threshold 20000
    chunk_size 4000
    chunk_overlap 100
    result_cache_size 16
    max_workers 2
}
preservation {
    high_confidence 0.9
}
vocabulary {
    builtin false
    paths "vocab/**/*.toml" "extra.yaml"
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Matching.FuzzyThreshold)
	assert.Equal(t, 0.7, cfg.Matching.PartialThreshold)
	assert.Equal(t, 0.25, cfg.Matching.OverlapMargin)
	assert.False(t, cfg.Matching.EnableFuzzy)
	assert.True(t, cfg.Matching.EnableContext, "unset keys keep their defaults")
	assert.Equal(t, 500, cfg.Matching.SimilarityCacheSize)

	assert.Equal(t, 20000, cfg.Orchestrator.ChunkThreshold)
	assert.Equal(t, 4000, cfg.Orchestrator.ChunkSize)
	assert.Equal(t, 100, cfg.Orchestrator.ChunkOverlap)
	assert.Equal(t, 16, cfg.Orchestrator.ResultCacheSize)
	assert.Equal(t, 2, cfg.Orchestrator.Workers())

	assert.Equal(t, 0.9, cfg.Preservation.HighConfidence)

	assert.False(t, cfg.Vocabulary.UseBuiltin)
	assert.Equal(t, []string{"vocab/**/*.toml", "extra.yaml"}, cfg.Vocabulary.Paths)
}

func TestParseKDL_IntegerAsFloat(t *testing.T) {
	cfg, err := parseKDL("matching { fuzzy_threshold 1 }")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Matching.FuzzyThreshold)
}

func TestParseKDL_InvalidSyntax(t *testing.T) {
	_, err := parseKDL("matching { fuzzy_threshold")
	assert.Error(t, err)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.kdl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ResolvesBaseDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`vocabulary { base_dir "vocab" }`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vocab"), cfg.Vocabulary.BaseDir)
}

func TestLoad_RejectsInvalidThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`matching { fuzzy_threshold 1.5 }`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matching.fuzzy_threshold")
}
