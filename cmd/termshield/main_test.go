package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/termshield/internal/debug"
	"github.com/standardbeagle/termshield/internal/preservation"
	"github.com/standardbeagle/termshield/internal/security"
	"github.com/standardbeagle/termshield/internal/version"
)

const testVocab = `
[[terms]]
text = "chest pain"
category = "symptom"
priority = "high"
translations = { es = "dolor torácico" }

[[terms]]
text = "Amoxicillin"
category = "medication"
priority = "high"
aliases = ["amoxicillin"]
translations = { es = "amoxicilina" }

[[terms]]
text = "twice daily"
category = "abbreviation"
priority = "medium"
aliases = ["BID"]

[[terms]]
text = "Warfarin"
category = "medication"
priority = "critical"
`

const exampleNote = "Patient has chest pain and was given 500mg of Amoxicillin BID"

// setupWorkspace writes the test vocabulary into a fresh working directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vocab.toml"), []byte(testVocab), 0o644))
	t.Chdir(dir)
	return dir
}

// run executes the CLI in-process with the workspace vocabulary loaded and
// the built-in vocabulary disabled.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(strings.NewReader(stdin), &stdout, &stderr)
	full := append([]string{"termshield", "--config", "missing.kdl", "--no-builtin", "--vocab", "vocab.toml"}, args...)
	err := app.Run(full)
	return stdout.String(), stderr.String(), err
}

func TestMatchJSON(t *testing.T) {
	setupWorkspace(t)

	out, _, err := run(t, exampleNote, "--format", "json", "match")
	require.NoError(t, err)

	var got []matchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "chest pain", got[0].Term)
	assert.Equal(t, 12, got[0].Start)
	assert.Equal(t, 22, got[0].End)
	assert.Equal(t, "Amoxicillin", got[1].Term)
	assert.Equal(t, "BID", got[2].Text)
	assert.Equal(t, "twice daily", got[2].Term)
}

func TestMatchTextFromFile(t *testing.T) {
	dir := setupWorkspace(t)
	note := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(note, []byte("no vocabulary here"), 0o644))

	out, stderr, err := run(t, "", "--stats", "match", note)
	require.NoError(t, err)
	assert.Equal(t, "No matches\n", out)
	assert.Contains(t, stderr, "Documents")
}

func TestPrepareRestoreRoundTrip(t *testing.T) {
	dir := setupWorkspace(t)
	prepPath := filepath.Join(dir, "prepared.json")

	_, _, err := run(t, exampleNote, "prepare", "--target", "es", "--out", prepPath)
	require.NoError(t, err)

	data, err := os.ReadFile(prepPath)
	require.NoError(t, err)
	var prep preservation.Prepared
	require.NoError(t, json.Unmarshal(data, &prep))
	require.Len(t, prep.Map, 3)
	assert.Equal(t, "es", prep.Target)
	assert.NotContains(t, prep.Text, "Amoxicillin")

	out, stderr, err := run(t, prep.Text, "restore", "--prepared", prepPath)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, "Patient has dolor torácico and was given 500mg of amoxicilina BID", out)

	out, _, err = run(t, prep.Text, "restore", "--prepared", prepPath, "--original")
	require.NoError(t, err)
	assert.Equal(t, exampleNote, out)
}

func TestRestoreStrict(t *testing.T) {
	dir := setupWorkspace(t)
	prepPath := filepath.Join(dir, "prepared.json")

	_, _, err := run(t, "Continue Warfarin", "prepare", "-t", "es", "-o", prepPath)
	require.NoError(t, err)

	// the translator dropped every placeholder
	out, stderr, err := run(t, "Continuar", "restore", "-p", prepPath)
	require.NoError(t, err)
	assert.Equal(t, "Continuar", out)
	assert.Contains(t, stderr, "missing_placeholder")
	assert.Contains(t, stderr, "critical_missing")

	_, _, err = run(t, "Continuar", "restore", "-p", prepPath, "--strict")
	require.ErrorIs(t, err, errRestoreWarnings)
}

func TestVocabSummary(t *testing.T) {
	setupWorkspace(t)

	out, _, err := run(t, "", "-f", "json", "vocab")
	require.NoError(t, err)

	var s vocabSummary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 4, s.Terms)
	assert.Equal(t, 2, s.ByCategory["medication"])
	assert.Equal(t, 1, s.ByPriority["critical"])
	assert.Equal(t, []string{"es"}, s.Languages)
}

func TestContextCommand(t *testing.T) {
	setupWorkspace(t)

	out, _, err := run(t, exampleNote, "context")
	require.NoError(t, err)
	assert.Contains(t, out, "Urgency:      routine")
	assert.Contains(t, out, "Setting:      unknown")
}

func TestInvalidInvocations(t *testing.T) {
	setupWorkspace(t)

	_, _, err := run(t, exampleNote, "--format", "xml", "match")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = run(t, exampleNote, "--threshold", "1.5", "match")
	assert.Error(t, err)

	_, _, err = run(t, "", "match", "does-not-exist.txt")
	assert.ErrorContains(t, err, "does-not-exist.txt")

	_, _, err = run(t, "%PDF-1.7 binary", "match")
	assert.ErrorIs(t, err, security.ErrBinary)

	_, _, err = run(t, exampleNote, "--max-bytes", "10", "match")
	assert.ErrorIs(t, err, security.ErrTooLarge)

	_, _, err = run(t, "", "match", "--watch")
	assert.ErrorContains(t, err, "needs a document path")
}

func TestVersionCommand(t *testing.T) {
	setupWorkspace(t)

	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.Version)
}

func TestExecuteLogsFatalErrors(t *testing.T) {
	dir := setupWorkspace(t)
	logs := filepath.Join(dir, "logs")
	t.Setenv(debug.EnvVar, "")
	t.Cleanup(debug.Reset)

	var stdout, stderr bytes.Buffer
	code := execute([]string{
		"termshield", "--config", "missing.kdl", "--no-builtin", "--vocab", "vocab.toml",
		"--debug", "--debug-dir", logs, "match", "does-not-exist.txt",
	}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "debug log: ")
	assert.Contains(t, stderr.String(), "fatal error: ")
	assert.Contains(t, stderr.String(), "does-not-exist.txt")

	entries, err := os.ReadDir(logs)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	content, err := os.ReadFile(filepath.Join(logs, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[fatal] ")
	assert.Contains(t, string(content), "does-not-exist.txt")

	stdout.Reset()
	stderr.Reset()
	assert.Equal(t, 0, execute([]string{"termshield", "version"}, strings.NewReader(""), &stdout, &stderr))
	assert.Empty(t, stderr.String())
	assert.Contains(t, stdout.String(), version.Version)
}
