package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeExampleTree copies the bundled examples into a fresh directory and
// returns it.
func writeExampleTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files, err := exampleFiles()
	require.NoError(t, err)
	for _, f := range files {
		data, err := exampleFS.ReadFile("examples/" + f)
		require.NoError(t, err)
		dest := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
		require.NoError(t, os.WriteFile(dest, data, 0o644))
	}
	return dir
}

func TestCheck_Monoid(t *testing.T) {
	dir := writeExampleTree(t)

	stdout, _, err := execute(t, "check", filepath.Join(dir, "monoid.cue"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "6 generator(s) typecheck (shallow)")
	assert.Contains(t, stdout, "(invertible)")
}

func TestCheck_Deep(t *testing.T) {
	dir := writeExampleTree(t)

	stdout, _, err := execute(t, "check", "--deep", filepath.Join(dir, "monoid.cue"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "(deep)")
}

func TestCheck_ConfiguredMode(t *testing.T) {
	dir := writeExampleTree(t)
	t.Setenv("HOMOTOPY_TYPECHECK_MODE", "deep")

	stdout, _, err := execute(t, "check", filepath.Join(dir, "monoid.cue"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "(deep)")
}

func TestCheck_JSON(t *testing.T) {
	dir := writeExampleTree(t)

	stdout, _, err := execute(t, "--format", "json", "check", filepath.Join(dir, "monoid.cue"))
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "shallow", resp.Data.Mode)
	require.Len(t, resp.Data.Generators, 6)

	byName := make(map[string]GeneratorSummary)
	for _, g := range resp.Data.Generators {
		byName[g.Name] = g
	}
	assert.Equal(t, 0, byName["x"].Dimension)
	assert.Equal(t, 1, byName["f"].Dimension)
	assert.Equal(t, 2, byName["m"].Dimension)
	assert.True(t, byName["a"].Invertible)
	assert.Equal(t, 3, byName["assoc"].Dimension)
}

func TestCheck_MissingFile(t *testing.T) {
	stdout, _, err := execute(t, "check", "missing.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error ["+ErrCodeNotFound+"]")
}

func TestCheck_BrokenSignature(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.cue")
	require.NoError(t, os.WriteFile(path, []byte(`generator: {
	f: {source: "nope", target: "nope"}
}
`), 0o644))

	_, _, err := execute(t, "check", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
