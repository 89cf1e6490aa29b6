package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleFiles(t *testing.T) {
	files, err := exampleFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"monoid.cue",
		"scenarios/golden/new_generator.golden",
		"scenarios/golden/side_by_side.golden",
		"scenarios/new_generator.yaml",
		"scenarios/side_by_side.yaml",
	}, files)
}

func TestExamples_List(t *testing.T) {
	stdout, _, err := execute(t, "examples")
	require.NoError(t, err)
	assert.Contains(t, stdout, "monoid.cue")
	assert.Contains(t, stdout, "scenarios/side_by_side.yaml")
}

func TestExamples_Write(t *testing.T) {
	stdout, _, err := execute(t, "examples", "ex")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote 5 file(s)")

	want, err := exampleFS.ReadFile("examples/monoid.cue")
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join("ex", "monoid.cue"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The written tree runs as-is.
	_, _, err = executeHere(t, "run", filepath.Join("ex", "scenarios"))
	require.NoError(t, err)
}

func TestExamples_RefusesOverwrite(t *testing.T) {
	_, _, err := execute(t, "examples", "ex")
	require.NoError(t, err)

	edited := filepath.Join("ex", "monoid.cue")
	require.NoError(t, os.WriteFile(edited, []byte("// mine\n"), 0o644))

	_, _, err = executeHere(t, "examples", "ex")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	data, err := os.ReadFile(edited)
	require.NoError(t, err)
	assert.Equal(t, "// mine\n", string(data))

	_, _, err = executeHere(t, "examples", "--force", "ex")
	require.NoError(t, err)
	data, err = os.ReadFile(edited)
	require.NoError(t, err)
	assert.NotEqual(t, "// mine\n", string(data))
}
