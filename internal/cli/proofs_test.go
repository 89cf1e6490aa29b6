package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/homotopy/internal/store"
)

// saveExample saves the new_generator example proof into db and returns its id.
func saveExample(t *testing.T, dir, db string) string {
	t.Helper()
	stdout, _, err := executeHere(t, "--format", "json", "proofs", "save", "--db", db, "--name", "g-from-f",
		filepath.Join(dir, "scenarios", "new_generator.yaml"))
	require.NoError(t, err)

	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotEmpty(t, resp.Data["id"])
	assert.Equal(t, "g-from-f", resp.Data["name"])
	return resp.Data["id"]
}

func TestProofs_SaveListShowDelete(t *testing.T) {
	dir := writeExampleTree(t)
	inTempDir(t)
	db := filepath.Join(t.TempDir(), "proofs.db")

	id := saveExample(t, dir, db)

	// list
	stdout, _, err := executeHere(t, "--format", "json", "proofs", "list", "--db", db)
	require.NoError(t, err)
	var listed struct {
		Data []store.ProofSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, id, listed.Data[0].ID)
	assert.Equal(t, "g-from-f", listed.Data[0].Name)
	assert.Equal(t, int64(4), listed.Data[0].Seq)
	assert.Equal(t, 7, listed.Data[0].Generators)

	// show
	stdout, _, err = executeHere(t, "--format", "json", "proofs", "show", "--db", db, id)
	require.NoError(t, err)
	var shown struct {
		Data ProofDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &shown))
	assert.Equal(t, id, shown.Data.ID)
	assert.Equal(t, 7, shown.Data.Generators)
	assert.Equal(t, int64(4), shown.Data.Seq)
	assert.Equal(t, 2, shown.Data.Dimension)

	stdout, _, err = executeHere(t, "proofs", "show", "--db", db, id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "generators: 7")
	assert.Contains(t, stdout, "workspace:  dim 2")

	// delete
	stdout, _, err = executeHere(t, "proofs", "delete", "--db", db, id)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted "+id)

	stdout, _, err = executeHere(t, "proofs", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No proofs stored.")

	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.NodeCount(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProofs_DatabaseFromConfig(t *testing.T) {
	dir := writeExampleTree(t)
	inTempDir(t)
	t.Setenv("HOMOTOPY_DATABASE", "configured.db")

	stdout, _, err := executeHere(t, "proofs", "save", filepath.Join(dir, "scenarios", "side_by_side.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved side_by_side as ")

	stdout, _, err = executeHere(t, "proofs", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "side_by_side")
	assert.FileExists(t, "configured.db")
}

func TestProofs_NotFound(t *testing.T) {
	inTempDir(t)
	db := filepath.Join(t.TempDir(), "proofs.db")

	for _, sub := range []string{"show", "delete"} {
		t.Run(sub, func(t *testing.T) {
			stdout, _, err := executeHere(t, "proofs", sub, "--db", db, "0192f3b4-0000-7000-8000-000000000000")
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, stdout, "Error ["+ErrCodeNotFound+"]")
		})
	}
}

func TestProofs_SaveFailingScenario(t *testing.T) {
	dir := writeExampleTree(t)
	db := filepath.Join(t.TempDir(), "proofs.db")

	_, _, err := execute(t, "proofs", "save", "--db", db, filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
