package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir moves into an empty working directory so no .homotopy.yaml is
// picked up.
func inTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
}

// execute runs the root command with args inside an empty working directory.
// It returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	inTempDir(t)
	return executeHere(t, args...)
}

// executeHere runs the root command in the current working directory.
func executeHere(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "homotopy", cmd.Use)
	assert.Contains(t, cmd.Long, "proof sessions")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"check", "run", "examples", "watch", "proofs"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestProofsSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"save", "list", "show", "delete"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{"proofs", name})
			require.NoError(t, err)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		path []string
		flag string
		def  string
	}{
		{[]string{"check"}, "deep", "false"},
		{[]string{"watch"}, "deep", "false"},
		{[]string{"run"}, "update", "false"},
		{[]string{"run"}, "filter", ""},
		{[]string{"run"}, "metrics", "false"},
		{[]string{"examples"}, "force", "false"},
		{[]string{"proofs", "save"}, "name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			cmd := NewRootCommand()
			sub, _, err := cmd.Find(tt.path)
			require.NoError(t, err)

			f := sub.Flags().Lookup(tt.flag)
			require.NotNil(t, f, "%v should have --%s", tt.path, tt.flag)
			assert.Equal(t, tt.def, f.DefValue)
		})
	}
}

func TestProofsDBFlagIsInherited(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"proofs", "list"})
	require.NoError(t, err)
	assert.NotNil(t, sub.InheritedFlags().Lookup("db"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := execute(t, "--format", "invalid", "examples")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("HOMOTOPY_MAX_WORKERS", "0")

	stdout, _, err := execute(t, "examples")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "invalid config")
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", "nope.yaml", "examples")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
