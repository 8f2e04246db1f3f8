package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/gitsim/internal/profile"
)

func TestSetupSavesProfileUsedByLaterCommands(t *testing.T) {
	tmp := setupEnv(t)
	outDir := filepath.Join(tmp, "transcripts")

	rootCmd.SetIn(strings.NewReader("Ada Lovelace\nada@example.com\njson\n" + outDir + "\nn\n"))
	out, err := executeCommand(rootCmd, "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Profile saved.")

	prof, err := profile.Load()
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", prof.Name)
	assert.Equal(t, "json", prof.DefaultFormat)
	assert.False(t, prof.InstallPlugin)

	runShell(t, basics)
	out, err = executeCommand(rootCmd, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")

	// The profile fills in the export format and directory.
	_, err = executeCommand(rootCmd, "export")
	require.NoError(t, err)
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
}

func TestSetupInstallsPlugin(t *testing.T) {
	setupEnv(t)
	rootCmd.SetIn(strings.NewReader("\n\n\n\ny\nzsh\n"))
	out, err := executeCommand(rootCmd, "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Plugin written to")
	assert.True(t, profile.PluginInstalled("zsh"))
}

func TestFirstRunWithoutTerminalUsesDefaults(t *testing.T) {
	setupEnv(t)
	_, err := executeCommand(rootCmd, "status")
	require.NoError(t, err)
	assert.False(t, profile.Exists())
	assert.Equal(t, "Student", GetProfile().Name)
}
