package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/gitsim/internal/shell"
)

func TestShellLineModePersistsSession(t *testing.T) {
	setupEnv(t)

	out := runShell(t, basics+"exit\n")
	assert.Contains(t, out, "Initialized empty Git repository")
	assert.Contains(t, out, "student@gitsim:~")

	sess := loadSession(t)
	assert.Len(t, sess.State.History, 4)
	assert.Equal(t, 1, sess.State.Repo.Graph.Len())

	// A second shell resumes the saved session.
	out = runShell(t, "git log --oneline\n")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "(main)")
	assert.Len(t, loadSession(t).State.History, 5)

	entries, err := shell.ReadCommandLog()
	require.NoError(t, err)
	assert.Equal(t, "git log --oneline", entries[4].Raw)
}

func TestShellUndoInLineMode(t *testing.T) {
	setupEnv(t)
	rootCmd.SetIn(strings.NewReader("mkdir work\nundo\n"))
	_, err := executeCommand(rootCmd, "shell", "--plain")
	require.NoError(t, err)
	st := loadSession(t).State
	assert.Empty(t, st.History)
	assert.False(t, st.FS.IsDir("/", "/home/student/work"))

	// The log keeps what was typed even after an undo.
	require.Eventually(t, func() bool {
		entries, _ := shell.ReadCommandLog()
		return len(entries) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestShellFreshDiscardsSession(t *testing.T) {
	setupEnv(t)
	runShell(t, basics)
	require.Equal(t, 1, loadSession(t).State.Repo.Graph.Len())

	shellFresh = true
	rootCmd.SetIn(strings.NewReader(""))
	_, err := executeCommand(rootCmd, "shell", "--plain", "--fresh")
	require.NoError(t, err)

	sess := loadSession(t)
	assert.False(t, sess.State.Repo.Initialized)
	assert.Empty(t, sess.State.History)
	entries, err := shell.ReadCommandLog()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestShellSeedCopiesProject(t *testing.T) {
	tmp := setupEnv(t)
	src := filepath.Join(tmp, "project")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "README.md"), []byte("# hi\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "docs", "guide.txt"), []byte("read me\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "logo.png"), []byte{0x89, 0x50, 0x00, 0x01}, 0o644))

	rootCmd.SetIn(strings.NewReader(""))
	out, err := executeCommand(rootCmd, "shell", "--plain", "--fresh", "--seed", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 files")

	st := loadSession(t).State
	assert.True(t, st.FS.Exists(st.FS.Home(), "README.md"))
	assert.True(t, st.FS.Exists(st.FS.Home(), "docs/guide.txt"))
	assert.False(t, st.FS.Exists(st.FS.Home(), "logo.png"))
}
