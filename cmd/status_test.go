package cmd

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/gitsim/internal/session"
)

// Feature: gitsim, Property 17: Status counts accuracy
func TestStatusCountsAccuracy(t *testing.T) {
	setupEnv(t)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(rt, "n")

		tmp := t.TempDir()
		t.Setenv("XDG_DATA_HOME", tmp)
		t.Setenv("HOME", tmp)

		store, err := session.NewSessionStore()
		if err != nil {
			rt.Fatalf("NewSessionStore: %v", err)
		}

		st := session.NewState("student", time.Now)
		failed := 0
		for i := 0; i < n; i++ {
			class := rapid.SampledFrom([]string{"success", "error", "info", "status"}).Draw(rt, "class")
			if class == "error" {
				failed++
			}
			st.History = append(st.History, session.HistoryEntry{
				Raw:       fmt.Sprintf("cmd %d", i),
				Timestamp: time.Now(),
				Class:     class,
			})
		}
		if err := store.Save(session.New(st, time.Now())); err != nil {
			rt.Fatalf("Save: %v", err)
		}

		rootCmd.ResetFlags()
		out, err := executeCommand(rootCmd, "status")
		if err != nil {
			rt.Fatalf("status command error: %v", err)
		}

		want := fmt.Sprintf("Commands: %d (%d failed)", n, failed)
		if !strings.Contains(out, want) {
			rt.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	})
}

func TestStatusReportsRepository(t *testing.T) {
	setupEnv(t)
	runShell(t, basics+"git checkout -b feature\n")

	out, err := executeCommand(rootCmd, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Repository: /home/student on feature")
	assert.Contains(t, out, "Commits: 1")
	assert.Contains(t, out, "Tracked: 1")
	assert.Contains(t, out, "Directory: /home/student")
}

func TestResetSession(t *testing.T) {
	setupEnv(t)
	runShell(t, "git init\n")

	out, err := executeCommand(rootCmd, "reset-session")
	require.NoError(t, err)
	assert.Contains(t, out, "Session discarded.")

	out, err = executeCommand(rootCmd, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved session")
}

func TestInspectTables(t *testing.T) {
	setupEnv(t)
	runShell(t, basics+"git branch feature\ngit remote add origin https://example.com/r.git\ngit push -u origin main\n")

	out, err := executeCommand(rootCmd, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "Branches:")
	assert.Contains(t, out, "feature")
	assert.Contains(t, out, "origin/main")
	assert.Contains(t, out, "Commits:")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "Remotes:")
	assert.Contains(t, out, "https://example.com/r.git")
	assert.NotContains(t, out, "Stash:")
}

func TestInspectWithoutRepository(t *testing.T) {
	setupEnv(t)
	runShell(t, "pwd\n")
	out, err := executeCommand(rootCmd, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "no repository")
}
