package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/shell"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// setupEnv points every gitsim path at a temp dir and resets flag state left
// over from earlier runs.
func setupEnv(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Setenv("GITSIM_LOG_FILE", "")

	origInteractive, origSleep := interactive, replaySleep
	t.Cleanup(func() { interactive, replaySleep = origInteractive, origSleep })
	interactive = func() bool { return false }
	replaySleep = func(context.Context, time.Duration) error { return nil }

	shellPlain, shellFresh, shellSeed = false, false, ""
	runWatch, runFresh = false, false
	replayPlain, replaySpeed = false, 0
	exportFormat, exportOutput, exportEnd = "", "", false
	plainOutput = false
	inspectLimit = 20

	rootCmd.ResetFlags()
	rootCmd.SetIn(strings.NewReader(""))
	return tmp
}

// runShell feeds input to a line-mode shell and waits until the command log
// has caught up with the saved history.
func runShell(t *testing.T, input string, args ...string) string {
	t.Helper()
	shellFresh, shellSeed = false, ""
	rootCmd.SetIn(strings.NewReader(input))
	out, err := executeCommand(rootCmd, append([]string{"shell", "--plain"}, args...)...)
	require.NoError(t, err)

	sess := loadSession(t)
	require.Eventually(t, func() bool {
		entries, err := shell.ReadCommandLog()
		return err == nil && len(entries) == len(sess.State.History)
	}, 2*time.Second, 10*time.Millisecond)
	return out
}

func loadSession(t *testing.T) *session.Session {
	t.Helper()
	store, err := session.NewSessionStore()
	require.NoError(t, err)
	sess, err := store.Load()
	require.NoError(t, err)
	return sess
}

const basics = "git init\ntouch a.txt\ngit add a.txt\ngit commit -m first\n"
