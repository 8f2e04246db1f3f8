package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/gitsim/internal/bundle"
)

// generateTranscript produces a fully-populated transcript suitable for
// testing the view command's section ordering.
func generateTranscript(t *rapid.T) *bundle.Transcript {
	sec := rapid.Int64Range(1_000_000_000, 1_700_000_000).Draw(t, "unix_sec")
	ts := time.Unix(sec, 0).UTC()

	tr := &bundle.Transcript{
		Session: bundle.SessionMeta{
			ID:        rapid.StringN(1, 36, -1).Draw(t, "session_id"),
			StartTime: ts,
			EndTime:   ts.Add(time.Minute),
			Duration:  "1m0s",
			Lesson:    rapid.StringN(0, 20, -1).Draw(t, "lesson"),
		},
		Branches: map[string]string{},
	}

	numCommands := rapid.IntRange(0, 5).Draw(t, "num_commands")
	for i := 0; i < numCommands; i++ {
		tr.Commands = append(tr.Commands, bundle.Entry{
			Raw:       rapid.StringN(1, 50, -1).Draw(t, "cmd_raw"),
			Timestamp: ts,
			Class:     rapid.SampledFrom([]string{"success", "error", "info"}).Draw(t, "class"),
			Output:    rapid.StringN(0, 50, -1).Draw(t, "output"),
		})
	}
	numBranches := rapid.IntRange(0, 4).Draw(t, "num_branches")
	for i := 0; i < numBranches; i++ {
		tr.Branches[fmt.Sprintf("b%d", i)] = rapid.StringMatching(`[0-9a-f]{40}`).Draw(t, "branch_id")
	}
	numCommits := rapid.IntRange(0, 4).Draw(t, "num_commits")
	for i := 0; i < numCommits; i++ {
		tr.Commits = append(tr.Commits, bundle.CommitSummary{
			ID:        rapid.StringMatching(`[0-9a-f]{40}`).Draw(t, "commit_id"),
			Message:   rapid.StringN(1, 40, -1).Draw(t, "message"),
			Author:    "S <s@x>",
			Timestamp: ts,
		})
	}
	return tr
}

// Feature: gitsim, Property 16: View section order
func TestViewSectionOrder(t *testing.T) {
	sectionHeaders := []string{
		"## Summary",
		"## Commands",
		"## Branches",
		"## Commits",
	}

	rapid.Check(t, func(rt *rapid.T) {
		tr := generateTranscript(rt)

		var buf bytes.Buffer
		printTranscript(&buf, tr)
		output := buf.String()

		positions := make([]int, len(sectionHeaders))
		for i, header := range sectionHeaders {
			pos := strings.Index(output, header)
			if pos == -1 {
				rt.Fatalf("section header %q not found in output:\n%s", header, output)
			}
			positions[i] = pos
		}
		for i := 0; i < len(positions)-1; i++ {
			if positions[i] >= positions[i+1] {
				rt.Errorf("section %q (pos %d) does not appear before %q (pos %d) in output:\n%s",
					sectionHeaders[i], positions[i], sectionHeaders[i+1], positions[i+1], output)
			}
		}
		for _, c := range tr.Commands {
			if !strings.Contains(output, c.Raw) {
				rt.Errorf("command %q missing from output", c.Raw)
			}
		}
	})
}

func TestViewNonExistentFile(t *testing.T) {
	tmp := setupEnv(t)
	missingPath := filepath.Join(tmp, "does-not-exist.md")

	_, err := executeCommand(rootCmd, "view", missingPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found: "+missingPath)
}

func TestViewInvalidTranscript(t *testing.T) {
	tmp := setupEnv(t)
	plainMD := filepath.Join(tmp, "plain.md")
	require.NoError(t, os.WriteFile(plainMD, []byte("# Just a regular markdown file\n\nNo sentinel here.\n"), 0o644))

	_, err := executeCommand(rootCmd, "view", plainMD)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid gitsim transcript")
}

func TestViewPlainAfterExport(t *testing.T) {
	tmp := setupEnv(t)
	runShell(t, basics+"git status\n")
	file := filepath.Join(tmp, "t.yaml")
	_, err := executeCommand(rootCmd, "export", "-o", file, "--format", "yaml")
	require.NoError(t, err)

	out, err := executeCommand(rootCmd, "view", "--plain", file)
	require.NoError(t, err)
	assert.Contains(t, out, "1. git init")
	assert.Contains(t, out, "* main")
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "HEAD:      main")
}
