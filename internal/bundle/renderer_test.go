package bundle_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/gitsim/internal/bundle"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/vcs"
)

// generateTime produces an arbitrary time.Time value truncated to second
// precision (matches JSON round-trip fidelity via RFC3339).
func generateTime(t *rapid.T, label string) time.Time {
	sec := rapid.Int64Range(1_000_000_000, 1_700_000_000).Draw(t, label+"_unix_sec")
	return time.Unix(sec, 0).UTC()
}

func text(t *rapid.T, label string, minLen, maxLen int) string {
	return rapid.StringMatching(fmt.Sprintf(`[ -~]{%d,%d}`, minLen, maxLen)).Draw(t, label)
}

// generateTranscript produces a fully-populated transcript with at least one
// entry in every collection field.
func generateTranscript(t *rapid.T) *bundle.Transcript {
	start := generateTime(t, "start")
	meta := bundle.SessionMeta{
		ID:        text(t, "session_id", 1, 36),
		StartTime: start,
		EndTime:   start.Add(time.Duration(rapid.IntRange(0, 7200).Draw(t, "secs")) * time.Second),
		Duration:  text(t, "duration", 1, 20),
		Author:    text(t, "author", 0, 30),
		Lesson:    text(t, "lesson", 0, 30),
		RepoRoot:  "/home/student/" + rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "repo"),
	}

	commands := make([]bundle.Entry, rapid.IntRange(1, 5).Draw(t, "num_commands"))
	for i := range commands {
		commands[i] = bundle.Entry{
			Raw:       text(t, "cmd_raw", 1, 50),
			Timestamp: generateTime(t, "cmd_ts"),
			Class:     rapid.SampledFrom([]string{"success", "error", "info", "warning"}).Draw(t, "class"),
			Output:    text(t, "cmd_out", 0, 50),
		}
	}

	branches := map[string]string{}
	for i := rapid.IntRange(1, 4).Draw(t, "num_branches"); i > 0; i-- {
		branches[rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "branch")] = rapid.StringMatching(`[0-9a-f]{12}`).Draw(t, "tip")
	}

	commits := make([]bundle.CommitSummary, rapid.IntRange(1, 5).Draw(t, "num_commits"))
	for i := range commits {
		commits[i] = bundle.CommitSummary{
			ID:        rapid.StringMatching(`[0-9a-f]{12}`).Draw(t, "commit_id"),
			Message:   text(t, "commit_msg", 1, 40),
			Parents:   rapid.SliceOfN(rapid.StringMatching(`[0-9a-f]{12}`), 1, 2).Draw(t, "parents"),
			Author:    text(t, "commit_author", 1, 30),
			Timestamp: generateTime(t, "commit_ts"),
		}
	}

	return &bundle.Transcript{
		Session:  meta,
		Commands: commands,
		Branches: branches,
		Head:     rapid.StringMatching(`[a-z]{1,10}`).Draw(t, "head"),
		Commits:  commits,
	}
}

// assertSame compares two transcripts field by field, using time.Equal for
// timestamps.
func assertSame(t *rapid.T, got, want *bundle.Transcript) {
	gs, ws := got.Session, want.Session
	if !gs.StartTime.Equal(ws.StartTime) || !gs.EndTime.Equal(ws.EndTime) {
		t.Errorf("Session times mismatch: got %v..%v, want %v..%v", gs.StartTime, gs.EndTime, ws.StartTime, ws.EndTime)
	}
	gs.StartTime, gs.EndTime, ws.StartTime, ws.EndTime = time.Time{}, time.Time{}, time.Time{}, time.Time{}
	if gs != ws {
		t.Errorf("Session mismatch: got %+v, want %+v", gs, ws)
	}

	if len(got.Commands) != len(want.Commands) {
		t.Fatalf("Commands length mismatch: got %d, want %d", len(got.Commands), len(want.Commands))
	}
	for i := range want.Commands {
		g, w := got.Commands[i], want.Commands[i]
		if g.Raw != w.Raw || g.Class != w.Class || g.Output != w.Output || !g.Timestamp.Equal(w.Timestamp) {
			t.Errorf("Commands[%d] mismatch: got %+v, want %+v", i, g, w)
		}
	}

	if len(got.Branches) != len(want.Branches) {
		t.Fatalf("Branches length mismatch: got %d, want %d", len(got.Branches), len(want.Branches))
	}
	for name, id := range want.Branches {
		if got.Branches[name] != id {
			t.Errorf("Branches[%s] mismatch: got %q, want %q", name, got.Branches[name], id)
		}
	}
	if got.Head != want.Head {
		t.Errorf("Head mismatch: got %q, want %q", got.Head, want.Head)
	}

	if len(got.Commits) != len(want.Commits) {
		t.Fatalf("Commits length mismatch: got %d, want %d", len(got.Commits), len(want.Commits))
	}
	for i := range want.Commits {
		g, w := got.Commits[i], want.Commits[i]
		if g.ID != w.ID || g.Message != w.Message || g.Author != w.Author ||
			!g.Timestamp.Equal(w.Timestamp) || strings.Join(g.Parents, ",") != strings.Join(w.Parents, ",") {
			t.Errorf("Commits[%d] mismatch: got %+v, want %+v", i, g, w)
		}
	}
}

// Feature: gitsim, Property 13: Transcript completeness
func TestTranscriptCompleteness(t *testing.T) {
	mdRenderer := &bundle.MarkdownRenderer{}
	jsonRenderer := &bundle.JSONRenderer{}

	rapid.Check(t, func(t *rapid.T) {
		tr := generateTranscript(t)

		mdBytes, err := mdRenderer.Render(tr)
		if err != nil {
			t.Fatalf("MarkdownRenderer.Render: %v", err)
		}
		md := string(mdBytes)
		for _, section := range []string{"## Summary", "## Commands", "## Branches", "## Commits"} {
			if !strings.Contains(md, section) {
				t.Errorf("Markdown output missing section %q", section)
			}
		}
		for _, c := range tr.Commands {
			if !strings.Contains(md, "`"+c.Raw+"`") {
				t.Errorf("Markdown output missing command %q", c.Raw)
			}
		}

		jsonBytes, err := jsonRenderer.Render(tr)
		if err != nil {
			t.Fatalf("JSONRenderer.Render: %v", err)
		}
		js := string(jsonBytes)
		for _, key := range []string{`"session"`, `"commands"`, `"branches"`, `"head"`, `"commits"`} {
			if !strings.Contains(js, key) {
				t.Errorf("JSON output missing key %q", key)
			}
		}
	})
}

// Feature: gitsim, Property 14: Transcript round-trip in every format
func TestTranscriptRoundTrip(t *testing.T) {
	formats := []struct {
		name     string
		renderer bundle.Renderer
		parser   bundle.Parser
	}{
		{"json", &bundle.JSONRenderer{}, &bundle.JSONParser{}},
		{"markdown", &bundle.MarkdownRenderer{}, &bundle.MarkdownParser{}},
		{"yaml", &bundle.YAMLRenderer{}, &bundle.YAMLParser{}},
	}
	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			rapid.Check(t, func(t *rapid.T) {
				original := generateTranscript(t)
				data, err := f.renderer.Render(original)
				if err != nil {
					t.Fatalf("Render: %v", err)
				}
				got, err := f.parser.Parse(data)
				if err != nil {
					t.Fatalf("Parse: %v", err)
				}
				assertSame(t, got, original)
			})
		})
	}
}

func TestFromSession(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	st := session.NewState("student", clock)
	e := vcs.New(vcs.Signature{Name: "Sam", Email: "sam@example.com"}, clock)

	tr, err := e.Init(st.Repo, st.FS.Home())
	require.NoError(t, err)
	require.NoError(t, st.FS.WriteFile(st.Cwd, "a.txt", "hello\n", false))
	wt, err := st.Worktree()
	require.NoError(t, err)
	tr, err = e.Add(tr.Repo, wt, []string{""})
	require.NoError(t, err)
	tr, err = e.Commit(tr.Repo, wt, vcs.CommitOptions{Message: "first"})
	require.NoError(t, err)
	st.Repo = tr.Repo
	st.History = []session.HistoryEntry{
		{Raw: "git init", Timestamp: clock(), Class: "success", Output: "Initialized"},
		{Raw: "git commit -m first", Timestamp: clock(), Class: "success"},
	}

	sess := session.New(st, clock())
	sess.Lesson = "basics"
	out := bundle.FromSession(sess, "Sam", clock().Add(90*time.Second))

	assert.Equal(t, "1m30s", out.Session.Duration)
	assert.Equal(t, "basics", out.Session.Lesson)
	assert.Equal(t, []string{"git init", "git commit -m first"}, out.Lines())
	assert.Equal(t, "main", out.Head)
	require.Len(t, out.Commits, 1)
	assert.Equal(t, "first", out.Commits[0].Message)
	assert.Equal(t, out.Commits[0].ID, out.Branches["main"])
	assert.Equal(t, "Sam <sam@example.com>", out.Commits[0].Author)
}

func TestRendererFor(t *testing.T) {
	for format, want := range map[string]any{
		"":         &bundle.MarkdownRenderer{},
		"markdown": &bundle.MarkdownRenderer{},
		"JSON":     &bundle.JSONRenderer{},
		"yml":      &bundle.YAMLRenderer{},
	} {
		r, err := bundle.RendererFor(format)
		require.NoError(t, err, format)
		assert.IsType(t, want, r, format)
	}
	_, err := bundle.RendererFor("pdf")
	assert.ErrorContains(t, err, "unknown format")
	assert.Equal(t, ".yaml", bundle.Extension("yml"))
	assert.Equal(t, ".md", bundle.Extension("markdown"))
}
