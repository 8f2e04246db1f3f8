package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/vcs"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadPlainScript(t *testing.T) {
	p := writeFile(t, t.TempDir(), "basics.txt", `
# set up
mkdir repo
cd repo

git init
`)
	l, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "basics", l.Name)
	assert.Equal(t, []string{"mkdir repo", "cd repo", "git init"}, l.Commands())
}

func TestLoadYAMLLesson(t *testing.T) {
	p := writeFile(t, t.TempDir(), "branching.yaml", `
name: Branching
steps:
  - run: git init
    expect:
      class: success
      contains: Initialized
  - run: "  "
  - run: git checkout -b feature
    expect:
      branch: feature
      clean: true
`)
	l, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "Branching", l.Name)
	require.Len(t, l.Steps, 2)
	require.NotNil(t, l.Steps[1].Expect)
	assert.Equal(t, "feature", l.Steps[1].Expect.Branch)
	require.NotNil(t, l.Steps[1].Expect.Clean)
	assert.True(t, *l.Steps[1].Expect.Clean)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(writeFile(t, dir, "empty.txt", "# only a comment\n"))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Load(writeFile(t, dir, "bad.yml", "steps: [unclosed"))
	assert.ErrorContains(t, err, "parse lesson")

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestExpectationVerify(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	st := session.NewState("student", clock)
	e := vcs.New(vcs.Signature{Name: "S", Email: "s@x"}, clock)
	tr, err := e.Init(st.Repo, st.FS.Home())
	require.NoError(t, err)
	st.Repo = tr.Repo

	clean := true
	exp := Expectation{Class: "success", Contains: "Initialized", Branch: "main", Clean: &clean}
	assert.Empty(t, exp.Verify("success", "Initialized empty Git repository", st))
	assert.True(t, exp.Predicate()(st))

	exp = Expectation{Class: "success", Commits: 1, Files: []string{"a.txt"}, PushedTo: "origin/main"}
	problems := exp.Verify("error", "", st)
	assert.Equal(t, []string{
		"expected a success result, got error",
		"expected at least 1 commits",
		"expected file a.txt",
		"expected a push to origin/main",
	}, problems)
}

func TestWatchCallsOnWrite(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "lesson.txt", "pwd\n")
	other := filepath.Join(dir, "other.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 8)
	errc := make(chan error, 1)
	go func() { errc <- Watch(ctx, p, func() { changed <- struct{}{} }) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(p, []byte("ls\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}
	cancel()
	assert.NoError(t, <-errc)
}
