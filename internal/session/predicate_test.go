package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/gitsim/internal/vcs"
)

func TestPredicates(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	st := NewState("student", clock)
	root := st.FS.Home()
	e := vcs.New(vcs.Signature{Name: "S", Email: "s@x"}, clock)

	assert.False(t, RepoInitialized()(st))
	assert.False(t, IsClean()(st), "no repository is never clean")

	tr, err := e.Init(st.Repo, root)
	require.NoError(t, err)
	st.Repo = tr.Repo
	assert.True(t, IsClean()(st))

	require.NoError(t, st.FS.WriteFile(root, "a.txt", "hi", false))
	assert.True(t, FileExists("a.txt")(st))
	assert.False(t, IsClean()(st), "untracked file")

	wt, err := st.Worktree()
	require.NoError(t, err)
	tr, err = e.Add(st.Repo, wt, []string{"a.txt"})
	require.NoError(t, err)
	st.Repo = tr.Repo
	assert.True(t, Staged("a.txt")(st))

	tr, err = e.Commit(st.Repo, wt, vcs.CommitOptions{Message: "c1"})
	require.NoError(t, err)
	st.Repo = tr.Repo

	done := All(RepoInitialized(), HasCommitCount(1), OnBranch("main"), BranchExists("main"), IsClean())
	assert.True(t, done(st))
	assert.False(t, HasCommitCount(2)(st))
	assert.False(t, HasMergeCommit()(st))
	assert.False(t, PushedTo("origin", "main")(st))
}

func TestStateCloneIsIndependent(t *testing.T) {
	st := NewState("student", time.Now)
	st.History = append(st.History, HistoryEntry{Raw: "ls"})
	c := st.Clone()
	require.NoError(t, c.FS.WriteFile(c.Cwd, "x", "1", false))
	c.History[0].Raw = "pwd"
	c.Cwd = "/tmp"

	assert.False(t, st.FS.Exists(st.Cwd, "x"))
	assert.Equal(t, "ls", st.History[0].Raw)
	assert.Equal(t, "/home/student", st.Cwd)
}

func TestRepoPath(t *testing.T) {
	st := NewState("student", time.Now)
	st.Repo.Initialized = true
	st.Repo.Root = "/home/student/repo"
	st.Cwd = "/home/student/repo/src"

	p, ok := st.RepoPath("main.go")
	assert.True(t, ok)
	assert.Equal(t, "src/main.go", p)

	_, ok = st.RepoPath("../../other")
	assert.False(t, ok)
	assert.True(t, st.InRepo())
}
