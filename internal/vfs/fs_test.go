package vfs

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

func newTestFS(t *testing.T) *FS {
	t.Helper()
	return New("student", fixedClock)
}

func TestNewCreatesHomeAndTmp(t *testing.T) {
	f := newTestFS(t)
	assert.True(t, f.IsDir("/", "/home/student"))
	assert.True(t, f.IsDir("/", "/tmp"))
	assert.Equal(t, "/home/student", f.Home())
}

func TestClean(t *testing.T) {
	tests := []struct {
		cwd, p, want string
	}{
		{"/home/student", "a.txt", "/home/student/a.txt"},
		{"/home/student", "./a/../b", "/home/student/b"},
		{"/home/student", "/etc", "/etc"},
		{"/", "..", "/"},
		{"/", "../../x", "/x"},
		{"/a/b", "..", "/a"},
		{"/a/b", "", "/a/b"},
		{"/a", "b//c/", "/a/b/c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.cwd, tt.p), "Clean(%q, %q)", tt.cwd, tt.p)
	}
}

func TestRel(t *testing.T) {
	rel, ok := Rel("/home/student/repo", "/home/student/repo/src/main.go")
	assert.True(t, ok)
	assert.Equal(t, "src/main.go", rel)

	rel, ok = Rel("/home/student/repo", "/home/student/repo")
	assert.True(t, ok)
	assert.Equal(t, "", rel)

	_, ok = Rel("/home/student/repo", "/home/student/repository")
	assert.False(t, ok)

	rel, ok = Rel("/", "/tmp/x")
	assert.True(t, ok)
	assert.Equal(t, "tmp/x", rel)
}

func TestAbsExpandsTilde(t *testing.T) {
	f := newTestFS(t)
	assert.Equal(t, "/home/student", f.Abs("/tmp", "~"))
	assert.Equal(t, "/home/student/x", f.Abs("/tmp", "~/x"))
}

func TestResolveDistinguishesOutcomes(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.WriteFile("/home/student", "a.txt", "hi", false))

	// Exists.
	res, err := f.Resolve("/home/student", "a.txt")
	require.NoError(t, err)
	assert.NotNil(t, res.Node)
	assert.Equal(t, "a.txt", res.Leaf)

	// Doesn't exist but parent does.
	res, err = f.Resolve("/home/student", "b.txt")
	require.NoError(t, err)
	assert.Nil(t, res.Node)
	assert.NotNil(t, res.Parent)
	assert.Equal(t, "b.txt", res.Leaf)

	// Invalid path: missing intermediate directory.
	_, err = f.Resolve("/home/student", "missing/b.txt")
	assert.ErrorIs(t, err, ErrNotExist)

	// Invalid path: intermediate is a file.
	_, err = f.Resolve("/home/student", "a.txt/b.txt")
	assert.ErrorIs(t, err, ErrNotDir)
}

func TestMkdir(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.Mkdir("/home/student", "proj", false))

	err := f.Mkdir("/home/student", "proj", false)
	assert.ErrorIs(t, err, ErrExist)

	err = f.Mkdir("/home/student", "x/y/z", false)
	assert.ErrorIs(t, err, ErrNotExist)

	require.NoError(t, f.Mkdir("/home/student", "x/y/z", true))
	assert.True(t, f.IsDir("/", "/home/student/x/y/z"))
	require.NoError(t, f.Mkdir("/home/student", "x/y/z", true), "mkdir -p on existing dir is not an error")
}

func TestWriteReadAppend(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.WriteFile("/tmp", "notes.txt", "one\n", false))
	require.NoError(t, f.WriteFile("/tmp", "notes.txt", "two\n", true))

	got, err := f.ReadFile("/tmp", "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", got)

	n, err := f.Stat("/tmp", "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len("one\ntwo\n")), n.Meta.Size)
	assert.Equal(t, "-rw-r--r--", n.Permissions())

	_, err = f.ReadFile("/", "/tmp")
	assert.ErrorIs(t, err, ErrIsDir)

	err = f.WriteFile("/", "/tmp", "x", false)
	assert.ErrorIs(t, err, ErrIsDir)

	_, err = f.ReadFile("/tmp", "nope")
	assert.ErrorIs(t, err, ErrNotExist)
	var pe *PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "nope", pe.Path)
}

func TestTouchKeepsContent(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.WriteFile("/tmp", "a", "keep", false))
	require.NoError(t, f.Touch("/tmp", "a"))
	got, err := f.ReadFile("/tmp", "a")
	require.NoError(t, err)
	assert.Equal(t, "keep", got)

	require.NoError(t, f.Touch("/tmp", "b"))
	got, err = f.ReadFile("/tmp", "b")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestRemove(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.Mkdir("/tmp", "d/e", true))
	require.NoError(t, f.WriteFile("/tmp", "d/e/f.txt", "x", false))

	assert.ErrorIs(t, f.Remove("/tmp", "d", false), ErrIsDir)
	require.NoError(t, f.Remove("/tmp", "d", true))
	assert.False(t, f.Exists("/tmp", "d"))
	assert.ErrorIs(t, f.Remove("/tmp", "d", true), ErrNotExist)
	assert.ErrorIs(t, f.Remove("/", "/", true), ErrInvalid)
}

func TestMoveAndCopy(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.WriteFile("/tmp", "a.txt", "A", false))
	require.NoError(t, f.Mkdir("/tmp", "dir", false))

	require.NoError(t, f.Move("/tmp", "a.txt", "dir"))
	assert.False(t, f.Exists("/tmp", "a.txt"))
	got, err := f.ReadFile("/tmp", "dir/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "A", got)

	require.NoError(t, f.Move("/tmp", "dir/a.txt", "dir/b.txt"))
	assert.True(t, f.Exists("/tmp", "dir/b.txt"))

	assert.ErrorIs(t, f.Copy("/tmp", "dir", "dir2", false), ErrIsDir)
	require.NoError(t, f.Copy("/tmp", "dir", "dir2", true))
	assert.True(t, f.Exists("/tmp", "dir2/b.txt"))

	// The copy is independent of the source.
	require.NoError(t, f.WriteFile("/tmp", "dir2/b.txt", "changed", false))
	got, err = f.ReadFile("/tmp", "dir/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "A", got)

	assert.ErrorIs(t, f.Move("/tmp", "dir", "dir/sub"), ErrInvalid)
}

func TestListSorted(t *testing.T) {
	f := newTestFS(t)
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, f.Touch("/tmp", name))
	}
	nodes, err := f.List("/tmp", ".")
	require.NoError(t, err)
	var names []string
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	_, err = f.List("/tmp", "missing")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.Mkdir("/", "/repo/src", true))
	require.NoError(t, f.WriteFile("/repo", "README.md", "# hi", false))
	require.NoError(t, f.WriteFile("/repo", "src/main.go", "package main", false))

	snap, err := f.Snapshot("/repo")
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"README.md": "# hi", "src/main.go": "package main"}, snap)
	assert.Equal(t, []string{"README.md", "src/main.go"}, snap.Paths())

	require.NoError(t, f.WriteFile("/repo", "extra.txt", "x", false))
	require.NoError(t, f.Remove("/repo", "src", true))
	require.NoError(t, f.Restore("/repo", snap))

	after, err := f.Snapshot("/repo")
	require.NoError(t, err)
	assert.True(t, snap.Equal(after))
	assert.False(t, f.Exists("/repo", "extra.txt"), "restore replaces the tree wholesale")
}

func TestRestoreKeepsEmptyDirectories(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.WriteFile("/repo", "a.txt", "a", false))
	require.NoError(t, f.Mkdir("/", "/repo/docs", true))
	require.NoError(t, f.Mkdir("/", "/repo/src/drafts", true))
	require.NoError(t, f.WriteFile("/repo", "src/main.go", "package main", false))

	require.NoError(t, f.Restore("/repo", Snapshot{"b.txt": "b"}))

	assert.True(t, f.IsDir("/repo", "docs"))
	assert.True(t, f.IsDir("/repo", "src/drafts"))
	assert.False(t, f.Exists("/repo", "src/main.go"))
	assert.False(t, f.Exists("/repo", "a.txt"))
	files, err := f.Files("/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, files)
}

func TestCloneIsIndependent(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.WriteFile("/tmp", "a", "1", false))
	c := f.Clone()
	require.NoError(t, c.WriteFile("/tmp", "a", "2", false))

	got, err := f.ReadFile("/tmp", "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestJSONRoundTripKeepsTreeUsable(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.Mkdir("/tmp", "empty", false))
	data, err := json.Marshal(f)
	require.NoError(t, err)

	var decoded FS
	require.NoError(t, json.Unmarshal(data, &decoded))
	// An empty directory decodes with a nil Children map; writes must still work.
	require.NoError(t, decoded.WriteFile("/tmp/empty", "x", "y", false))
	got, err := decoded.ReadFile("/tmp/empty", "x")
	require.NoError(t, err)
	assert.Equal(t, "y", got)
}

func TestSnapshotUnder(t *testing.T) {
	s := Snapshot{"a.txt": "", "src/a.go": "", "src/b.go": "", "srcx": ""}
	assert.Equal(t, []string{"src/a.go", "src/b.go"}, s.Under("src"))
	assert.Len(t, s.Under(""), 4)
}
