package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/gitsim/internal/vfs"
)

func put(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func newFS() *vfs.FS {
	return vfs.New("student", func() time.Time { return time.Unix(0, 0) })
}

func TestLoadCopiesTextFiles(t *testing.T) {
	root := t.TempDir()
	put(t, root, "README.md", []byte("# demo\n"))
	put(t, root, "src/main.go", []byte("package main\n"))
	put(t, root, ".git/HEAD", []byte("ref: refs/heads/main\n"))
	put(t, root, "logo.png", []byte{0x89, 'P', 'N', 'G', 0})
	put(t, root, "big.txt", []byte(strings.Repeat("x", MaxFileSize+1)))
	put(t, root, "build/out.txt", []byte("artifact"))
	put(t, root, "debug.log", []byte("noise"))
	put(t, root, ".gitignore", []byte("# generated\nbuild/\n*.log\n"))

	fsys := newFS()
	l := &Loader{Root: root}
	res, err := l.Load(context.Background(), fsys, "/home/student/project")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"/home/student/project/.gitignore",
		"/home/student/project/README.md",
		"/home/student/project/src/main.go",
	}, res.Files)
	content, err := fsys.ReadFile("/home/student/project", "src/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", content)

	assert.False(t, fsys.Exists("/", "/home/student/project/.git"))
	assert.False(t, fsys.Exists("/", "/home/student/project/build"))
	assert.False(t, fsys.Exists("/", "/home/student/project/debug.log"))
	assert.Len(t, res.Warnings, 2, "binary and oversized files are reported")
}

func TestLoadConfiguredPatternsAndGitsimignore(t *testing.T) {
	root := t.TempDir()
	put(t, root, "keep.txt", []byte("k"))
	put(t, root, "secret.env", []byte("TOKEN=x"))
	put(t, root, "notes/todo.md", []byte("t"))
	put(t, root, ".gitsimignore", []byte("/notes/todo.md\n"))

	fsys := newFS()
	l := &Loader{Root: root, IgnorePatterns: []string{"*.env", ".gitsimignore"}}
	res, err := l.Load(context.Background(), fsys, "/home/student/p")
	require.NoError(t, err)
	assert.Equal(t, []string{"/home/student/p/keep.txt"}, res.Files)
	assert.True(t, fsys.IsDir("/", "/home/student/p/notes"))
}

func TestLoadRejectsMissingRoot(t *testing.T) {
	l := &Loader{Root: filepath.Join(t.TempDir(), "nope")}
	_, err := l.Load(context.Background(), newFS(), "/tmp/x")
	assert.Error(t, err)
}

func TestLoadHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	put(t, root, "a.txt", []byte("a"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Loader{Root: root}).Load(ctx, newFS(), "/tmp/x")
	assert.ErrorIs(t, err, context.Canceled)
}

// Feature: gitsim, Property 12: A file matching an ignore pattern is never
// copied into the virtual tree, and every other text file is.
func TestPropertyIgnorePatternFiltering(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ext := rapid.StringMatching(`[a-z]{2,4}`).Draw(rt, "ext")
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,8}`), 1, 6, func(s string) string { return s }).Draw(rt, "names")
		ignored := rapid.SliceOfN(rapid.Bool(), len(names), len(names)).Draw(rt, "ignored")

		root := t.TempDir()
		want := map[string]bool{}
		for i, n := range names {
			name := n + ".keep"
			if ignored[i] {
				name = n + "." + ext
			}
			put(t, root, name, []byte(n))
			want["/d/"+name] = !ignored[i]
		}

		fsys := newFS()
		res, err := (&Loader{Root: root, IgnorePatterns: []string{"*." + ext}}).Load(context.Background(), fsys, "/d")
		if err != nil {
			rt.Fatalf("load: %v", err)
		}
		got := map[string]bool{}
		for _, f := range res.Files {
			got[f] = true
		}
		for p, keep := range want {
			if ext == "keep" {
				keep = false
			}
			if got[p] != keep || fsys.Exists("/", p) != keep {
				rt.Fatalf("%s: copied=%v, want %v", p, got[p], keep)
			}
		}
	})
}
