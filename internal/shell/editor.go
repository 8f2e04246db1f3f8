package shell

import (
	"github.com/fakeyudi/gitsim/internal/session"
)

// SaveFile writes content to path (relative to the working directory) and
// returns the resulting state. Like Execute, it leaves st untouched. Missing
// parent directories are created.
func (sh *Shell) SaveFile(st *session.State, path, content string) (*session.State, error) {
	next := st.Clone()
	abs := next.FS.Abs(next.Cwd, path)
	if dir := parentDir(abs); dir != "/" {
		if err := next.FS.Mkdir("/", dir, true); err != nil {
			return st, err
		}
	}
	if err := next.FS.WriteFile("/", abs, content, false); err != nil {
		return st, err
	}
	sh.refresh(next)
	return next, nil
}

// LoadFile returns the content of path for editing.
func (sh *Shell) LoadFile(st *session.State, path string) (string, error) {
	return st.FS.ReadFile(st.Cwd, path)
}

func parentDir(abs string) string {
	for i := len(abs) - 1; i > 0; i-- {
		if abs[i] == '/' {
			return abs[:i]
		}
	}
	return "/"
}
