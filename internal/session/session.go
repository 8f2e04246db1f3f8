package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/gitsim/internal/vcs"
	"github.com/fakeyudi/gitsim/internal/vfs"
)

// Session is a persisted simulator session.
type Session struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	UpdatedAt time.Time `json:"updated_at"`
	Lesson    string    `json:"lesson,omitempty"`
	State     *State    `json:"state"`
}

// New wraps st in a fresh session.
func New(st *State, now time.Time) *Session {
	return &Session{ID: uuid.NewString(), StartTime: now, UpdatedAt: now, State: st}
}

// State is everything a command can observe or change: the virtual
// filesystem, the repository, the working directory and the command history.
// A State handed out by the dispatcher is never mutated afterwards.
type State struct {
	FS      *vfs.FS         `json:"fs"`
	Repo    *vcs.Repository `json:"repo"`
	Cwd     string          `json:"cwd"`
	History []HistoryEntry  `json:"history"`
}

// HistoryEntry records one submitted command line and how it was classified.
type HistoryEntry struct {
	Raw       string    `json:"raw"`
	Timestamp time.Time `json:"timestamp"`
	Class     string    `json:"class"`
	Output    string    `json:"output,omitempty"`
}

// NewState returns a state with an empty home directory for owner and no
// repository.
func NewState(owner string, clock func() time.Time) *State {
	fsys := vfs.New(owner, clock)
	return &State{FS: fsys, Repo: vcs.NewRepository(), Cwd: fsys.Home()}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	return &State{
		FS:      s.FS.Clone(),
		Repo:    s.Repo.Clone(),
		Cwd:     s.Cwd,
		History: append([]HistoryEntry(nil), s.History...),
	}
}

// InRepo reports whether the working directory lies inside the repository.
func (s *State) InRepo() bool {
	if !s.Repo.Initialized {
		return false
	}
	_, ok := vfs.Rel(s.Repo.Root, s.Cwd)
	return ok
}

// RepoPath converts p (relative to the working directory) to a path relative
// to the repository root. ok is false when p lies outside the repository.
func (s *State) RepoPath(p string) (string, bool) {
	if !s.Repo.Initialized {
		return "", false
	}
	return vfs.Rel(s.Repo.Root, s.FS.Abs(s.Cwd, p))
}

// Worktree snapshots the files under the repository root.
func (s *State) Worktree() (vfs.Snapshot, error) {
	if !s.Repo.Initialized {
		return vfs.Snapshot{}, nil
	}
	if !s.FS.Exists("/", s.Repo.Root) {
		return vfs.Snapshot{}, nil
	}
	return s.FS.Snapshot(s.Repo.Root)
}

// LastEntry returns the most recent history entry.
func (s *State) LastEntry() (HistoryEntry, bool) {
	if len(s.History) == 0 {
		return HistoryEntry{}, false
	}
	return s.History[len(s.History)-1], true
}
