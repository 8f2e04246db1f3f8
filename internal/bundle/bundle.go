// Package bundle exports a session as a transcript: the commands typed, how
// each was classified, and a summary of the repository they produced.
package bundle

import (
	"time"

	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/vcs"
)

// Transcript is the complete, renderable record of a session.
type Transcript struct {
	Session  SessionMeta       `json:"session" yaml:"session"`
	Commands []Entry           `json:"commands" yaml:"commands"`
	Branches map[string]string `json:"branches" yaml:"branches"`
	Head     string            `json:"head" yaml:"head"`
	Commits  []CommitSummary   `json:"commits" yaml:"commits"`
}

// SessionMeta holds summary metadata about the session.
type SessionMeta struct {
	ID        string    `json:"id" yaml:"id"`
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`
	Duration  string    `json:"duration" yaml:"duration"` // human-readable, e.g. "2h15m"
	Author    string    `json:"author,omitempty" yaml:"author,omitempty"`
	Lesson    string    `json:"lesson,omitempty" yaml:"lesson,omitempty"`
	RepoRoot  string    `json:"repo_root,omitempty" yaml:"repo_root,omitempty"`
}

// Entry is one submitted command line.
type Entry struct {
	Raw       string    `json:"raw" yaml:"raw"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Class     string    `json:"class" yaml:"class"`
	Output    string    `json:"output,omitempty" yaml:"output,omitempty"`
}

// CommitSummary is one commit reachable from any branch, newest first.
type CommitSummary struct {
	ID        string    `json:"id" yaml:"id"`
	Message   string    `json:"message" yaml:"message"`
	Parents   []string  `json:"parents,omitempty" yaml:"parents,omitempty"`
	Author    string    `json:"author" yaml:"author"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// FromSession builds a transcript of sess. end is the export time.
func FromSession(sess *session.Session, author string, end time.Time) *Transcript {
	t := &Transcript{
		Session: SessionMeta{
			ID:        sess.ID,
			StartTime: sess.StartTime,
			EndTime:   end,
			Duration:  end.Sub(sess.StartTime).Round(time.Second).String(),
			Author:    author,
			Lesson:    sess.Lesson,
		},
		Commands: []Entry{},
		Branches: map[string]string{},
		Commits:  []CommitSummary{},
	}
	st := sess.State
	if st == nil {
		return t
	}
	for _, h := range st.History {
		t.Commands = append(t.Commands, Entry(h))
	}

	r := st.Repo
	if r == nil || !r.Initialized {
		return t
	}
	t.Session.RepoRoot = r.Root
	for name, id := range r.Branches {
		t.Branches[name] = id
	}
	if name, ok := r.Head.Branch(); ok {
		t.Head = name
	} else if id, ok := r.Head.Detached(); ok {
		t.Head = id
	}
	commits, _ := vcs.History(r, vcs.LogOptions{All: true})
	for _, c := range commits {
		t.Commits = append(t.Commits, CommitSummary{
			ID:        c.ID,
			Message:   c.Message,
			Parents:   c.Parents(),
			Author:    c.Author.String(),
			Timestamp: c.Timestamp,
		})
	}
	return t
}

// Lines returns the command lines of the transcript in order.
func (t *Transcript) Lines() []string {
	out := make([]string, len(t.Commands))
	for i, c := range t.Commands {
		out[i] = c.Raw
	}
	return out
}
