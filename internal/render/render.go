// Package render turns repository state into classified output lines. Every
// function is a pure read of its inputs.
package render

import "strings"

// Kind classifies a line for styling.
type Kind int

const (
	Normal Kind = iota
	Header
	Hint
	Staged
	Modified
	Deleted
	Untracked
	Branch
	BranchCurrent
	Commit
	Added
	Removed
)

var kindNames = map[Kind]string{
	Normal:        "normal",
	Header:        "header",
	Hint:          "hint",
	Staged:        "staged",
	Modified:      "modified",
	Deleted:       "deleted",
	Untracked:     "untracked",
	Branch:        "branch",
	BranchCurrent: "branch-current",
	Commit:        "commit",
	Added:         "added",
	Removed:       "removed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "normal"
}

// ParseKind is the inverse of Kind.String. Unknown names map to Normal.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return Normal
}

// Line is one line of output. Tooltip explains the concept behind the line.
type Line struct {
	Text    string `json:"text"`
	Kind    Kind   `json:"kind"`
	Tooltip string `json:"tooltip,omitempty"`
}

// Plain splits text into Normal lines. Empty text yields no lines.
func Plain(text string) []Line {
	return Classified(text, Normal)
}

// Classified splits text into lines of one kind.
func Classified(text string, kind Kind) []Line {
	if text == "" {
		return nil
	}
	parts := strings.Split(strings.TrimRight(text, "\n"), "\n")
	lines := make([]Line, len(parts))
	for i, p := range parts {
		lines[i] = Line{Text: p, Kind: kind}
	}
	return lines
}

// Text joins lines with newlines.
func Text(lines []Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

func line(kind Kind, text, tooltip string) Line {
	return Line{Text: text, Kind: kind, Tooltip: tooltip}
}

const (
	tipStaged    = "Staged: this change is in the index and will be part of the next commit."
	tipModified  = "Modified: the file differs from the staged/committed version. Use git add to stage it."
	tipDeleted   = "Deleted: a tracked file is missing from the working tree."
	tipUntracked = "Untracked: git has never recorded this file. Use git add to start tracking it."
	tipBranch    = "A branch is a movable pointer to a commit."
	tipCurrent   = "HEAD: the branch you are on. New commits advance it."
	tipDetached  = "Detached HEAD: HEAD points at a commit, not a branch. New commits belong to no branch."
	tipCommit    = "A commit is a snapshot of the whole project plus a pointer to its parent."
	tipMerge     = "A merge commit has two parents: the branch you were on and the branch you merged."
	tipStash     = "A stash entry holds changes set aside with git stash."
	tipRemote    = "A remote is another copy of the repository you push to and pull from."
)
