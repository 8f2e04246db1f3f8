package vcs

import (
	"fmt"

	"github.com/fakeyudi/gitsim/internal/vfs"
)

// StashPush saves the index and the working tree and resets both to HEAD.
// Untracked files stay in place.
func (e *Engine) StashPush(r *Repository, wt vfs.Snapshot, message string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	head, ok := r.HeadCommit()
	if !ok {
		return Transition{}, errorf(CodeUnbornBranch, "You do not have the initial commit yet")
	}
	if len(r.Index) == 0 && ComputeChanges(r, wt).IsEmpty() {
		return Transition{}, ErrNothingToStash
	}

	branch := r.CurrentBranch()
	if branch == "" {
		branch = "(no branch)"
	}
	if message == "" {
		message = fmt.Sprintf("WIP on %s: %s %s", branch, Short(head.ID), firstLine(head.Message))
	} else {
		message = fmt.Sprintf("On %s: %s", branch, message)
	}

	next := r.Clone()
	entry := StashEntry{
		ID:        e.newID(next, "stash", head.ID, message),
		Message:   message,
		Branch:    branch,
		Index:     copyIndex(r.Index),
		Tree:      wt.Clone(),
		Timestamp: e.now(),
	}
	next.Stash = append(next.Stash, entry)
	next.Index = map[string]IndexEntry{}

	tree := head.Tree.Clone()
	for _, p := range untracked(r, wt) {
		tree[p] = wt[p]
	}
	next.Changes = ComputeChanges(next, tree)
	return Transition{Repo: next, Tree: tree, Message: "Saved working directory and index state " + message}, nil
}

// StashApply restores stash@{n} into the index and working tree. With drop
// set the entry is removed afterwards (stash pop).
func (e *Engine) StashApply(r *Repository, wt vfs.Snapshot, n int, drop bool) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	i, err := stashIndex(r, n)
	if err != nil {
		return Transition{}, err
	}
	entry := r.Stash[i]

	next := r.Clone()
	next.Index = copyIndex(entry.Index)
	tree := entry.Tree.Clone()
	head := r.HeadTree()
	for p, content := range wt {
		if _, saved := entry.Tree[p]; saved {
			continue
		}
		if _, inHead := head[p]; !inHead {
			tree[p] = content
		}
	}
	next.Changes = ComputeChanges(next, tree)

	msg := fmt.Sprintf("On branch %s\nApplied stash@{%d} (%s)", entry.Branch, n, entry.Message)
	if drop {
		next.Stash = append(next.Stash[:i:i], next.Stash[i+1:]...)
		msg = fmt.Sprintf("Dropped refs/stash@{%d} (%s)", n, Short(entry.ID))
	}
	return Transition{Repo: next, Tree: tree, Message: msg}, nil
}

// StashDrop removes stash@{n}.
func (e *Engine) StashDrop(r *Repository, n int) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	i, err := stashIndex(r, n)
	if err != nil {
		return Transition{}, err
	}
	next := r.Clone()
	id := next.Stash[i].ID
	next.Stash = append(next.Stash[:i:i], next.Stash[i+1:]...)
	return Transition{Repo: next, Message: fmt.Sprintf("Dropped refs/stash@{%d} (%s)", n, Short(id))}, nil
}

// StashClear removes every stash entry.
func (e *Engine) StashClear(r *Repository) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	next := r.Clone()
	next.Stash = nil
	return Transition{Repo: next}, nil
}

// StashList returns stash entries top first, so element n is stash@{n}.
func StashList(r *Repository) []StashEntry {
	out := make([]StashEntry, 0, len(r.Stash))
	for i := len(r.Stash) - 1; i >= 0; i-- {
		out = append(out, r.Stash[i])
	}
	return out
}

// stashIndex maps stash@{n} to a slice index.
func stashIndex(r *Repository, n int) (int, error) {
	if len(r.Stash) == 0 {
		return 0, ErrNoStash
	}
	if n < 0 || n >= len(r.Stash) {
		return 0, errorf(CodeNoStash, "error: stash@{%d} is not a valid reference", n)
	}
	return len(r.Stash) - 1 - n, nil
}
