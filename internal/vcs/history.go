package vcs

import (
	"fmt"
	"strings"

	"github.com/fakeyudi/gitsim/internal/vfs"
)

// ResetMode selects how much state reset rewrites.
type ResetMode int

const (
	ResetMixed ResetMode = iota
	ResetSoft
	ResetHard
)

func (m ResetMode) String() string {
	switch m {
	case ResetSoft:
		return "soft"
	case ResetHard:
		return "hard"
	}
	return "mixed"
}

// Reset moves the current branch (or detached HEAD) to ref. Soft keeps the
// index and working tree, so the undone commits show up as staged. Mixed
// clears the index. Hard also replaces the working tree with ref's tree.
func (e *Engine) Reset(r *Repository, wt vfs.Snapshot, mode ResetMode, ref string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	if ref == "" {
		ref = "HEAD"
	}
	id, err := ResolveRef(r, ref)
	if err != nil {
		return Transition{}, errorf(CodeResolveFailed, "fatal: failed to resolve '%s' as a valid ref.", ref)
	}
	target := r.Graph.Commits[id]
	staged := r.IndexTree()

	next := r.Clone()
	next.moveHead(id)
	next.Index = map[string]IndexEntry{}

	switch mode {
	case ResetSoft:
		for p, content := range staged {
			stage(next, target.Tree, p, content, false)
		}
		for _, p := range removedPaths(target.Tree, staged) {
			stage(next, target.Tree, p, "", true)
		}
		next.Changes = ComputeChanges(next, wt)
		return Transition{Repo: next}, nil

	case ResetHard:
		tree := target.Tree.Clone()
		next.track(tree.Paths()...)
		next.Changes = ComputeChanges(next, tree)
		return Transition{Repo: next, Tree: tree, Message: fmt.Sprintf("HEAD is now at %s %s", Short(id), firstLine(target.Message))}, nil
	}

	next.Changes = ComputeChanges(next, wt)
	var b strings.Builder
	for _, p := range next.Changes.Modified {
		fmt.Fprintf(&b, "\nM\t%s", p)
	}
	for _, p := range next.Changes.Deleted {
		fmt.Fprintf(&b, "\nD\t%s", p)
	}
	msg := ""
	if b.Len() > 0 {
		msg = "Unstaged changes after reset:" + b.String()
	}
	return Transition{Repo: next, Message: msg}, nil
}

// Unstage removes paths from the index (reset <path>).
func (e *Engine) Unstage(r *Repository, wt vfs.Snapshot, paths []string) (Transition, error) {
	return e.Restore(r, wt, paths, true)
}

// Revert records a commit whose tree is the reverted commit's parent tree.
// The working tree receives the change from HEAD to that tree.
func (e *Engine) Revert(r *Repository, wt vfs.Snapshot, ref string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	if ref == "" {
		return Transition{}, errorf(CodeMissingOperand, "usage: git revert <commit>")
	}
	id, err := ResolveRef(r, ref)
	if err != nil {
		return Transition{}, errorf(CodeBadRevision, "fatal: bad revision '%s'", ref)
	}
	head := r.HeadCommitID()
	if head == "" {
		return Transition{}, errorf(CodeUnbornBranch, "fatal: your current branch '%s' does not have any commits yet", r.CurrentBranch())
	}
	reverted := r.Graph.Commits[id]
	tree := vfs.Snapshot{}
	if parent, ok := r.Graph.Get(reverted.ParentID); ok {
		tree = parent.Tree.Clone()
	}

	message := fmt.Sprintf("Revert \"%s\"\n\nThis reverts commit %s.", firstLine(reverted.Message), reverted.ID)
	headTree := r.HeadTree()
	next := r.Clone()
	c := e.newCommit(next, head, "", message, tree)
	next.Index = map[string]IndexEntry{}
	next.track(tree.Paths()...)
	next.untrack(removedPaths(headTree, tree)...)
	newTree := applyDelta(wt, headTree, tree)
	next.Changes = ComputeChanges(next, newTree)

	label := next.CurrentBranch()
	if label == "" {
		label = "detached HEAD"
	}
	msg := fmt.Sprintf("[%s %s] %s\n %s changed", label, Short(c.ID), firstLine(message), plural(diffCount(headTree, tree), "file"))
	return Transition{Repo: next, Tree: newTree, Message: msg}, nil
}
