package vcs

import (
	"fmt"
	"strings"

	"github.com/fakeyudi/gitsim/internal/logging"
	"github.com/fakeyudi/gitsim/internal/vfs"
)

// Merge joins target into the current branch with a two-parent commit. When
// target is already contained in HEAD nothing changes. Textual conflicts
// are not modeled: paths changed on both sides take target's content.
func (e *Engine) Merge(r *Repository, wt vfs.Snapshot, target, message string) (t Transition, err error) {
	done := logging.Op("vcs.merge", "target", target)
	defer func() { done(err) }()

	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	if target == "" {
		return Transition{}, errorf(CodeMissingOperand, "fatal: you must specify a branch to merge")
	}
	theirs, err := mergeTarget(r, target)
	if err != nil {
		return Transition{}, err
	}
	ours := r.HeadCommitID()
	if ours == "" {
		return Transition{}, errorf(CodeUnbornBranch, "fatal: your current branch '%s' does not have any commits yet", r.CurrentBranch())
	}
	if theirs == ours || r.Graph.IsAncestor(theirs, ours) {
		return Transition{Repo: r.Clone(), Message: "Already up to date.", Info: true}, nil
	}
	if err := refuseStaged(r, "merge"); err != nil {
		return Transition{}, err
	}

	if message == "" {
		message = fmt.Sprintf("Merge branch '%s'", target)
		if name := r.CurrentBranch(); name != "" && name != e.DefaultBranch {
			message += " into " + name
		}
	}
	next, tree := e.mergeCommit(r, wt, ours, theirs, message)
	return Transition{
		Repo:    next,
		Tree:    tree,
		Message: fmt.Sprintf("Merge made by the 'ort' strategy.\n %s changed", plural(diffCount(r.HeadTree(), next.HeadTree()), "file")),
	}, nil
}

// refuseStaged fails when the index holds staged changes, which a merge
// commit would otherwise drop.
func refuseStaged(r *Repository, op string) error {
	if len(r.Index) == 0 {
		return nil
	}
	return errorf(CodeDirtyIndex, "error: Your local changes to the following files would be overwritten by %s:\n\t%s\nPlease commit your changes or stash them before you %s.\nAborting",
		op, strings.Join(r.StagedPaths(), "\n\t"), op)
}

// mergeTarget resolves a merge operand: a branch with commits, a
// remote-tracking ref or a commit.
func mergeTarget(r *Repository, target string) (string, error) {
	if id, ok := r.Branches[target]; ok {
		if id == "" {
			return "", errorf(CodeNotMergeable, "merge: %s - not something we can merge", target)
		}
		return id, nil
	}
	id, err := ResolveRef(r, target)
	if err != nil {
		return "", errorf(CodeNotMergeable, "merge: %s - not something we can merge", target)
	}
	return id, nil
}

// mergeCommit records the merge of theirs into ours and returns the new
// repository and working tree. Local edits to paths the merge does not
// touch survive.
func (e *Engine) mergeCommit(r *Repository, wt vfs.Snapshot, ours, theirs, message string) (*Repository, vfs.Snapshot) {
	base := vfs.Snapshot{}
	if c, ok := r.Graph.Get(r.Graph.MergeBase(ours, theirs)); ok {
		base = c.Tree
	}
	oursTree := r.Graph.Commits[ours].Tree
	merged := threeWay(base, oursTree, r.Graph.Commits[theirs].Tree)

	next := r.Clone()
	e.newCommit(next, ours, theirs, message, merged)
	next.Index = map[string]IndexEntry{}
	next.track(merged.Paths()...)
	next.untrack(removedPaths(oursTree, merged)...)
	tree := applyDelta(wt, oursTree, merged)
	next.Changes = ComputeChanges(next, tree)
	return next, tree
}
