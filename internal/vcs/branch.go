package vcs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fakeyudi/gitsim/internal/vfs"
)

// ValidBranchName reports whether name can be used as a branch name.
func ValidBranchName(name string) bool {
	if name == "" || name == "HEAD" || strings.HasPrefix(name, "-") || strings.HasSuffix(name, "/") {
		return false
	}
	if strings.ContainsAny(name, " \t~^:?*[\\") || strings.Contains(name, "..") {
		return false
	}
	return true
}

// Branch creates name at startRef, or at HEAD when startRef is empty.
func (e *Engine) Branch(r *Repository, name, startRef string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	if !ValidBranchName(name) {
		return Transition{}, errorf(CodeInvalidName, "fatal: '%s' is not a valid branch name", name)
	}
	if _, ok := r.Branches[name]; ok {
		return Transition{}, errorf(CodeBranchExists, "fatal: a branch named '%s' already exists", name)
	}
	id, err := startPoint(r, startRef)
	if err != nil {
		return Transition{}, err
	}
	next := r.Clone()
	next.Branches[name] = id
	return Transition{Repo: next}, nil
}

func startPoint(r *Repository, ref string) (string, error) {
	if ref == "" {
		id := r.HeadCommitID()
		if id == "" {
			return "", errorf(CodeUnbornBranch, "fatal: not a valid object name: '%s'", r.CurrentBranch())
		}
		return id, nil
	}
	id, err := ResolveRef(r, ref)
	if err != nil {
		return "", errorf(CodeUnknownRef, "fatal: not a valid object name: '%s'", ref)
	}
	return id, nil
}

// DeleteBranch removes a branch pointer. Unless force is set, the branch
// must be merged into HEAD.
func (e *Engine) DeleteBranch(r *Repository, name string, force bool) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	id, ok := r.Branches[name]
	if !ok {
		return Transition{}, errorf(CodeBranchNotFound, "error: branch '%s' not found.", name)
	}
	if r.CurrentBranch() == name {
		return Transition{}, errorf(CodeBranchCheckedOut, "error: Cannot delete branch '%s' checked out at '%s'", name, r.Root)
	}
	if !force && id != "" && !r.Graph.IsAncestor(id, r.HeadCommitID()) {
		return Transition{}, errorf(CodeNotMerged, "error: The branch '%s' is not fully merged.\nIf you are sure you want to delete it, run 'git branch -D %s'.", name, name)
	}
	next := r.Clone()
	delete(next.Branches, name)
	delete(next.Upstreams, name)
	return Transition{Repo: next, Message: fmt.Sprintf("Deleted branch %s (was %s).", name, Short(id))}, nil
}

// RenameBranch renames oldName to newName, following HEAD if it is checked
// out.
func (e *Engine) RenameBranch(r *Repository, oldName, newName string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	id, ok := r.Branches[oldName]
	if !ok {
		return Transition{}, errorf(CodeBranchNotFound, "error: refname refs/heads/%s not found", oldName)
	}
	if !ValidBranchName(newName) {
		return Transition{}, errorf(CodeInvalidName, "fatal: '%s' is not a valid branch name", newName)
	}
	if _, ok := r.Branches[newName]; ok && newName != oldName {
		return Transition{}, errorf(CodeBranchExists, "fatal: a branch named '%s' already exists", newName)
	}
	next := r.Clone()
	delete(next.Branches, oldName)
	next.Branches[newName] = id
	if up, ok := next.Upstreams[oldName]; ok {
		delete(next.Upstreams, oldName)
		next.Upstreams[newName] = up
	}
	if r.CurrentBranch() == oldName {
		next.Head = BranchHead(newName)
	}
	return Transition{Repo: next}, nil
}

// Checkout switches HEAD to a branch, detaches it at a commit, or with
// create set makes a new branch first. Moving to another commit replaces
// the working tree wholesale and clears the index.
func (e *Engine) Checkout(r *Repository, target string, create bool) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	if target == "" {
		return Transition{}, errorf(CodeMissingOperand, "fatal: you must specify a branch to checkout")
	}

	if create {
		if !ValidBranchName(target) {
			return Transition{}, errorf(CodeInvalidName, "fatal: '%s' is not a valid branch name", target)
		}
		if _, ok := r.Branches[target]; ok {
			return Transition{}, errorf(CodeBranchExists, "fatal: a branch named '%s' already exists", target)
		}
		next := r.Clone()
		next.Branches[target] = r.HeadCommitID()
		next.Head = BranchHead(target)
		return Transition{Repo: next, Message: fmt.Sprintf("Switched to a new branch '%s'", target)}, nil
	}

	if id, ok := r.Branches[target]; ok {
		if r.CurrentBranch() == target {
			return Transition{Repo: r.Clone(), Message: fmt.Sprintf("Already on '%s'", target), Info: true}, nil
		}
		next := r.Clone()
		next.Head = BranchHead(target)
		msg := fmt.Sprintf("Switched to branch '%s'", target)
		if _, ahead, behind, ok := AheadBehind(next, target); ok {
			msg += "\n" + trackingSummary(next.Upstreams[target], ahead, behind)
		}
		return switchTree(next, id, msg), nil
	}

	// A remote-tracking branch with the same name creates a local tracking
	// branch.
	if remoteRef, ok := uniqueRemoteBranch(r, target); ok {
		next := r.Clone()
		next.Branches[target] = r.RemoteRefs[remoteRef]
		next.Upstreams[target] = remoteRef
		next.Head = BranchHead(target)
		msg := fmt.Sprintf("branch '%s' set up to track '%s'.\nSwitched to a new branch '%s'", target, remoteRef, target)
		return switchTree(next, r.RemoteRefs[remoteRef], msg), nil
	}

	id, err := ResolveRef(r, target)
	if err != nil {
		return Transition{}, errorf(CodeUnknownRef, "error: pathspec '%s' did not match any file(s) known to git", target)
	}
	next := r.Clone()
	next.Head = DetachedHead(id)
	c := r.Graph.Commits[id]
	msg := fmt.Sprintf("Note: switching to '%s'.\n\nYou are in 'detached HEAD' state. You can look around, make experimental\nchanges and commit them, and you can discard any commits you make in this\nstate by switching back to a branch.\n\nHEAD is now at %s %s", target, Short(id), firstLine(c.Message))
	return switchTree(next, id, msg), nil
}

func switchTree(next *Repository, id, msg string) Transition {
	tree := vfs.Snapshot{}
	if c, ok := next.Graph.Get(id); ok {
		tree = c.Tree.Clone()
	}
	next.Index = map[string]IndexEntry{}
	next.track(tree.Paths()...)
	next.Changes = Changes{Modified: []string{}, Deleted: []string{}}
	return Transition{Repo: next, Tree: tree, Message: msg}
}

func uniqueRemoteBranch(r *Repository, branch string) (string, bool) {
	var found []string
	for ref := range r.RemoteRefs {
		if i := strings.IndexByte(ref, '/'); i >= 0 && ref[i+1:] == branch {
			found = append(found, ref)
		}
	}
	sort.Strings(found)
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}

func trackingSummary(upstream string, ahead, behind int) string {
	switch {
	case ahead == 0 && behind == 0:
		return fmt.Sprintf("Your branch is up to date with '%s'.", upstream)
	case behind == 0:
		return fmt.Sprintf("Your branch is ahead of '%s' by %s.", upstream, plural(ahead, "commit"))
	case ahead == 0:
		return fmt.Sprintf("Your branch is behind '%s' by %s, and can be fast-forwarded.", upstream, plural(behind, "commit"))
	}
	return fmt.Sprintf("Your branch and '%s' have diverged,\nand have %d and %d different commits each, respectively.", upstream, ahead, behind)
}

// TrackingSummary describes how branch relates to its upstream, or "" when
// it has none.
func TrackingSummary(r *Repository, branch string) string {
	upstream, ahead, behind, ok := AheadBehind(r, branch)
	if !ok {
		return ""
	}
	return trackingSummary(upstream, ahead, behind)
}

// Restore discards working-tree changes to paths, taking content from the
// index (or HEAD). With staged set it unstages paths instead.
func (e *Engine) Restore(r *Repository, wt vfs.Snapshot, paths []string, staged bool) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	if len(paths) == 0 {
		return Transition{}, errorf(CodeMissingOperand, "fatal: you must specify path(s) to restore")
	}
	next := r.Clone()

	if staged {
		for _, p := range paths {
			p = normalize(p)
			matched := false
			for _, staged := range r.StagedPaths() {
				if p == "" || staged == p || strings.HasPrefix(staged, p+"/") {
					delete(next.Index, staged)
					matched = true
				}
			}
			if !matched && len(r.HeadTree().Under(p)) == 0 && len(wt.Under(p)) == 0 {
				return Transition{}, errorf(CodeUnknownRef, "error: pathspec '%s' did not match any file(s) known to git", p)
			}
		}
		next.Changes = ComputeChanges(next, wt)
		return Transition{Repo: next}, nil
	}

	base := r.IndexTree()
	tree := wt.Clone()
	for _, p := range paths {
		p = normalize(p)
		files := base.Under(p)
		if len(files) == 0 {
			return Transition{}, errorf(CodeUnknownRef, "error: pathspec '%s' did not match any file(s) known to git", p)
		}
		for _, f := range files {
			tree[f] = base[f]
		}
	}
	next.Changes = ComputeChanges(next, tree)
	return Transition{Repo: next, Tree: tree}, nil
}

func normalize(p string) string {
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}
