package vcs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fakeyudi/gitsim/internal/logging"
	"github.com/fakeyudi/gitsim/internal/vfs"
)

// RemoteAdd registers a remote with an empty commit graph.
func (e *Engine) RemoteAdd(r *Repository, name, url string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	if name == "" || url == "" {
		return Transition{}, errorf(CodeMissingOperand, "usage: git remote add <name> <url>")
	}
	if _, ok := r.Remotes[name]; ok {
		return Transition{}, errorf(CodeRemoteExists, "error: remote %s already exists.", name)
	}
	next := r.Clone()
	next.Remotes[name] = &Remote{Name: name, URL: url, Graph: newGraph(), Branches: map[string]string{}}
	return Transition{Repo: next}, nil
}

// RemoteRemove deletes a remote along with its remote-tracking refs and any
// upstreams that point at it.
func (e *Engine) RemoteRemove(r *Repository, name string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	if _, ok := r.Remotes[name]; !ok {
		return Transition{}, errorf(CodeRemoteNotFound, "error: No such remote: '%s'", name)
	}
	next := r.Clone()
	delete(next.Remotes, name)
	for ref := range next.RemoteRefs {
		if strings.HasPrefix(ref, name+"/") {
			delete(next.RemoteRefs, ref)
		}
	}
	for branch, up := range next.Upstreams {
		if strings.HasPrefix(up, name+"/") {
			delete(next.Upstreams, branch)
		}
	}
	return Transition{Repo: next}, nil
}

// RemoteNames returns the configured remotes sorted.
func RemoteNames(r *Repository) []string {
	out := make([]string, 0, len(r.Remotes))
	for name := range r.Remotes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PushOptions controls Push.
type PushOptions struct {
	SetUpstream bool
	Force       bool
}

// Push copies every ancestor of the local branch that the remote lacks and
// moves the remote branch pointer. A non-fast-forward update is rejected
// unless forced.
func (e *Engine) Push(r *Repository, remote, branch string, opts PushOptions) (t Transition, err error) {
	done := logging.Op("vcs.push", "remote", remote, "branch", branch)
	defer func() { done(err) }()

	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	rm, ok := r.Remotes[remote]
	if !ok {
		return Transition{}, errorf(CodeRemoteNotFound, "fatal: '%s' does not appear to be a git repository\nfatal: Could not read from remote repository.", remote)
	}
	local := r.Branches[branch]
	if local == "" {
		return Transition{}, errorf(CodeRefspec, "error: src refspec %s does not match any\nerror: failed to push some refs to '%s'", branch, rm.URL)
	}

	ref := remote + "/" + branch
	prev, existed := rm.Branches[branch]
	if existed && prev == local {
		next := r.Clone()
		next.RemoteRefs[ref] = local
		if opts.SetUpstream {
			next.Upstreams[branch] = ref
		}
		return Transition{Repo: next, Message: "Everything up-to-date", Info: true}, nil
	}
	if existed && !opts.Force && !r.Graph.IsAncestor(prev, local) {
		return Transition{}, errorf(CodeRejected, "To %s\n ! [rejected]        %s -> %s (fetch first)\nerror: failed to push some refs to '%s'\nhint: Updates were rejected because the remote contains work that you do\nhint: not have locally. Integrate the remote changes (e.g. 'git pull')\nhint: before pushing again.", rm.URL, branch, branch, rm.URL)
	}

	next := r.Clone()
	nrm := next.Remotes[remote]
	for _, c := range r.Graph.Missing(r.Graph.Ancestors(local), nrm.Graph) {
		nrm.Graph.Add(c)
	}
	nrm.Branches[branch] = local
	next.RemoteRefs[ref] = local

	var b strings.Builder
	fmt.Fprintf(&b, "To %s\n", rm.URL)
	switch {
	case !existed:
		fmt.Fprintf(&b, " * [new branch]      %s -> %s", branch, branch)
	case opts.Force && !r.Graph.IsAncestor(prev, local):
		fmt.Fprintf(&b, " + %s...%s %s -> %s (forced update)", Short(prev), Short(local), branch, branch)
	default:
		fmt.Fprintf(&b, "   %s..%s  %s -> %s", Short(prev), Short(local), branch, branch)
	}
	if opts.SetUpstream {
		next.Upstreams[branch] = ref
		fmt.Fprintf(&b, "\nbranch '%s' set up to track '%s'.", branch, ref)
	}
	return Transition{Repo: next, Message: b.String()}, nil
}

// Fetch copies the remote's commits into the local graph and updates the
// remote-tracking refs.
func (e *Engine) Fetch(r *Repository, remote string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	rm, ok := r.Remotes[remote]
	if !ok {
		return Transition{}, errorf(CodeRemoteNotFound, "fatal: '%s' does not appear to be a git repository\nfatal: Could not read from remote repository.", remote)
	}

	next := r.Clone()
	all := make(map[string]bool, rm.Graph.Len())
	for id := range rm.Graph.Commits {
		all[id] = true
	}
	for _, c := range rm.Graph.Missing(all, next.Graph) {
		next.Graph.Add(c)
	}

	var lines []string
	names := make([]string, 0, len(rm.Branches))
	for name := range rm.Branches {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ref := remote + "/" + name
		id := rm.Branches[name]
		prev, known := r.RemoteRefs[ref]
		switch {
		case !known:
			lines = append(lines, fmt.Sprintf(" * [new branch]      %s -> %s", name, ref))
		case prev != id:
			lines = append(lines, fmt.Sprintf("   %s..%s  %s -> %s", Short(prev), Short(id), name, ref))
		}
		next.RemoteRefs[ref] = id
	}
	if len(lines) == 0 {
		return Transition{Repo: next, Info: true}, nil
	}
	return Transition{Repo: next, Message: fmt.Sprintf("From %s\n%s", rm.URL, strings.Join(lines, "\n"))}, nil
}

// Pull fetches remote and integrates branch into the current branch: a
// fast-forward when possible, otherwise a merge commit.
func (e *Engine) Pull(r *Repository, wt vfs.Snapshot, remote, branch string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	current := r.CurrentBranch()
	if current == "" {
		return Transition{}, errorf(CodeDetachedHead, "You are not currently on a branch.\nPlease specify which branch you want to merge with.")
	}
	fetched, err := e.Fetch(r, remote)
	if err != nil {
		return Transition{}, err
	}
	next := fetched.Repo
	ref := remote + "/" + branch
	theirs, ok := next.RemoteRefs[ref]
	if !ok || theirs == "" {
		return Transition{}, errorf(CodeRemoteRefNotFound, "fatal: couldn't find remote ref %s", branch)
	}
	prefix := ""
	if fetched.Message != "" {
		prefix = fetched.Message + "\n"
	}

	ours := next.Branches[current]
	if ours == theirs || next.Graph.IsAncestor(theirs, ours) {
		return Transition{Repo: next, Message: prefix + "Already up to date.", Info: prefix == ""}, nil
	}
	if err := refuseStaged(next, "merge"); err != nil {
		return Transition{}, err
	}

	if ours == "" || next.Graph.IsAncestor(ours, theirs) {
		from := next.HeadTree()
		to := next.Graph.Commits[theirs].Tree
		next.Branches[current] = theirs
		next.Index = map[string]IndexEntry{}
		next.track(to.Paths()...)
		tree := applyDelta(wt, from, to)
		next.Changes = ComputeChanges(next, tree)
		msg := fmt.Sprintf("%sUpdating %s..%s\nFast-forward\n %s changed", prefix, Short(ours), Short(theirs), plural(diffCount(from, to), "file"))
		return Transition{Repo: next, Tree: tree, Message: msg}, nil
	}

	merged, tree := e.mergeCommit(next, wt, ours, theirs, fmt.Sprintf("Merge branch '%s' of %s", branch, next.Remotes[remote].URL))
	msg := fmt.Sprintf("%sMerge made by the 'ort' strategy.\n %s changed", prefix, plural(diffCount(next.HeadTree(), merged.HeadTree()), "file"))
	return Transition{Repo: merged, Tree: tree, Message: msg}, nil
}
