package render

import (
	"fmt"
	"sort"

	"github.com/fakeyudi/gitsim/internal/vcs"
)

// BranchOptions mirrors `git branch` listing flags.
type BranchOptions struct {
	All     bool // -a: local and remote-tracking
	Remote  bool // -r: remote-tracking only
	Verbose bool // -v: show the tip commit
}

// Branches renders the branch list with the current branch marked.
func Branches(r *vcs.Repository, opts BranchOptions) []Line {
	var out []Line
	if !opts.Remote {
		if id, ok := r.Head.Detached(); ok {
			out = append(out, line(BranchCurrent, fmt.Sprintf("* (HEAD detached at %s)", vcs.Short(id)), tipDetached))
		}
		current := r.CurrentBranch()
		for _, name := range r.BranchNames() {
			id := r.Branches[name]
			if id == "" {
				continue
			}
			text := name
			if opts.Verbose {
				text = fmt.Sprintf("%-12s %s %s", name, vcs.Short(id), firstLine(r.Graph.Commits[id].Message))
			}
			if name == current {
				out = append(out, line(BranchCurrent, "* "+text, tipCurrent))
			} else {
				out = append(out, line(Branch, "  "+text, tipBranch))
			}
		}
	}
	if opts.All || opts.Remote {
		refs := make([]string, 0, len(r.RemoteRefs))
		for ref := range r.RemoteRefs {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			name := ref
			if opts.All {
				name = "remotes/" + ref
			}
			out = append(out, line(Branch, "  "+name, "A remote-tracking branch records where the remote's branch was at the last fetch or push."))
		}
	}
	return out
}

// StashList renders `git stash list`.
func StashList(r *vcs.Repository) []Line {
	var out []Line
	for i, s := range vcs.StashList(r) {
		out = append(out, line(Normal, fmt.Sprintf("stash@{%d}: %s", i, s.Message), tipStash))
	}
	return out
}

// Remotes renders `git remote [-v]`.
func Remotes(r *vcs.Repository, verbose bool) []Line {
	var out []Line
	for _, name := range vcs.RemoteNames(r) {
		if !verbose {
			out = append(out, line(Normal, name, tipRemote))
			continue
		}
		url := r.Remotes[name].URL
		out = append(out,
			line(Normal, fmt.Sprintf("%s\t%s (fetch)", name, url), tipRemote),
			line(Normal, fmt.Sprintf("%s\t%s (push)", name, url), tipRemote),
		)
	}
	return out
}
