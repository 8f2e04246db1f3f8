package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fakeyudi/gitsim/internal/vcs"
)

// dateLayout matches git's default log date format.
const dateLayout = "Mon Jan 2 15:04:05 2006 -0700"

// LogOptions mirrors the supported `git log` flags.
type LogOptions struct {
	Oneline bool
	Limit   int
	All     bool
	Ref     string
}

// Unborn reports whether a log with opts has nothing to show because the
// current branch has no commits yet.
func Unborn(r *vcs.Repository, opts LogOptions) bool {
	return opts.Ref == "" && !opts.All && r.HeadCommitID() == ""
}

// Log renders commit history reachable from HEAD (or opts.Ref). On an
// unborn branch it returns a single hint line.
func Log(r *vcs.Repository, opts LogOptions) ([]Line, error) {
	if Unborn(r, opts) {
		return []Line{line(Hint, fmt.Sprintf("your current branch '%s' does not have any commits yet", r.CurrentBranch()), "")}, nil
	}
	commits, err := vcs.History(r, vcs.LogOptions{All: opts.All, Limit: opts.Limit, From: opts.Ref})
	if err != nil {
		return nil, err
	}
	decor := Decorations(r)

	var out []Line
	for i, c := range commits {
		refs := ""
		if d := decor[c.ID]; len(d) > 0 {
			refs = " (" + strings.Join(d, ", ") + ")"
		}
		tip := tipCommit
		if c.IsMerge() {
			tip = tipMerge
		}
		if opts.Oneline {
			out = append(out, line(Commit, vcs.Short(c.ID)+refs+" "+firstLine(c.Message), tip))
			continue
		}
		if i > 0 {
			out = append(out, line(Normal, "", ""))
		}
		out = append(out, commitHeader(c, refs, tip)...)
	}
	return out, nil
}

func commitHeader(c vcs.Commit, refs, tip string) []Line {
	out := []Line{line(Commit, "commit "+c.ID+refs, tip)}
	if c.IsMerge() {
		out = append(out, line(Normal, fmt.Sprintf("Merge: %s %s", vcs.Short(c.ParentID), vcs.Short(c.MergeParentID)), tipMerge))
	}
	out = append(out,
		line(Normal, "Author: "+c.Author.String(), ""),
		line(Normal, "Date:   "+c.Timestamp.Format(dateLayout), ""),
		line(Normal, "", ""),
	)
	for _, l := range strings.Split(c.Message, "\n") {
		out = append(out, line(Normal, "    "+l, ""))
	}
	return out
}

// Show renders a commit followed by the diff against its first parent.
func Show(r *vcs.Repository, ref string) ([]Line, error) {
	if ref == "" {
		ref = "HEAD"
	}
	id, err := vcs.ResolveRef(r, ref)
	if err != nil {
		return nil, err
	}
	c := r.Graph.Commits[id]
	refs := ""
	if d := Decorations(r)[id]; len(d) > 0 {
		refs = " (" + strings.Join(d, ", ") + ")"
	}
	out := commitHeader(c, refs, tipCommit)
	parent, _ := r.Graph.Get(c.ParentID)
	if diff := Diff(parent.Tree, c.Tree); len(diff) > 0 {
		out = append(out, line(Normal, "", ""))
		out = append(out, diff...)
	}
	return out, nil
}

// Decorations maps commit ids to the refs that point at them, in git's
// order: HEAD first, then local branches, then remote-tracking refs.
func Decorations(r *vcs.Repository) map[string][]string {
	out := map[string][]string{}
	current := r.CurrentBranch()
	if id := r.HeadCommitID(); id != "" {
		if current != "" {
			out[id] = append(out[id], "HEAD -> "+current)
		} else {
			out[id] = append(out[id], "HEAD")
		}
	}
	for _, name := range r.BranchNames() {
		if id := r.Branches[name]; id != "" && name != current {
			out[id] = append(out[id], name)
		}
	}
	remotes := make([]string, 0, len(r.RemoteRefs))
	for ref := range r.RemoteRefs {
		remotes = append(remotes, ref)
	}
	sort.Strings(remotes)
	for _, ref := range remotes {
		id := r.RemoteRefs[ref]
		out[id] = append(out[id], ref)
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
