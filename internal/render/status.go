package render

import (
	"fmt"
	"sort"

	"github.com/fakeyudi/gitsim/internal/vcs"
	"github.com/fakeyudi/gitsim/internal/vfs"
)

// Status renders `git status` for r against the working tree wt.
func Status(r *vcs.Repository, wt vfs.Snapshot) []Line {
	var out []Line
	if id, ok := r.Head.Detached(); ok {
		out = append(out, line(Header, "HEAD detached at "+vcs.Short(id), tipDetached))
	} else {
		name := r.CurrentBranch()
		out = append(out, line(Header, "On branch "+name, tipCurrent))
		if s := vcs.TrackingSummary(r, name); s != "" {
			out = append(out, Classified(s, Hint)...)
		}
	}
	unborn := r.HeadCommitID() == ""
	if unborn {
		out = append(out, line(Normal, "", ""), line(Header, "No commits yet", ""))
	}

	head := r.HeadTree()
	staged := r.StagedPaths()
	changes := vcs.ComputeChanges(r, wt)
	untracked := vcs.Untracked(r, wt)

	if len(staged) > 0 {
		out = append(out,
			line(Normal, "", ""),
			line(Header, "Changes to be committed:", ""),
			line(Hint, `  (use "git restore --staged <file>..." to unstage)`, ""),
		)
		for _, p := range staged {
			label := "modified:   "
			switch {
			case r.Index[p].Removed:
				label = "deleted:    "
			case !inTree(head, p):
				label = "new file:   "
			}
			out = append(out, line(Staged, "\t"+label+p, tipStaged))
		}
	}

	if !changes.IsEmpty() {
		out = append(out,
			line(Normal, "", ""),
			line(Header, "Changes not staged for commit:", ""),
			line(Hint, `  (use "git add <file>..." to update what will be committed)`, ""),
			line(Hint, `  (use "git restore <file>..." to discard changes in working directory)`, ""),
		)
		for _, p := range mergeSorted(changes.Modified, changes.Deleted) {
			if contains(changes.Deleted, p) {
				out = append(out, line(Deleted, "\tdeleted:    "+p, tipDeleted))
			} else {
				out = append(out, line(Modified, "\tmodified:   "+p, tipModified))
			}
		}
	}

	if len(untracked) > 0 {
		out = append(out,
			line(Normal, "", ""),
			line(Header, "Untracked files:", ""),
			line(Hint, `  (use "git add <file>..." to include in what will be committed)`, ""),
		)
		for _, p := range untracked {
			out = append(out, line(Untracked, "\t"+p, tipUntracked))
		}
	}

	out = append(out, line(Normal, "", ""))
	switch {
	case len(staged) > 0:
		out = out[:len(out)-1]
	case !changes.IsEmpty():
		out = append(out, line(Hint, `no changes added to commit (use "git add" and/or "git commit -a")`, ""))
	case len(untracked) > 0:
		out = append(out, line(Hint, `nothing added to commit but untracked files present (use "git add" to track)`, ""))
	case unborn:
		out = append(out, line(Hint, `nothing to commit (create/copy files and use "git add" to track)`, ""))
	default:
		out = append(out, line(Normal, "nothing to commit, working tree clean", ""))
	}
	return out
}

// IsClean reports whether status would print "working tree clean".
func IsClean(r *vcs.Repository, wt vfs.Snapshot) bool {
	return len(r.Index) == 0 && vcs.ComputeChanges(r, wt).IsEmpty() && len(vcs.Untracked(r, wt)) == 0
}

func inTree(t vfs.Snapshot, p string) bool {
	_, ok := t[p]
	return ok
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// mergeSorted merges two sorted slices.
func mergeSorted(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// Summary is a one-line description of HEAD for status bars.
func Summary(r *vcs.Repository) string {
	if !r.Initialized {
		return "no repository"
	}
	if id, ok := r.Head.Detached(); ok {
		return "HEAD detached at " + vcs.Short(id)
	}
	name := r.CurrentBranch()
	id := r.HeadCommitID()
	if id == "" {
		return fmt.Sprintf("%s (no commits)", name)
	}
	return fmt.Sprintf("%s @ %s", name, vcs.Short(id))
}

// ShortStatus renders `git status -s`: two status columns (index, working
// tree) followed by the path.
func ShortStatus(r *vcs.Repository, wt vfs.Snapshot) []Line {
	head := r.HeadTree()
	changes := vcs.ComputeChanges(r, wt)
	codes := map[string][2]byte{}
	set := func(p string, col int, c byte) {
		v, ok := codes[p]
		if !ok {
			v = [2]byte{' ', ' '}
		}
		v[col] = c
		codes[p] = v
	}
	for _, p := range r.StagedPaths() {
		switch {
		case r.Index[p].Removed:
			set(p, 0, 'D')
		case !inTree(head, p):
			set(p, 0, 'A')
		default:
			set(p, 0, 'M')
		}
	}
	for _, p := range changes.Modified {
		set(p, 1, 'M')
	}
	for _, p := range changes.Deleted {
		set(p, 1, 'D')
	}

	paths := make([]string, 0, len(codes))
	for p := range codes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var out []Line
	for _, p := range paths {
		c := codes[p]
		kind, tip := Modified, tipModified
		if c[1] == ' ' {
			kind, tip = Staged, tipStaged
		}
		out = append(out, line(kind, string(c[:])+" "+p, tip))
	}
	for _, p := range vcs.Untracked(r, wt) {
		out = append(out, line(Untracked, "?? "+p, tipUntracked))
	}
	return out
}
