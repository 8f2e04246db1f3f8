// Package vcs simulates the state machine of a version-control system: a
// commit graph keyed by id, branch pointers, HEAD, a staging index, a stash
// stack and remotes. It models observable behavior only; there is no
// content addressing and no packing.
//
// Every Engine operation takes a *Repository and returns a Transition that
// carries a fresh copy. The input repository is never modified, so older
// snapshots stay valid for undo and replay.
package vcs

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fakeyudi/gitsim/internal/vfs"
)

// Signature identifies a commit author.
type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s Signature) String() string {
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

// Commit is immutable once created. Tree holds a full copy of the files at
// commit time.
type Commit struct {
	ID            string       `json:"id"`
	Message       string       `json:"message"`
	ParentID      string       `json:"parent_id,omitempty"`
	MergeParentID string       `json:"merge_parent_id,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
	Author        Signature    `json:"author"`
	Tree          vfs.Snapshot `json:"tree"`
}

// IsMerge reports whether the commit has two parents.
func (c Commit) IsMerge() bool { return c.MergeParentID != "" }

// Parents returns the parent ids, first parent first.
func (c Commit) Parents() []string {
	var out []string
	if c.ParentID != "" {
		out = append(out, c.ParentID)
	}
	if c.MergeParentID != "" {
		out = append(out, c.MergeParentID)
	}
	return out
}

// Short abbreviates a commit id for display.
func Short(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// Head is either attached to a branch or detached at a commit. Construct it
// with BranchHead or DetachedHead.
type Head struct {
	branch string
	commit string
}

// BranchHead points HEAD at a branch.
func BranchHead(name string) Head { return Head{branch: name} }

// DetachedHead points HEAD directly at a commit.
func DetachedHead(id string) Head { return Head{commit: id} }

// Branch returns the checked-out branch, if any.
func (h Head) Branch() (string, bool) { return h.branch, h.branch != "" }

// Detached returns the commit HEAD points at when detached.
func (h Head) Detached() (string, bool) { return h.commit, h.branch == "" && h.commit != "" }

// IsZero reports whether HEAD has not been set (repository not initialized).
func (h Head) IsZero() bool { return h.branch == "" && h.commit == "" }

type headJSON struct {
	Kind   string `json:"kind"`
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
}

func (h Head) MarshalJSON() ([]byte, error) {
	switch {
	case h.branch != "":
		return json.Marshal(headJSON{Kind: "branch", Branch: h.branch})
	case h.commit != "":
		return json.Marshal(headJSON{Kind: "detached", Commit: h.commit})
	}
	return json.Marshal(headJSON{Kind: "none"})
}

func (h *Head) UnmarshalJSON(data []byte) error {
	var v headJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case "branch":
		*h = BranchHead(v.Branch)
	case "detached":
		*h = DetachedHead(v.Commit)
	case "none", "":
		*h = Head{}
	default:
		return fmt.Errorf("unknown HEAD kind %q", v.Kind)
	}
	return nil
}

// IndexEntry is one staged path. Content is captured when the path is
// added; Removed stages a deletion.
type IndexEntry struct {
	Content string `json:"content,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

// Changes tracks how the working tree diverges from the index/HEAD for
// tracked paths.
type Changes struct {
	Modified []string `json:"modified"`
	Deleted  []string `json:"deleted"`
}

// IsEmpty reports whether there are no unstaged changes.
func (c Changes) IsEmpty() bool { return len(c.Modified) == 0 && len(c.Deleted) == 0 }

// StashEntry is one saved set of local changes.
type StashEntry struct {
	ID        string                `json:"id"`
	Message   string                `json:"message"`
	Branch    string                `json:"branch"`
	Index     map[string]IndexEntry `json:"index"`
	Tree      vfs.Snapshot          `json:"tree"`
	Timestamp time.Time             `json:"timestamp"`
}

// Remote is an independent commit graph reachable only via push, fetch and
// pull.
type Remote struct {
	Name     string            `json:"name"`
	URL      string            `json:"url"`
	Graph    Graph             `json:"graph"`
	Branches map[string]string `json:"branches"`
}

func (rm *Remote) clone() *Remote {
	return &Remote{Name: rm.Name, URL: rm.URL, Graph: rm.Graph.clone(), Branches: copyStrings(rm.Branches)}
}

// Repository is the complete version-control state of a session.
type Repository struct {
	Initialized bool                  `json:"initialized"`
	Root        string                `json:"root,omitempty"`
	Graph       Graph                 `json:"graph"`
	Branches    map[string]string     `json:"branches"`
	Head        Head                  `json:"head"`
	Index       map[string]IndexEntry `json:"index"`
	Changes     Changes               `json:"changes"`
	Tracked     []string              `json:"tracked"`
	Stash       []StashEntry          `json:"stash"` // top of stack is last
	Remotes     map[string]*Remote    `json:"remotes"`
	RemoteRefs  map[string]string     `json:"remote_refs"` // "origin/main" -> commit id
	Upstreams   map[string]string     `json:"upstreams"`   // branch -> "origin/main"
	Seq         int                   `json:"seq"`
}

// NewRepository returns an uninitialized repository.
func NewRepository() *Repository {
	return &Repository{
		Graph:      newGraph(),
		Branches:   map[string]string{},
		Index:      map[string]IndexEntry{},
		Remotes:    map[string]*Remote{},
		RemoteRefs: map[string]string{},
		Upstreams:  map[string]string{},
	}
}

// Clone returns a deep copy. Commit trees are shared because commits are
// immutable.
func (r *Repository) Clone() *Repository {
	c := *r
	c.Graph = r.Graph.clone()
	c.Branches = copyStrings(r.Branches)
	c.Index = copyIndex(r.Index)
	c.Changes = Changes{Modified: copySlice(r.Changes.Modified), Deleted: copySlice(r.Changes.Deleted)}
	c.Tracked = copySlice(r.Tracked)
	if r.Stash != nil {
		c.Stash = make([]StashEntry, len(r.Stash))
		for i, s := range r.Stash {
			s.Index = copyIndex(s.Index)
			s.Tree = s.Tree.Clone()
			c.Stash[i] = s
		}
	}
	c.Remotes = make(map[string]*Remote, len(r.Remotes))
	for name, rm := range r.Remotes {
		c.Remotes[name] = rm.clone()
	}
	c.RemoteRefs = copyStrings(r.RemoteRefs)
	c.Upstreams = copyStrings(r.Upstreams)
	return &c
}

// HeadCommitID returns the commit HEAD resolves to, or "" on an unborn branch.
func (r *Repository) HeadCommitID() string {
	if name, ok := r.Head.Branch(); ok {
		return r.Branches[name]
	}
	id, _ := r.Head.Detached()
	return id
}

// HeadCommit returns the commit HEAD resolves to.
func (r *Repository) HeadCommit() (Commit, bool) {
	return r.Graph.Get(r.HeadCommitID())
}

// HeadTree returns the tree of the HEAD commit, or an empty snapshot.
func (r *Repository) HeadTree() vfs.Snapshot {
	if c, ok := r.HeadCommit(); ok {
		return c.Tree
	}
	return vfs.Snapshot{}
}

// IndexTree is HEAD's tree with the staged entries applied, i.e. what the
// next commit would contain.
func (r *Repository) IndexTree() vfs.Snapshot {
	tree := r.HeadTree().Clone()
	for p, e := range r.Index {
		if e.Removed {
			delete(tree, p)
		} else {
			tree[p] = e.Content
		}
	}
	return tree
}

// StagedPaths returns the staged paths in sorted order.
func (r *Repository) StagedPaths() []string {
	out := make([]string, 0, len(r.Index))
	for p := range r.Index {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// BranchNames returns all local branch names sorted.
func (r *Repository) BranchNames() []string {
	out := make([]string, 0, len(r.Branches))
	for name := range r.Branches {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CurrentBranch returns the checked-out branch name or "" when detached.
func (r *Repository) CurrentBranch() string {
	name, _ := r.Head.Branch()
	return name
}

// IsTracked reports whether path has been committed at least once.
func (r *Repository) IsTracked(path string) bool {
	i := sort.SearchStrings(r.Tracked, path)
	return i < len(r.Tracked) && r.Tracked[i] == path
}

func (r *Repository) track(paths ...string) {
	set := toSet(r.Tracked)
	for _, p := range paths {
		set[p] = true
	}
	r.Tracked = fromSet(set)
}

func (r *Repository) untrack(paths ...string) {
	set := toSet(r.Tracked)
	for _, p := range paths {
		delete(set, p)
	}
	r.Tracked = fromSet(set)
}

func copySlice(xs []string) []string {
	if xs == nil {
		return nil
	}
	return append(make([]string, 0, len(xs)), xs...)
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIndex(m map[string]IndexEntry) map[string]IndexEntry {
	out := make(map[string]IndexEntry, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toSet(xs []string) map[string]bool {
	set := make(map[string]bool, len(xs))
	for _, x := range xs {
		set[x] = true
	}
	return set
}

func fromSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for x := range set {
		out = append(out, x)
	}
	sort.Strings(out)
	return out
}
