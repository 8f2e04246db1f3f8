package vcs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/gitsim/internal/logging"
	"github.com/fakeyudi/gitsim/internal/vfs"
)

// DefaultBranch is the branch created by Init.
const DefaultBranch = "main"

// idSpace namespaces commit and stash ids.
var idSpace = uuid.MustParse("6f1c6b1e-2d0a-4c59-9a57-6a1f0e4b6c11")

// Transition is the outcome of a successful operation.
type Transition struct {
	// Repo is the new repository state; never the input pointer.
	Repo *Repository
	// Tree, when non-nil, replaces the working tree under the repository root.
	Tree vfs.Snapshot
	// Message is the user-visible output.
	Message string
	// Info marks outcomes that changed nothing, e.g. "Already up to date.".
	Info bool
}

// Engine applies version-control operations. It holds no repository state.
type Engine struct {
	Clock         func() time.Time
	Author        Signature
	DefaultBranch string
}

// New returns an Engine. A nil clock uses time.Now.
func New(author Signature, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{Clock: clock, Author: author, DefaultBranch: DefaultBranch}
}

func (e *Engine) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

// Init initializes a repository rooted at root.
func (e *Engine) Init(r *Repository, root string) (Transition, error) {
	if r.Initialized {
		if r.Root == root {
			return Transition{Repo: r.Clone(), Message: fmt.Sprintf("Reinitialized existing Git repository in %s/.git/", strings.TrimSuffix(root, "/")), Info: true}, nil
		}
		return Transition{}, errorf(CodeBranchExists, "fatal: a repository already exists at %s", r.Root)
	}
	branch := e.DefaultBranch
	if branch == "" {
		branch = DefaultBranch
	}
	next := NewRepository()
	next.Initialized = true
	next.Root = root
	next.Branches[branch] = ""
	next.Head = BranchHead(branch)
	return Transition{Repo: next, Message: fmt.Sprintf("Initialized empty Git repository in %s/.git/", strings.TrimSuffix(root, "/"))}, nil
}

// Add stages paths from the working tree. Each path is repo-relative; a
// directory stages everything below it and "" stages the whole tree.
// Deleted tracked files are staged as removals. Paths that match nothing are
// silently ignored.
func (e *Engine) Add(r *Repository, wt vfs.Snapshot, paths []string) (Transition, error) {
	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	next := r.Clone()
	head := r.HeadTree()
	base := r.IndexTree()
	for _, p := range paths {
		p = normalize(p)
		for _, f := range wt.Under(p) {
			stage(next, head, f, wt[f], false)
		}
		for _, f := range base.Under(p) {
			if _, ok := wt[f]; !ok {
				stage(next, head, f, "", true)
			}
		}
	}
	next.Changes = ComputeChanges(next, wt)
	return Transition{Repo: next}, nil
}

// stage records content (or a removal) for path, dropping the entry when it
// matches HEAD.
func stage(r *Repository, head vfs.Snapshot, path, content string, removed bool) {
	old, inHead := head[path]
	switch {
	case removed && !inHead:
		delete(r.Index, path)
	case !removed && inHead && old == content:
		delete(r.Index, path)
	default:
		r.Index[path] = IndexEntry{Content: content, Removed: removed}
	}
}

// CommitOptions controls Commit.
type CommitOptions struct {
	Message    string
	All        bool
	Amend      bool
	AllowEmpty bool
}

// Commit records the index as a new commit and advances the current branch,
// or HEAD itself when detached.
func (e *Engine) Commit(r *Repository, wt vfs.Snapshot, opts CommitOptions) (t Transition, err error) {
	done := logging.Op("vcs.commit", "amend", opts.Amend)
	defer func() { done(err) }()

	if !r.Initialized {
		return Transition{}, ErrNotARepo
	}
	next := r.Clone()
	if opts.All {
		head := r.HeadTree()
		for _, p := range head.Paths() {
			content, ok := wt[p]
			stage(next, head, p, content, !ok)
		}
	}

	parent, mergeParent := r.HeadCommitID(), ""
	message := strings.TrimSpace(opts.Message)
	if opts.Amend {
		prev, ok := r.HeadCommit()
		if !ok {
			return Transition{}, errorf(CodeUnbornBranch, "fatal: You have nothing to amend.")
		}
		parent, mergeParent = prev.ParentID, prev.MergeParentID
		if message == "" {
			message = prev.Message
		}
	}
	if message == "" {
		return Transition{}, errorf(CodeMissingOperand, "Aborting commit due to empty commit message.")
	}
	if len(next.Index) == 0 && !opts.AllowEmpty && !opts.Amend {
		if len(untracked(r, wt)) > 0 {
			return Transition{}, &Error{Code: CodeNothingToCommit, Msg: "nothing to commit, but untracked files present (use \"git add\" to track)"}
		}
		if !ComputeChanges(r, wt).IsEmpty() {
			return Transition{}, &Error{Code: CodeNothingToCommit, Msg: "nothing to commit, no changes added (use \"git add\" and/or \"git commit -a\")"}
		}
		return Transition{}, ErrNothingToCommit
	}

	tree := next.IndexTree()
	changed := len(next.Index)
	c := e.newCommit(next, parent, mergeParent, message, tree)
	next.Index = map[string]IndexEntry{}
	next.track(tree.Paths()...)
	next.untrack(removedPaths(r.HeadTree(), tree)...)
	next.Changes = ComputeChanges(next, wt)

	label := next.CurrentBranch()
	if label == "" {
		label = "detached HEAD"
	}
	if parent == "" {
		label += " (root-commit)"
	}
	msg := fmt.Sprintf("[%s %s] %s\n %s changed", label, Short(c.ID), firstLine(message), plural(changed, "file"))
	return Transition{Repo: next, Message: msg}, nil
}

// newCommit adds a commit to r's graph and moves HEAD's branch (or detached
// HEAD) to it.
func (e *Engine) newCommit(r *Repository, parent, mergeParent, message string, tree vfs.Snapshot) Commit {
	c := Commit{
		ID:            e.newID(r, parent, mergeParent, message),
		Message:       message,
		ParentID:      parent,
		MergeParentID: mergeParent,
		Timestamp:     e.now(),
		Author:        e.Author,
		Tree:          tree,
	}
	r.Graph.Add(c)
	r.moveHead(c.ID)
	logging.L().Debug("commit created", "id", Short(c.ID), "parents", len(c.Parents()))
	return c
}

// newID derives a deterministic id from the commit's inputs and the
// repository's sequence counter, so replaying a session yields the same ids.
func (e *Engine) newID(r *Repository, parts ...string) string {
	for {
		r.Seq++
		data := strings.Join(parts, "\x00") + fmt.Sprintf("\x00%d\x00%s", r.Seq, e.Author.Email)
		id := strings.ReplaceAll(uuid.NewSHA1(idSpace, []byte(data)).String(), "-", "")
		if !r.Graph.Has(id) {
			return id
		}
	}
}

func (r *Repository) moveHead(id string) {
	if name, ok := r.Head.Branch(); ok {
		r.Branches[name] = id
		return
	}
	r.Head = DetachedHead(id)
}

// ComputeChanges compares the working tree against the index tree for
// tracked content.
func ComputeChanges(r *Repository, wt vfs.Snapshot) Changes {
	ch := Changes{Modified: []string{}, Deleted: []string{}}
	if !r.Initialized {
		return ch
	}
	base := r.IndexTree()
	for _, p := range base.Paths() {
		content, ok := wt[p]
		switch {
		case !ok:
			ch.Deleted = append(ch.Deleted, p)
		case content != base[p]:
			ch.Modified = append(ch.Modified, p)
		}
	}
	return ch
}

// Refresh returns a copy of r with Changes recomputed from wt.
func (e *Engine) Refresh(r *Repository, wt vfs.Snapshot) *Repository {
	next := r.Clone()
	next.Changes = ComputeChanges(next, wt)
	return next
}

// Untracked returns working-tree paths that are neither staged nor part of
// HEAD.
func Untracked(r *Repository, wt vfs.Snapshot) []string {
	if !r.Initialized {
		return nil
	}
	return untracked(r, wt)
}

func untracked(r *Repository, wt vfs.Snapshot) []string {
	base := r.IndexTree()
	var out []string
	for _, p := range wt.Paths() {
		if _, ok := base[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// applyDelta carries the change from -> to onto wt, leaving paths the change
// does not touch as they are.
func applyDelta(wt, from, to vfs.Snapshot) vfs.Snapshot {
	out := wt.Clone()
	for p, content := range to {
		if old, ok := from[p]; !ok || old != content {
			out[p] = content
		}
	}
	for p := range from {
		if _, ok := to[p]; !ok {
			delete(out, p)
		}
	}
	return out
}

// threeWay merges theirs into ours relative to base. Paths changed on both
// sides take theirs; paths deleted by theirs and untouched by ours are
// deleted.
func threeWay(base, ours, theirs vfs.Snapshot) vfs.Snapshot {
	out := ours.Clone()
	for p, t := range theirs {
		if b, ok := base[p]; !ok || b != t {
			out[p] = t
		}
	}
	for p, b := range base {
		if _, ok := theirs[p]; ok {
			continue
		}
		if o, ok := ours[p]; ok && o == b {
			delete(out, p)
		}
	}
	return out
}

// diffCount returns how many paths differ between two trees.
func diffCount(a, b vfs.Snapshot) int {
	n := 0
	for p, v := range b {
		if old, ok := a[p]; !ok || old != v {
			n++
		}
	}
	for p := range a {
		if _, ok := b[p]; !ok {
			n++
		}
	}
	return n
}

func removedPaths(before, after vfs.Snapshot) []string {
	var out []string
	for p := range before {
		if _, ok := after[p]; !ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// ResolveRef resolves HEAD, branch names, remote-tracking refs ("origin/main")
// and id prefixes, each optionally followed by ~N, ^ or ^2 suffixes.
func ResolveRef(r *Repository, ref string) (string, error) {
	fail := func() (string, error) {
		return "", errorf(CodeResolveFailed, "fatal: ambiguous argument '%s': unknown revision or path not in the working tree.", ref)
	}
	name, suffix := ref, ""
	if i := strings.IndexAny(ref, "~^"); i >= 0 {
		name, suffix = ref[:i], ref[i:]
	}

	var id string
	switch {
	case name == "HEAD" || name == "@":
		id = r.HeadCommitID()
	case r.Branches[name] != "":
		id = r.Branches[name]
	case r.RemoteRefs[name] != "":
		id = r.RemoteRefs[name]
	default:
		found, err := r.Graph.Resolve(name)
		if err != nil {
			return fail()
		}
		id = found
	}
	if id == "" {
		return fail()
	}

	for suffix != "" {
		op := suffix[0]
		suffix = suffix[1:]
		n, digits := 0, false
		for len(suffix) > 0 && suffix[0] >= '0' && suffix[0] <= '9' {
			n = n*10 + int(suffix[0]-'0')
			suffix = suffix[1:]
			digits = true
			if n > 1<<16 {
				return fail()
			}
		}
		if !digits {
			n = 1
		}
		c, ok := r.Graph.Get(id)
		if !ok {
			return fail()
		}
		switch {
		case op == '^' && n == 0, op == '~' && n == 0:
		case op == '^' && n == 1:
			id = c.ParentID
		case op == '^' && n == 2:
			id = c.MergeParentID
		case op == '~':
			for i := 0; i < n && id != ""; i++ {
				id = r.Graph.Commits[id].ParentID
			}
		default:
			return fail()
		}
		if id == "" {
			return fail()
		}
	}
	return id, nil
}

// LogOptions selects commits for History.
type LogOptions struct {
	All   bool
	Limit int
	From  string
}

// History returns the commits reachable from HEAD (or From, or every ref
// when All is set), newest first.
func History(r *Repository, opts LogOptions) ([]Commit, error) {
	starts := []string{r.HeadCommitID()}
	if opts.From != "" {
		id, err := ResolveRef(r, opts.From)
		if err != nil {
			return nil, err
		}
		starts = []string{id}
	}
	if opts.All {
		for _, name := range r.BranchNames() {
			starts = append(starts, r.Branches[name])
		}
		for _, id := range r.RemoteRefs {
			starts = append(starts, id)
		}
	}

	reach := map[string]bool{}
	for _, s := range starts {
		for id := range r.Graph.Ancestors(s) {
			reach[id] = true
		}
	}
	pos := make(map[string]int, len(r.Graph.Order))
	for i, id := range r.Graph.Order {
		pos[id] = i
	}
	out := make([]Commit, 0, len(reach))
	for id := range reach {
		out = append(out, r.Graph.Commits[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return pos[out[i].ID] > pos[out[j].ID]
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// AheadBehind compares branch with its upstream. ok is false when the branch
// has no upstream or the upstream ref is unknown.
func AheadBehind(r *Repository, branch string) (upstream string, ahead, behind int, ok bool) {
	upstream = r.Upstreams[branch]
	if upstream == "" {
		return "", 0, 0, false
	}
	remoteID, known := r.RemoteRefs[upstream]
	if !known {
		return upstream, 0, 0, false
	}
	local := r.Graph.Ancestors(r.Branches[branch])
	remote := r.Graph.Ancestors(remoteID)
	for id := range local {
		if !remote[id] {
			ahead++
		}
	}
	for id := range remote {
		if !local[id] {
			behind++
		}
	}
	return upstream, ahead, behind, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
