package vfs

import (
	"sort"
	"strings"
)

// Snapshot is a serialized copy of the files under a directory, keyed by
// slash-separated path relative to that directory. Empty directories are not
// represented. A Snapshot handed to another owner must be treated as
// immutable; use Clone before modifying.
type Snapshot map[string]string

// Clone returns an independent copy of s.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Paths returns the snapshot's paths in sorted order.
func (s Snapshot) Paths() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether s and other hold the same files and contents.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Under returns the paths of s that equal prefix or live below it. An empty
// prefix matches everything.
func (s Snapshot) Under(prefix string) []string {
	var out []string
	for _, p := range s.Paths() {
		if prefix == "" || p == prefix || strings.HasPrefix(p, prefix+"/") {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot serializes every file below dir.
func (f *FS) Snapshot(dir string) (Snapshot, error) {
	snap := Snapshot{}
	err := f.Walk(dir, func(rel string, n *Node) error {
		if !n.IsDir() {
			snap[rel] = n.Content
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore replaces the files below dir with snap. dir is created if missing.
// Files whose content is unchanged keep their metadata, and directories that
// held no files before are kept.
func (f *FS) Restore(dir string, snap Snapshot) error {
	if err := f.Mkdir("/", dir, true); err != nil {
		return err
	}
	root, err := f.Stat("/", dir)
	if err != nil {
		return err
	}

	old := root.Children
	root.Children = map[string]*Node{}
	for _, rel := range snap.Paths() {
		parts := strings.Split(rel, "/")
		parent := root
		for _, seg := range parts[:len(parts)-1] {
			next, ok := parent.Children[seg]
			if !ok || !next.IsDir() {
				next = f.newDir(seg)
				parent.put(next)
			}
			parent = next
		}
		leaf := parts[len(parts)-1]
		if prev := lookup(old, parts); prev != nil && !prev.IsDir() && prev.Content == snap[rel] {
			kept := *prev
			parent.put(&kept)
			continue
		}
		parent.put(f.newFile(leaf, snap[rel]))
	}
	keepEmptyDirs(root, old)
	return nil
}

// keepEmptyDirs copies the file-less directories of old into dst, creating
// the parents they need.
func keepEmptyDirs(dst *Node, old map[string]*Node) {
	for name, n := range old {
		if !n.IsDir() {
			continue
		}
		cur, ok := dst.Children[name]
		switch {
		case ok && !cur.IsDir():
			continue
		case !ok && countFiles(n) == 0:
			dst.put(n.clone())
			continue
		case !ok:
			if !holdsEmptyDir(n) {
				continue
			}
			cur = &Node{Name: name, Kind: Directory, Meta: n.Meta}
			dst.put(cur)
		}
		keepEmptyDirs(cur, n.Children)
	}
}

func holdsEmptyDir(n *Node) bool {
	for _, c := range n.Children {
		if c.IsDir() && (countFiles(c) == 0 || holdsEmptyDir(c)) {
			return true
		}
	}
	return false
}

// lookup finds the node at parts inside a children map, or nil.
func lookup(children map[string]*Node, parts []string) *Node {
	var n *Node
	for _, seg := range parts {
		if children == nil {
			return nil
		}
		var ok bool
		if n, ok = children[seg]; !ok {
			return nil
		}
		children = n.Children
	}
	return n
}
