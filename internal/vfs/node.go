// Package vfs implements the in-memory filesystem that simulated shell
// commands operate on.
package vfs

import (
	"io/fs"
	"sort"
	"time"
)

// Kind distinguishes files from directories.
type Kind string

const (
	File      Kind = "file"
	Directory Kind = "dir"
)

// Default permission bits for newly created nodes.
const (
	DefaultFileMode fs.FileMode = 0o644
	DefaultDirMode  fs.FileMode = 0o755
)

// Meta holds the metadata shown by `ls -l`.
type Meta struct {
	Mode    fs.FileMode `json:"mode"`
	Owner   string      `json:"owner"`
	Group   string      `json:"group"`
	Size    int64       `json:"size"`
	ModTime time.Time   `json:"mtime"`
}

// Node is a file or directory in the tree. A File never has Children and a
// Directory never has Content.
type Node struct {
	Name     string           `json:"name"`
	Kind     Kind             `json:"kind"`
	Content  string           `json:"content,omitempty"`
	Children map[string]*Node `json:"children,omitempty"`
	Meta     Meta             `json:"meta"`
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool { return n.Kind == Directory }

// Permissions renders the mode the way ls does, e.g. "drwxr-xr-x".
func (n *Node) Permissions() string {
	mode := n.Meta.Mode.Perm()
	if n.IsDir() {
		mode |= fs.ModeDir
	}
	return mode.String()
}

// SortedChildren returns the children of a directory ordered by name.
func (n *Node) SortedChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// put adds child to a directory, replacing any node of the same name.
func (n *Node) put(child *Node) {
	if n.Children == nil {
		n.Children = map[string]*Node{}
	}
	n.Children[child.Name] = child
}

func (n *Node) setContent(content string, now time.Time) {
	n.Content = content
	n.Meta.Size = int64(len(content))
	n.Meta.ModTime = now
}

func (n *Node) clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = make(map[string]*Node, len(n.Children))
		for name, child := range n.Children {
			c.Children[name] = child.clone()
		}
	}
	return &c
}

// countFiles counts the files below n, including n itself if it is a file.
func countFiles(n *Node) int {
	if !n.IsDir() {
		return 1
	}
	count := 0
	for _, child := range n.Children {
		count += countFiles(child)
	}
	return count
}
