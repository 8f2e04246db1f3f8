package vfs

import (
	"strings"
	"time"
)

// FS is an in-memory directory tree. All path arguments are resolved against
// a caller-supplied working directory; FS itself keeps no cwd.
type FS struct {
	Root  *Node  `json:"root"`
	Owner string `json:"owner"`

	clock func() time.Time
}

// Resolution is the three-part result of resolving a path: the parent
// directory, the target node if present and the leaf name. A nil Node with a
// non-nil Parent means "does not exist but could be created".
type Resolution struct {
	Parent *Node
	Node   *Node
	Leaf   string
	Path   string
}

// New returns a filesystem holding /, /tmp and the owner's home directory.
func New(owner string, clock func() time.Time) *FS {
	f := &FS{Owner: owner, clock: clock}
	f.Root = f.newDir("")
	_ = f.Mkdir("/", f.Home(), true)
	_ = f.Mkdir("/", "/tmp", false)
	return f
}

// SetClock replaces the time source used for modification times. It must be
// called after a tree is decoded from JSON if deterministic times are needed.
func (f *FS) SetClock(clock func() time.Time) { f.clock = clock }

// Home is the owner's home directory.
func (f *FS) Home() string { return "/home/" + f.Owner }

// Abs expands a leading "~" and resolves p against cwd.
func (f *FS) Abs(cwd, p string) string {
	switch {
	case p == "~":
		p = f.Home()
	case strings.HasPrefix(p, "~/"):
		p = f.Home() + p[1:]
	}
	return Clean(cwd, p)
}

// Clone returns a deep copy that shares no nodes with f.
func (f *FS) Clone() *FS {
	c := &FS{Owner: f.Owner, clock: f.clock}
	if f.Root != nil {
		c.Root = f.Root.clone()
	}
	return c
}

// Resolve walks p from the root. It fails only when an intermediate
// component is missing or is not a directory.
func (f *FS) Resolve(cwd, p string) (Resolution, error) {
	abs := f.Abs(cwd, p)
	parts := split(abs)
	if len(parts) == 0 {
		return Resolution{Parent: f.Root, Node: f.Root, Path: "/"}, nil
	}

	dir := f.Root
	for _, seg := range parts[:len(parts)-1] {
		next, ok := dir.Children[seg]
		if !ok {
			return Resolution{}, ErrNotExist
		}
		if !next.IsDir() {
			return Resolution{}, ErrNotDir
		}
		dir = next
	}
	leaf := parts[len(parts)-1]
	return Resolution{Parent: dir, Node: dir.Children[leaf], Leaf: leaf, Path: abs}, nil
}

// Stat returns the node at p.
func (f *FS) Stat(cwd, p string) (*Node, error) {
	res, err := f.Resolve(cwd, p)
	if err != nil {
		return nil, pathErr("stat", p, err)
	}
	if res.Node == nil {
		return nil, pathErr("stat", p, ErrNotExist)
	}
	return res.Node, nil
}

// Exists reports whether p names an existing node.
func (f *FS) Exists(cwd, p string) bool {
	_, err := f.Stat(cwd, p)
	return err == nil
}

// IsDir reports whether p names an existing directory.
func (f *FS) IsDir(cwd, p string) bool {
	n, err := f.Stat(cwd, p)
	return err == nil && n.IsDir()
}

// Mkdir creates a directory. With parents set, missing intermediate
// directories are created and an existing directory is not an error.
func (f *FS) Mkdir(cwd, p string, parents bool) error {
	if parents {
		dir := f.Root
		for _, seg := range split(f.Abs(cwd, p)) {
			next, ok := dir.Children[seg]
			if !ok {
				next = f.newDir(seg)
				dir.put(next)
			} else if !next.IsDir() {
				return pathErr("mkdir", p, ErrExist)
			}
			dir = next
		}
		return nil
	}

	res, err := f.Resolve(cwd, p)
	if err != nil {
		return pathErr("mkdir", p, err)
	}
	if res.Node != nil {
		return pathErr("mkdir", p, ErrExist)
	}
	res.Parent.put(f.newDir(res.Leaf))
	return nil
}

// Touch creates an empty file or bumps the modification time of an
// existing node.
func (f *FS) Touch(cwd, p string) error {
	res, err := f.Resolve(cwd, p)
	if err != nil {
		return pathErr("touch", p, err)
	}
	if res.Node != nil {
		res.Node.Meta.ModTime = f.now()
		return nil
	}
	res.Parent.put(f.newFile(res.Leaf, ""))
	return nil
}

// WriteFile replaces (or, with appendMode, extends) the content of a file,
// creating it when absent.
func (f *FS) WriteFile(cwd, p, content string, appendMode bool) error {
	res, err := f.Resolve(cwd, p)
	if err != nil {
		return pathErr("write", p, err)
	}
	if res.Leaf == "" {
		return pathErr("write", p, ErrIsDir)
	}
	switch {
	case res.Node == nil:
		res.Parent.put(f.newFile(res.Leaf, content))
	case res.Node.IsDir():
		return pathErr("write", p, ErrIsDir)
	case appendMode:
		res.Node.setContent(res.Node.Content+content, f.now())
	default:
		res.Node.setContent(content, f.now())
	}
	return nil
}

// ReadFile returns the content of a file.
func (f *FS) ReadFile(cwd, p string) (string, error) {
	res, err := f.Resolve(cwd, p)
	if err != nil {
		return "", pathErr("read", p, err)
	}
	if res.Node == nil {
		return "", pathErr("read", p, ErrNotExist)
	}
	if res.Node.IsDir() {
		return "", pathErr("read", p, ErrIsDir)
	}
	return res.Node.Content, nil
}

// Remove deletes a node. Directories require recursive. The root can never
// be removed.
func (f *FS) Remove(cwd, p string, recursive bool) error {
	res, err := f.Resolve(cwd, p)
	if err != nil {
		return pathErr("remove", p, err)
	}
	if res.Node == nil {
		return pathErr("remove", p, ErrNotExist)
	}
	if res.Leaf == "" {
		return pathErr("remove", p, ErrInvalid)
	}
	if res.Node.IsDir() && !recursive {
		return pathErr("remove", p, ErrIsDir)
	}
	delete(res.Parent.Children, res.Leaf)
	return nil
}

// Move renames src to dst. When dst is an existing directory, src is moved
// inside it.
func (f *FS) Move(cwd, src, dst string) error {
	from, to, err := f.transferEnds("move", cwd, src, dst)
	if err != nil {
		return err
	}
	node := from.Node
	delete(from.Parent.Children, from.Leaf)
	node.Name = to.Leaf
	to.Parent.put(node)
	return nil
}

// Copy duplicates src at dst. Copying a directory requires recursive.
func (f *FS) Copy(cwd, src, dst string, recursive bool) error {
	from, to, err := f.transferEnds("copy", cwd, src, dst)
	if err != nil {
		return err
	}
	if from.Node.IsDir() && !recursive {
		return pathErr("copy", src, ErrIsDir)
	}
	node := from.Node.clone()
	node.Name = to.Leaf
	node.Meta.ModTime = f.now()
	to.Parent.put(node)
	return nil
}

// transferEnds validates the source and destination of a move or copy.
func (f *FS) transferEnds(op, cwd, src, dst string) (Resolution, Resolution, error) {
	from, err := f.Resolve(cwd, src)
	if err != nil {
		return Resolution{}, Resolution{}, pathErr(op, src, err)
	}
	if from.Node == nil {
		return Resolution{}, Resolution{}, pathErr(op, src, ErrNotExist)
	}
	if from.Leaf == "" {
		return Resolution{}, Resolution{}, pathErr(op, src, ErrInvalid)
	}

	to, err := f.Resolve(cwd, dst)
	if err != nil {
		return Resolution{}, Resolution{}, pathErr(op, dst, err)
	}
	if to.Node != nil && to.Node.IsDir() {
		to = Resolution{Parent: to.Node, Node: to.Node.Children[from.Leaf], Leaf: from.Leaf, Path: Join(to.Path, from.Leaf)}
	}
	if to.Path == from.Path {
		return Resolution{}, Resolution{}, pathErr(op, dst, ErrInvalid)
	}
	if from.Node.IsDir() && strings.HasPrefix(to.Path, from.Path+"/") {
		return Resolution{}, Resolution{}, pathErr(op, dst, ErrInvalid)
	}
	if to.Node != nil && to.Node.IsDir() != from.Node.IsDir() {
		if to.Node.IsDir() {
			return Resolution{}, Resolution{}, pathErr(op, dst, ErrIsDir)
		}
		return Resolution{}, Resolution{}, pathErr(op, dst, ErrNotDir)
	}
	return from, to, nil
}

// List returns the entries of a directory sorted by name, or the node
// itself when p names a file.
func (f *FS) List(cwd, p string) ([]*Node, error) {
	n, err := f.Stat(cwd, p)
	if err != nil {
		return nil, pathErr("list", p, ErrNotExist)
	}
	if !n.IsDir() {
		return []*Node{n}, nil
	}
	return n.SortedChildren(), nil
}

// Walk visits every node below dir depth-first in name order, passing the
// slash-separated path relative to dir. dir itself is not visited.
func (f *FS) Walk(dir string, fn func(rel string, n *Node) error) error {
	root, err := f.Stat("/", dir)
	if err != nil {
		return err
	}
	if !root.IsDir() {
		return pathErr("walk", dir, ErrNotDir)
	}
	return walk(root, "", fn)
}

func walk(dir *Node, prefix string, fn func(string, *Node) error) error {
	for _, child := range dir.SortedChildren() {
		rel := child.Name
		if prefix != "" {
			rel = prefix + "/" + child.Name
		}
		if err := fn(rel, child); err != nil {
			return err
		}
		if child.IsDir() {
			if err := walk(child, rel, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Files returns the relative paths of every file below dir, sorted.
func (f *FS) Files(dir string) ([]string, error) {
	var out []string
	err := f.Walk(dir, func(rel string, n *Node) error {
		if !n.IsDir() {
			out = append(out, rel)
		}
		return nil
	})
	return out, err
}

// CountFiles returns how many files live below p.
func (f *FS) CountFiles(cwd, p string) int {
	n, err := f.Stat(cwd, p)
	if err != nil {
		return 0
	}
	return countFiles(n)
}

func (f *FS) now() time.Time {
	if f.clock == nil {
		return time.Now()
	}
	return f.clock()
}

func (f *FS) newDir(name string) *Node {
	return &Node{
		Name:     name,
		Kind:     Directory,
		Children: map[string]*Node{},
		Meta:     Meta{Mode: DefaultDirMode, Owner: f.Owner, Group: f.Owner, Size: 4096, ModTime: f.now()},
	}
}

func (f *FS) newFile(name, content string) *Node {
	return &Node{
		Name:    name,
		Kind:    File,
		Content: content,
		Meta:    Meta{Mode: DefaultFileMode, Owner: f.Owner, Group: f.Owner, Size: int64(len(content)), ModTime: f.now()},
	}
}
