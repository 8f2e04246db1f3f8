package vfs

import "strings"

// Clean resolves p against cwd and returns an absolute, normalized path.
// "." segments are dropped and ".." ascends one level; ".." at the root is a
// no-op rather than an error.
func Clean(cwd, p string) string {
	var parts []string
	if !strings.HasPrefix(p, "/") {
		parts = split(cwd)
	}
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, seg)
		}
	}
	return "/" + strings.Join(parts, "/")
}

// Rel returns target relative to root using forward slashes. The second
// result is false when target lies outside root. Rel(root, root) is "".
func Rel(root, target string) (string, bool) {
	root = Clean("/", root)
	target = Clean("/", target)
	if root == target {
		return "", true
	}
	prefix := root
	if prefix != "/" {
		prefix += "/"
	}
	if !strings.HasPrefix(target, prefix) {
		return "", false
	}
	return strings.TrimPrefix(target, prefix), true
}

// Join builds a child path from a parent path and a name.
func Join(parent, name string) string {
	if name == "" {
		return parent
	}
	if parent == "/" || parent == "" {
		return "/" + name
	}
	return parent + "/" + name
}

// Base returns the last element of an absolute path.
func Base(p string) string {
	p = Clean("/", p)
	if p == "/" {
		return "/"
	}
	return p[strings.LastIndex(p, "/")+1:]
}

func split(p string) []string {
	var parts []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}
