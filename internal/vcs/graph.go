package vcs

import (
	"fmt"
	"strings"
)

// Graph is the commit arena: commits keyed by id plus their creation order.
type Graph struct {
	Commits map[string]Commit `json:"commits"`
	Order   []string          `json:"order"`
}

func newGraph() Graph {
	return Graph{Commits: map[string]Commit{}}
}

func (g Graph) clone() Graph {
	out := Graph{Commits: make(map[string]Commit, len(g.Commits))}
	if g.Order != nil {
		out.Order = append(make([]string, 0, len(g.Order)), g.Order...)
	}
	for id, c := range g.Commits {
		out.Commits[id] = c
	}
	return out
}

// Add inserts c unless a commit with the same id is already present.
func (g *Graph) Add(c Commit) {
	if g.Commits == nil {
		g.Commits = map[string]Commit{}
	}
	if _, ok := g.Commits[c.ID]; ok {
		return
	}
	g.Commits[c.ID] = c
	g.Order = append(g.Order, c.ID)
}

// Get returns the commit with the given id.
func (g Graph) Get(id string) (Commit, bool) {
	if id == "" {
		return Commit{}, false
	}
	c, ok := g.Commits[id]
	return c, ok
}

// Has reports whether id is in the graph.
func (g Graph) Has(id string) bool {
	_, ok := g.Get(id)
	return ok
}

// Len returns the number of commits.
func (g Graph) Len() int { return len(g.Commits) }

// Ancestors returns start and every commit reachable from it through parent
// and merge-parent edges. The walk is iterative and marks ids visited before
// expanding them, so it terminates even on malformed (cyclic) data. Ids
// missing from the graph are skipped.
func (g Graph) Ancestors(start string) map[string]bool {
	seen := map[string]bool{}
	if !g.Has(start) {
		return seen
	}
	stack := []string{start}
	seen[start] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.Commits[id].Parents() {
			if seen[p] || !g.Has(p) {
				continue
			}
			seen[p] = true
			stack = append(stack, p)
		}
	}
	return seen
}

// IsAncestor reports whether anc is reachable from desc. A commit is its own
// ancestor.
func (g Graph) IsAncestor(anc, desc string) bool {
	if anc == "" || desc == "" {
		return false
	}
	return g.Ancestors(desc)[anc]
}

// MergeBase returns the closest common ancestor of a and b by breadth-first
// distance from b, or "" when the histories are unrelated.
func (g Graph) MergeBase(a, b string) string {
	fromA := g.Ancestors(a)
	if len(fromA) == 0 || !g.Has(b) {
		return ""
	}
	seen := map[string]bool{b: true}
	queue := []string{b}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if fromA[id] {
			return id
		}
		for _, p := range g.Commits[id].Parents() {
			if !seen[p] && g.Has(p) {
				seen[p] = true
				queue = append(queue, p)
			}
		}
	}
	return ""
}

// Resolve finds a commit by full id or by a unique prefix of at least four
// characters.
func (g Graph) Resolve(prefix string) (string, error) {
	if g.Has(prefix) {
		return prefix, nil
	}
	if len(prefix) < 4 {
		return "", fmt.Errorf("unknown revision %q", prefix)
	}
	var match string
	for _, id := range g.Order {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("short object ID %s is ambiguous", prefix)
		}
		match = id
	}
	if match == "" {
		return "", fmt.Errorf("unknown revision %q", prefix)
	}
	return match, nil
}

// Missing returns, in creation order, the commits of ids that other lacks.
func (g Graph) Missing(ids map[string]bool, other Graph) []Commit {
	var out []Commit
	for _, id := range g.Order {
		if ids[id] && !other.Has(id) {
			out = append(out, g.Commits[id])
		}
	}
	return out
}
