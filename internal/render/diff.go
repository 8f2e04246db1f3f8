package render

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/fakeyudi/gitsim/internal/vfs"
)

// Diff renders a line diff for every path that differs between from and to.
func Diff(from, to vfs.Snapshot) []Line {
	union := from.Clone()
	for p, content := range to {
		union[p] = content
	}

	var out []Line
	for _, p := range union.Paths() {
		old, hadOld := from[p]
		cur, hasNew := to[p]
		if hadOld && hasNew && old == cur {
			continue
		}
		out = append(out, line(Header, "diff --git a/"+p+" b/"+p, ""))
		switch {
		case !hadOld:
			out = append(out,
				line(Hint, "new file mode 100644", ""),
				line(Hint, "--- /dev/null", ""),
				line(Hint, "+++ b/"+p, ""),
			)
		case !hasNew:
			out = append(out,
				line(Hint, "deleted file mode 100644", ""),
				line(Hint, "--- a/"+p, ""),
				line(Hint, "+++ /dev/null", ""),
			)
		default:
			out = append(out, line(Hint, "--- a/"+p, ""), line(Hint, "+++ b/"+p, ""))
		}
		out = append(out, FileDiff(old, cur)...)
	}
	return out
}

// FileDiff renders a line-oriented diff of two file contents.
func FileDiff(old, cur string) []Line {
	var table lineTable
	src, dst := table.encode(old), table.encode(cur)
	diffs := diffmatchpatch.New().DiffMainRunes(src, dst, false)

	var out []Line
	for _, d := range diffs {
		for _, l := range table.decode(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				out = append(out, line(Added, "+"+l, ""))
			case diffmatchpatch.DiffDelete:
				out = append(out, line(Removed, "-"+l, ""))
			default:
				out = append(out, line(Normal, " "+l, ""))
			}
		}
	}
	return out
}

// DiffStat counts inserted and deleted lines between two contents.
func DiffStat(old, cur string) (added, removed int) {
	for _, l := range FileDiff(old, cur) {
		switch l.Kind {
		case Added:
			added++
		case Removed:
			removed++
		}
	}
	return added, removed
}

// lineTable maps each distinct line to one rune so the diff runs per line.
type lineTable struct {
	index map[string]rune
	lines []string
}

func (t *lineTable) encode(s string) []rune {
	if t.index == nil {
		t.index = map[string]rune{}
	}
	var out []rune
	for _, l := range splitLines(s) {
		r, ok := t.index[l]
		if !ok {
			r = rune(len(t.lines) + 1)
			if r >= 0xD800 {
				r += 0x800 // skip the surrogate range
			}
			t.index[l] = r
			t.lines = append(t.lines, l)
		}
		out = append(out, r)
	}
	return out
}

func (t *lineTable) decode(s string) []string {
	var out []string
	for _, r := range s {
		i := int(r) - 1
		if i >= 0xD800 {
			i -= 0x800
		}
		if i >= 0 && i < len(t.lines) {
			out = append(out, t.lines[i])
		}
	}
	return out
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
