package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fakeyudi/gitsim/internal/parser"
	"github.com/fakeyudi/gitsim/internal/render"
	"github.com/fakeyudi/gitsim/internal/session"
)

// filter transforms input lines. Operands left after flag parsing are file
// names; when present they replace the input.
type filter func(in filterInput, args []string) Result

// filterInput supplies the lines a filter reads: either the upstream
// command's output or the files named as operands.
type filterInput struct {
	name  string
	st    *session.State
	lines []render.Line
	piped bool
}

// read returns the operands' contents, or the piped input when there are no
// operands.
func (in filterInput) read(operands []string) ([]render.Line, *Result) {
	if len(operands) == 0 {
		if !in.piped {
			res := failuref("%s: no input files (gitsim has no stdin; pipe into %s or name a file)", in.name, in.name)
			return nil, &res
		}
		return in.lines, nil
	}
	var out []render.Line
	for _, p := range operands {
		content, err := in.st.FS.ReadFile(in.st.Cwd, p)
		if err != nil {
			res := failure(fsError(in.name, err))
			return nil, &res
		}
		out = append(out, render.Plain(content)...)
	}
	return out, nil
}

var filters map[string]filter

func init() {
	filters = map[string]filter{
		"grep": grepFilter,
		"head": func(in filterInput, args []string) Result { return sliceFilter(in, args, true) },
		"tail": func(in filterInput, args []string) Result { return sliceFilter(in, args, false) },
		"wc":   wcFilter,
		"sort": sortFilter,
	}
}

// pipe feeds res into the filter named by cmd.
func (sh *Shell) pipe(st *session.State, res Result, cmd parser.Command) Result {
	f, ok := filters[cmd.Name]
	if !ok {
		if _, known := builtins[cmd.Name]; known || cmd.Name == "git" {
			return failuref("gitsim: %s does not read from a pipe", cmd.Name)
		}
		return failuref("gitsim: command not found: %s", cmd.Name)
	}
	lines := res.Lines
	if lines == nil {
		lines = render.Plain(res.Text)
	}
	return f(filterInput{name: cmd.Name, st: st, lines: lines, piped: true}, countShorthand(cmd.Name, cmd.Args))
}

// filterFiles runs a filter on its own, reading the named files.
func (sh *Shell) filterFiles(st *session.State, cmd parser.Command) Result {
	return filters[cmd.Name](filterInput{name: cmd.Name, st: st}, countShorthand(cmd.Name, cmd.Args))
}

// countShorthand rewrites the traditional "head -5" into "head -n 5". git
// log accepts the same form.
func countShorthand(name string, args []string) []string {
	switch name {
	case "head", "tail", "log":
	default:
		return args
	}
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if len(a) > 1 && a[0] == '-' {
			if _, err := strconv.Atoi(a[1:]); err == nil {
				out = append(out, "-n", a[1:])
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func grepFilter(in filterInput, args []string) Result {
	fs := newFlags("grep")
	ignoreCase := fs.BoolP("ignore-case", "i", false, "ignore case distinctions")
	invert := fs.BoolP("invert-match", "v", false, "select non-matching lines")
	count := fs.BoolP("count", "c", false, "print only a count of matching lines")
	number := fs.BoolP("line-number", "n", false, "prefix each line with its line number")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	if fs.NArg() == 0 {
		return failure("usage: grep [-i] [-v] [-c] [-n] PATTERN [FILE...]")
	}
	pattern := fs.Arg(0)
	lines, errRes := in.read(fs.Args()[1:])
	if errRes != nil {
		return *errRes
	}
	if *ignoreCase {
		pattern = strings.ToLower(pattern)
	}

	var out []render.Line
	for i, l := range lines {
		text := l.Text
		if *ignoreCase {
			text = strings.ToLower(text)
		}
		if strings.Contains(text, pattern) == *invert {
			continue
		}
		if *number {
			l.Text = fmt.Sprintf("%d:%s", i+1, l.Text)
		}
		out = append(out, l)
	}
	if *count {
		return success(strconv.Itoa(len(out)))
	}
	return fromLines(out, Success)
}

func sliceFilter(in filterInput, args []string, head bool) Result {
	fs := newFlags(in.name)
	n := fs.IntP("lines", "n", 10, "number of lines")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	if *n < 0 {
		return failuref("%s: invalid number of lines: '%d'", in.name, *n)
	}
	lines, errRes := in.read(fs.Args())
	if errRes != nil {
		return *errRes
	}
	k := min(*n, len(lines))
	if head {
		return fromLines(lines[:k], Success)
	}
	return fromLines(lines[len(lines)-k:], Success)
}

func wcFilter(in filterInput, args []string) Result {
	fs := newFlags("wc")
	onlyLines := fs.BoolP("lines", "l", false, "print the line count")
	onlyWords := fs.BoolP("words", "w", false, "print the word count")
	onlyBytes := fs.BoolP("bytes", "c", false, "print the byte count")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	lines, errRes := in.read(fs.Args())
	if errRes != nil {
		return *errRes
	}
	words, bytes := 0, 0
	for _, l := range lines {
		words += len(strings.Fields(l.Text))
		bytes += len(l.Text) + 1
	}

	var counts []string
	if *onlyLines {
		counts = append(counts, strconv.Itoa(len(lines)))
	}
	if *onlyWords {
		counts = append(counts, strconv.Itoa(words))
	}
	if *onlyBytes {
		counts = append(counts, strconv.Itoa(bytes))
	}
	if len(counts) == 0 {
		counts = []string{strconv.Itoa(len(lines)), strconv.Itoa(words), strconv.Itoa(bytes)}
	}
	return success(strings.Join(counts, " "))
}

func sortFilter(in filterInput, args []string) Result {
	fs := newFlags("sort")
	reverse := fs.BoolP("reverse", "r", false, "reverse the result of comparisons")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	lines, errRes := in.read(fs.Args())
	if errRes != nil {
		return *errRes
	}
	out := append([]render.Line(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool {
		if *reverse {
			return out[i].Text > out[j].Text
		}
		return out[i].Text < out[j].Text
	})
	return fromLines(out, Success)
}
