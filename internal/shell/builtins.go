package shell

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/fakeyudi/gitsim/internal/render"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/vfs"
)

type builtin func(sh *Shell, st *session.State, args []string) Result

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"pwd":     pwdCmd,
		"cd":      cdCmd,
		"ls":      lsCmd,
		"mkdir":   mkdirCmd,
		"touch":   touchCmd,
		"cat":     catCmd,
		"echo":    echoCmd,
		"rm":      rmCmd,
		"mv":      mvCmd,
		"cp":      cpCmd,
		"clear":   clearCmd,
		"history": historyCmd,
		"help":    helpCmd,
		"whoami":  whoamiCmd,
	}
}

// newFlags returns a silent flag set; parse errors are reported through the
// command's Result instead of stderr.
func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false
	return fs
}

// parseFlags parses args into fs. When ok is false, res holds the usage or
// error to return.
func parseFlags(fs *pflag.FlagSet, args []string) (res Result, ok bool) {
	err := fs.Parse(args)
	switch {
	case errors.Is(err, pflag.ErrHelp):
		return info(fmt.Sprintf("usage: %s [options]\n%s", fs.Name(), strings.TrimRight(fs.FlagUsages(), "\n"))), false
	case err != nil:
		return failuref("%s: %v", fs.Name(), err), false
	}
	return Result{}, true
}

var fsVerbs = map[string]string{
	"touch": "cannot touch",
	"mkdir": "cannot create directory",
	"rm":    "cannot remove",
	"ls":    "cannot access",
	"mv":    "cannot move",
	"cp":    "cannot copy",
}

// fsError formats a filesystem error the way a shell reports it, e.g.
// "touch: cannot touch 'x/y': No such file or directory".
func fsError(cmd string, err error) string {
	var pe *vfs.PathError
	if !errors.As(err, &pe) {
		return cmd + ": " + err.Error()
	}
	if verb, ok := fsVerbs[cmd]; ok {
		return fmt.Sprintf("%s: %s '%s': %s", cmd, verb, pe.Path, pe.Err)
	}
	return fmt.Sprintf("%s: %s: %s", cmd, pe.Path, pe.Err)
}

func pwdCmd(_ *Shell, st *session.State, _ []string) Result {
	return success(st.Cwd)
}

func cdCmd(_ *Shell, st *session.State, args []string) Result {
	target := st.FS.Home()
	switch len(args) {
	case 0:
	case 1:
		target = args[0]
	default:
		return failure("cd: too many arguments")
	}
	n, err := st.FS.Stat(st.Cwd, target)
	if err != nil {
		return failuref("cd: %s: %s", target, vfs.ErrNotExist)
	}
	if !n.IsDir() {
		return failuref("cd: %s: %s", target, vfs.ErrNotDir)
	}
	st.Cwd = st.FS.Abs(st.Cwd, target)
	return success("")
}

func lsCmd(_ *Shell, st *session.State, args []string) Result {
	fs := newFlags("ls")
	long := fs.BoolP("long", "l", false, "use a long listing format")
	all := fs.BoolP("all", "a", false, "do not ignore entries starting with .")
	human := fs.BoolP("human-readable", "h", false, "with -l, print sizes like 1.2 kB")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var lines []render.Line
	for i, p := range paths {
		nodes, err := st.FS.List(st.Cwd, p)
		if err != nil {
			return failure(fsError("ls", err))
		}
		if len(paths) > 1 && st.FS.IsDir(st.Cwd, p) {
			if i > 0 {
				lines = append(lines, render.Line{})
			}
			lines = append(lines, render.Line{Text: p + ":"})
		}
		entries := visible(st, p, nodes, *all)
		if *long {
			for _, n := range entries {
				lines = append(lines, render.Line{Text: longEntry(n, *human), Kind: entryKind(n)})
			}
			continue
		}
		names := make([]string, len(entries))
		for j, n := range entries {
			names[j] = n.Name
		}
		if len(names) > 0 {
			lines = append(lines, render.Line{Text: strings.Join(names, "  ")})
		}
	}
	return fromLines(lines, Success)
}

// visible filters dot entries and, at the repository root, adds the .git
// directory the user would see in a real checkout.
func visible(st *session.State, p string, nodes []*vfs.Node, all bool) []*vfs.Node {
	var out []*vfs.Node
	dir := st.FS.Abs(st.Cwd, p)
	if all && st.FS.IsDir(st.Cwd, p) {
		out = append(out, pseudoDir(st, "."), pseudoDir(st, ".."))
		if st.Repo.Initialized && dir == st.Repo.Root {
			out = append(out, pseudoDir(st, ".git"))
		}
	}
	for _, n := range nodes {
		if !all && strings.HasPrefix(n.Name, ".") {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func pseudoDir(st *session.State, name string) *vfs.Node {
	return &vfs.Node{Name: name, Kind: vfs.Directory, Meta: vfs.Meta{
		Mode:    vfs.DefaultDirMode,
		Owner:   st.FS.Owner,
		Group:   st.FS.Owner,
		Size:    4096,
		ModTime: st.FS.Root.Meta.ModTime,
	}}
}

func longEntry(n *vfs.Node, human bool) string {
	size := fmt.Sprintf("%5d", n.Meta.Size)
	if human {
		size = fmt.Sprintf("%7s", humanize.Bytes(uint64(n.Meta.Size)))
	}
	return fmt.Sprintf("%s 1 %s %s %s %s %s",
		n.Permissions(), n.Meta.Owner, n.Meta.Group, size, n.Meta.ModTime.Format("Jan _2 15:04"), n.Name)
}

func entryKind(n *vfs.Node) render.Kind {
	if n.IsDir() {
		return render.Branch
	}
	return render.Normal
}

func mkdirCmd(_ *Shell, st *session.State, args []string) Result {
	fs := newFlags("mkdir")
	parents := fs.BoolP("parents", "p", false, "make parent directories as needed")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	if fs.NArg() == 0 {
		return failure("mkdir: missing operand")
	}
	for _, p := range fs.Args() {
		if err := st.FS.Mkdir(st.Cwd, p, *parents); err != nil {
			return failure(fsError("mkdir", err))
		}
	}
	return success("")
}

func touchCmd(_ *Shell, st *session.State, args []string) Result {
	if len(args) == 0 {
		return failure("touch: missing file operand")
	}
	for _, p := range args {
		if err := st.FS.Touch(st.Cwd, p); err != nil {
			return failure(fsError("touch", err))
		}
	}
	return success("")
}

func catCmd(_ *Shell, st *session.State, args []string) Result {
	if len(args) == 0 {
		return failure("cat: missing file operand")
	}
	var b strings.Builder
	for _, p := range args {
		content, err := st.FS.ReadFile(st.Cwd, p)
		if err != nil {
			return failure(fsError("cat", err))
		}
		b.WriteString(content)
	}
	return success(strings.TrimSuffix(b.String(), "\n"))
}

// echoCmd prints its arguments. A bare echo still produces one empty line so
// that `echo > f` writes a newline.
func echoCmd(_ *Shell, _ *session.State, args []string) Result {
	text := strings.Join(args, " ")
	if text == "" {
		return Result{Class: Success, Lines: []render.Line{{}}}
	}
	return success(text)
}

func rmCmd(_ *Shell, st *session.State, args []string) Result {
	fs := newFlags("rm")
	recursive := fs.BoolP("recursive", "r", false, "remove directories and their contents")
	fs.BoolVarP(recursive, "Recursive", "R", false, "same as -r")
	force := fs.BoolP("force", "f", false, "ignore nonexistent files")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	if fs.NArg() == 0 {
		if *force {
			return success("")
		}
		return failure("rm: missing operand")
	}
	for _, p := range fs.Args() {
		err := st.FS.Remove(st.Cwd, p, *recursive)
		if err == nil || (*force && errors.Is(err, vfs.ErrNotExist)) {
			continue
		}
		return failure(fsError("rm", err))
	}
	leaveRemovedDir(st)
	return success("")
}

// leaveRemovedDir moves the working directory up to the nearest ancestor that
// still exists.
func leaveRemovedDir(st *session.State) {
	for !st.FS.IsDir("/", st.Cwd) && st.Cwd != "/" {
		st.Cwd = vfs.Clean(st.Cwd, "..")
	}
}

func mvCmd(_ *Shell, st *session.State, args []string) Result {
	if len(args) != 2 {
		return failure("mv: usage: mv SOURCE DEST")
	}
	if err := st.FS.Move(st.Cwd, args[0], args[1]); err != nil {
		return failure(fsError("mv", err))
	}
	leaveRemovedDir(st)
	return success("")
}

func cpCmd(_ *Shell, st *session.State, args []string) Result {
	fs := newFlags("cp")
	recursive := fs.BoolP("recursive", "r", false, "copy directories recursively")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	if fs.NArg() != 2 {
		return failure("cp: usage: cp [-r] SOURCE DEST")
	}
	if err := st.FS.Copy(st.Cwd, fs.Arg(0), fs.Arg(1), *recursive); err != nil {
		return failure(fsError("cp", err))
	}
	return success("")
}

func clearCmd(_ *Shell, _ *session.State, _ []string) Result {
	return Result{Class: Success, Clear: true}
}

func historyCmd(_ *Shell, st *session.State, _ []string) Result {
	lines := make([]render.Line, len(st.History))
	for i, h := range st.History {
		lines[i] = render.Line{Text: fmt.Sprintf("%5d  %s", i+1, h.Raw)}
	}
	return fromLines(lines, Success)
}

func whoamiCmd(_ *Shell, st *session.State, _ []string) Result {
	return success(st.FS.Owner)
}

const helpText = `Shell:
  pwd, cd DIR, ls [-l] [-a] [-h] [PATH], mkdir [-p] DIR, touch FILE, cat FILE
  echo TEXT, rm [-r] [-f] PATH, mv SRC DST, cp [-r] SRC DST
  clear, history, whoami, help
Filters (standalone on files, or after |):
  grep [-i] [-v] [-c] [-n] PATTERN, head [-n N], tail [-n N], wc [-l] [-w] [-c], sort [-r]
Redirection:
  COMMAND > FILE, COMMAND >> FILE
Git:
  init, status, add, commit, log, branch, checkout, switch, restore, merge
  stash, reset, revert, remote, push, fetch, pull, diff, show
Chaining with &&, || or ; is not supported: run each step on its own.`

func helpCmd(_ *Shell, _ *session.State, _ []string) Result {
	return Result{Text: helpText, Class: Info, Lines: render.Classified(helpText, render.Hint)}
}
