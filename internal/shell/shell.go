// Package shell dispatches parsed command lines to the virtual filesystem,
// the version-control engine and a handful of shell built-ins.
//
// Execute never mutates the state it is given. It returns the result of the
// command together with a new state, so callers can keep older states for
// undo and replay.
package shell

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/gitsim/internal/logging"
	"github.com/fakeyudi/gitsim/internal/parser"
	"github.com/fakeyudi/gitsim/internal/render"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/vcs"
)

// Class classifies a command's outcome for presentation.
type Class int

const (
	Success Class = iota
	Error
	Info
	Status
	BranchList
)

func (c Class) String() string {
	switch c {
	case Error:
		return "error"
	case Info:
		return "info"
	case Status:
		return "status"
	case BranchList:
		return "branch-list"
	}
	return "success"
}

// ParseClass is the inverse of Class.String. Unknown names map to Success.
func ParseClass(s string) Class {
	for c := Success; c <= BranchList; c++ {
		if c.String() == s {
			return c
		}
	}
	return Success
}

// Result is the outcome of one command line.
type Result struct {
	Text  string
	Class Class
	Lines []render.Line
	// Clear asks the front end to clear its scrollback.
	Clear bool
}

func success(text string) Result {
	return Result{Text: text, Class: Success, Lines: render.Plain(text)}
}

func info(text string) Result {
	return Result{Text: text, Class: Info, Lines: render.Plain(text)}
}

func failure(text string) Result {
	return Result{Text: text, Class: Error, Lines: render.Plain(text)}
}

func failuref(format string, args ...any) Result {
	return failure(fmt.Sprintf(format, args...))
}

func fromLines(lines []render.Line, class Class) Result {
	return Result{Text: render.Text(lines), Class: class, Lines: lines}
}

// Hook observes every executed command. Hooks run on their own goroutine and
// are never awaited; they receive the immutable post-command state.
type Hook func(line string, res Result, st *session.State)

// Shell executes command lines. It is safe for concurrent use as long as
// Hooks is not modified.
type Shell struct {
	Engine *vcs.Engine
	Clock  func() time.Time
	Hooks  []Hook
	// Host is shown in the prompt, e.g. "student@gitsim".
	Host string
}

// New returns a Shell using engine. A nil clock uses time.Now.
func New(engine *vcs.Engine, clock func() time.Time) *Shell {
	if clock == nil {
		clock = time.Now
	}
	return &Shell{Engine: engine, Clock: clock, Host: "student@gitsim"}
}

// Execute runs line against st and returns the result and the new state.
// Empty input returns st itself. A failed command leaves the filesystem and
// repository exactly as they were; only the history grows.
func (sh *Shell) Execute(st *session.State, line string) (res Result, next *session.State) {
	cmd, err := parser.Parse(line)
	if err == nil && cmd.IsEmpty() {
		return Result{Class: Info}, st
	}

	done := logging.Op("shell.execute", "cmd", logging.Truncate(cmd.Name, 32))
	defer func() {
		var resErr error
		if res.Class == Error {
			resErr = errors.New(logging.Truncate(res.Text, 200))
		}
		done(resErr, "class", res.Class.String())
	}()

	switch {
	case errors.Is(err, parser.ErrChained):
		res = failure(err.Error())
	case err != nil:
		res = failuref("gitsim: %v", err)
	default:
		next = st.Clone()
		res = sh.run(next, cmd)
		if cmd.Pipe != nil && res.Class != Error {
			res = sh.pipe(next, res, *cmd.Pipe)
		}
		if cmd.Redirect != nil && res.Class != Error {
			res = sh.redirect(next, res, *cmd.Redirect)
		}
	}
	if res.Class == Error || next == nil {
		next = st.Clone()
	}
	sh.refresh(next)

	next.History = append(next.History, session.HistoryEntry{
		Raw:       line,
		Timestamp: sh.Clock(),
		Class:     res.Class.String(),
		Output:    res.Text,
	})
	for _, h := range sh.Hooks {
		go h(line, res, next)
	}
	return res, next
}

// refresh recomputes the repository's change tracker from the filesystem.
func (sh *Shell) refresh(st *session.State) {
	if !st.Repo.Initialized {
		return
	}
	wt, err := st.Worktree()
	if err != nil {
		logging.L().Warn("snapshot working tree", "err", err)
		return
	}
	st.Repo.Changes = vcs.ComputeChanges(st.Repo, wt)
}

func (sh *Shell) run(st *session.State, cmd parser.Command) Result {
	switch cmd.Name {
	case "git":
		return sh.git(st, cmd.Args)
	case ":":
		return success("")
	}
	if b, ok := builtins[cmd.Name]; ok {
		return b(sh, st, cmd.Args)
	}
	if _, ok := filters[cmd.Name]; ok {
		return sh.filterFiles(st, cmd)
	}
	return failuref("gitsim: command not found: %s", cmd.Name)
}

// redirect writes the result text to the target file.
func (sh *Shell) redirect(st *session.State, res Result, r parser.Redirect) Result {
	content := res.Text
	if content != "" || len(res.Lines) > 0 {
		content += "\n"
	}
	if err := st.FS.WriteFile(st.Cwd, r.Target, content, r.Append); err != nil {
		return failure(fsError("gitsim", err))
	}
	return Result{Class: Success}
}

// Prompt renders the shell prompt for st, e.g. "student@gitsim:~/repo (main)$ ".
func (sh *Shell) Prompt(st *session.State) string {
	dir := st.Cwd
	if home := st.FS.Home(); dir == home || strings.HasPrefix(dir, home+"/") {
		dir = "~" + strings.TrimPrefix(dir, home)
	}
	branch := ""
	if st.InRepo() {
		if id, ok := st.Repo.Head.Detached(); ok {
			branch = " (" + vcs.Short(id) + ")"
		} else {
			branch = " (" + st.Repo.CurrentBranch() + ")"
		}
	}
	return fmt.Sprintf("%s:%s%s$ ", sh.Host, dir, branch)
}
