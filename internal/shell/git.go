package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fakeyudi/gitsim/internal/render"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/vcs"
	"github.com/fakeyudi/gitsim/internal/vfs"
)

type gitCommand struct {
	run func(sh *Shell, st *session.State, args []string) Result
	// noRepo marks subcommands that work outside a repository.
	noRepo bool
}

var gitCommands map[string]gitCommand

func init() {
	gitCommands = map[string]gitCommand{
		"init":     {run: gitInit, noRepo: true},
		"help":     {run: gitHelp, noRepo: true},
		"version":  {run: gitVersion, noRepo: true},
		"status":   {run: gitStatus},
		"add":      {run: gitAdd},
		"commit":   {run: gitCommit},
		"log":      {run: gitLog},
		"branch":   {run: gitBranch},
		"checkout": {run: gitCheckout},
		"switch":   {run: gitSwitch},
		"restore":  {run: gitRestore},
		"merge":    {run: gitMerge},
		"stash":    {run: gitStash},
		"reset":    {run: gitReset},
		"revert":   {run: gitRevert},
		"remote":   {run: gitRemote},
		"push":     {run: gitPush},
		"fetch":    {run: gitFetch},
		"pull":     {run: gitPull},
		"diff":     {run: gitDiff},
		"show":     {run: gitShow},
	}
}

func (sh *Shell) git(st *session.State, args []string) Result {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		return gitHelp(sh, st, nil)
	}
	if args[0] == "--version" {
		return gitVersion(sh, st, nil)
	}
	sub, ok := gitCommands[args[0]]
	if !ok {
		return failuref("git: '%s' is not a git command. See 'git --help'.", args[0])
	}
	if !sub.noRepo && !st.InRepo() {
		return failure(vcs.ErrNotARepo.Error())
	}
	return sub.run(sh, st, args[1:])
}

// apply installs a transition into st: the new repository and, when the
// operation rewrote the working tree, the new files. Untracked files survive.
func apply(st *session.State, wt vfs.Snapshot, tr vcs.Transition) Result {
	before := st.Repo
	st.Repo = tr.Repo
	if tr.Tree != nil {
		tree := tr.Tree.Clone()
		for _, p := range vcs.Untracked(before, wt) {
			if _, ok := tree[p]; !ok {
				tree[p] = wt[p]
			}
		}
		if err := st.FS.Restore(st.Repo.Root, tree); err != nil {
			return failure(fsError("git", err))
		}
		leaveRemovedDir(st)
	}
	return transitionResult(tr)
}

func transitionResult(tr vcs.Transition) Result {
	if tr.Info {
		return info(tr.Message)
	}
	return success(tr.Message)
}

// runOp snapshots the working tree, runs op and applies its transition.
func runOp(st *session.State, op func(wt vfs.Snapshot) (vcs.Transition, error)) Result {
	wt, err := st.Worktree()
	if err != nil {
		return failure(fsError("git", err))
	}
	tr, err := op(wt)
	if err != nil {
		return failure(err.Error())
	}
	return apply(st, wt, tr)
}

// repoPaths converts command-line paths to repository-relative ones.
func repoPaths(st *session.State, args []string) ([]string, *Result) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		p, ok := st.RepoPath(a)
		if !ok {
			res := failuref("fatal: %s: '%s' is outside repository at '%s'", a, a, st.Repo.Root)
			return nil, &res
		}
		out = append(out, p)
	}
	return out, nil
}

const gitUsageText = `usage: git <command> [<args>]

start a working area
   init       Create an empty Git repository or reinitialize an existing one

work on the current change
   add        Add file contents to the index
   restore    Restore working tree files
   reset      Reset current HEAD to the specified state
   stash      Stash the changes in a dirty working directory away

examine the history and state
   diff       Show changes between commits, commit and working tree, etc
   log        Show commit logs
   show       Show a commit
   status     Show the working tree status

grow, mark and tweak your common history
   branch     List, create, or delete branches
   commit     Record changes to the repository
   merge      Join two or more development histories together
   revert     Revert an existing commit
   switch     Switch branches
   checkout   Switch branches or restore working tree files

collaborate
   remote     Manage the set of tracked repositories
   fetch      Download objects and refs from another repository
   pull       Fetch from and integrate with another repository or a local branch
   push       Update remote refs along with associated objects`

func gitHelp(_ *Shell, _ *session.State, _ []string) Result {
	return info(gitUsageText)
}

func gitVersion(_ *Shell, _ *session.State, _ []string) Result {
	return success("git version 2.43.0 (gitsim)")
}

func gitInit(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git init")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	root := st.Cwd
	if fs.NArg() > 0 {
		if err := st.FS.Mkdir(st.Cwd, fs.Arg(0), true); err != nil {
			return failure(fsError("git init", err))
		}
		root = st.FS.Abs(st.Cwd, fs.Arg(0))
	}
	tr, err := sh.Engine.Init(st.Repo, root)
	if err != nil {
		return failure(err.Error())
	}
	st.Repo = tr.Repo
	return transitionResult(tr)
}

func gitStatus(_ *Shell, st *session.State, args []string) Result {
	fs := newFlags("git status")
	short := fs.BoolP("short", "s", false, "give the output in the short-format")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	wt, err := st.Worktree()
	if err != nil {
		return failure(fsError("git", err))
	}
	if *short {
		return fromLines(render.ShortStatus(st.Repo, wt), Status)
	}
	return fromLines(render.Status(st.Repo, wt), Status)
}

func gitAdd(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git add")
	all := fs.BoolP("all", "A", false, "add changes from all tracked and untracked files")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	var paths []string
	if *all {
		paths = []string{""}
	} else {
		if fs.NArg() == 0 {
			return info("Nothing specified, nothing added.\nhint: Maybe you wanted to say 'git add .'?")
		}
		var errRes *Result
		if paths, errRes = repoPaths(st, fs.Args()); errRes != nil {
			return *errRes
		}
	}
	return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
		return sh.Engine.Add(st.Repo, wt, paths)
	})
}

func gitCommit(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git commit")
	messages := fs.StringArrayP("message", "m", nil, "use the given message as the commit message")
	all := fs.BoolP("all", "a", false, "commit all changed files")
	amend := fs.Bool("amend", false, "amend previous commit")
	allowEmpty := fs.Bool("allow-empty", false, "allow recording an empty commit")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	if len(*messages) == 0 && !*amend {
		return failure("error: there is no editor in gitsim; pass the message with git commit -m \"message\"")
	}
	opts := vcs.CommitOptions{
		Message:    strings.Join(*messages, "\n\n"),
		All:        *all,
		Amend:      *amend,
		AllowEmpty: *allowEmpty,
	}
	return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
		return sh.Engine.Commit(st.Repo, wt, opts)
	})
}

func gitLog(_ *Shell, st *session.State, args []string) Result {
	fs := newFlags("git log")
	oneline := fs.Bool("oneline", false, "show each commit on a single line")
	limit := fs.IntP("max-count", "n", 0, "limit the number of commits to output")
	all := fs.Bool("all", false, "show commits reachable from every ref")
	if res, ok := parseFlags(fs, countShorthand("log", args)); !ok {
		return res
	}
	opts := render.LogOptions{
		Oneline: *oneline,
		Limit:   *limit,
		All:     *all,
		Ref:     fs.Arg(0),
	}
	lines, err := render.Log(st.Repo, opts)
	if err != nil {
		return failure(err.Error())
	}
	if render.Unborn(st.Repo, opts) {
		return fromLines(lines, Info)
	}
	return fromLines(lines, Success)
}

func gitBranch(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git branch")
	listAll := fs.BoolP("all", "a", false, "list both remote-tracking and local branches")
	remotes := fs.BoolP("remotes", "r", false, "list remote-tracking branches")
	verbose := fs.BoolP("verbose", "v", false, "show hash and subject")
	del := fs.BoolP("delete", "d", false, "delete a fully merged branch")
	forceDel := fs.BoolP("force-delete", "D", false, "delete a branch even if not merged")
	move := fs.BoolP("move", "m", false, "rename a branch")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	rest := fs.Args()

	var tr vcs.Transition
	var err error
	switch {
	case *del || *forceDel:
		if len(rest) == 0 {
			return failure("fatal: branch name required")
		}
		var out []string
		for _, name := range rest {
			if tr, err = sh.Engine.DeleteBranch(st.Repo, name, *forceDel); err != nil {
				return failure(err.Error())
			}
			st.Repo = tr.Repo
			out = append(out, tr.Message)
		}
		return success(strings.Join(out, "\n"))
	case *move:
		switch len(rest) {
		case 1:
			tr, err = sh.Engine.RenameBranch(st.Repo, st.Repo.CurrentBranch(), rest[0])
		case 2:
			tr, err = sh.Engine.RenameBranch(st.Repo, rest[0], rest[1])
		default:
			return failure("fatal: branch name required")
		}
	case len(rest) > 0 && !*listAll && !*remotes:
		start := ""
		if len(rest) > 1 {
			start = rest[1]
		}
		tr, err = sh.Engine.Branch(st.Repo, rest[0], start)
	default:
		lines := render.Branches(st.Repo, render.BranchOptions{All: *listAll, Remote: *remotes, Verbose: *verbose})
		return fromLines(lines, BranchList)
	}
	if err != nil {
		return failure(err.Error())
	}
	st.Repo = tr.Repo
	return transitionResult(tr)
}

// switchBranch moves HEAD to target (creating it from start when create is
// set) and carries uncommitted work across, refusing when that work would
// be overwritten.
func switchBranch(sh *Shell, st *session.State, target, start string, create bool) Result {
	wt, err := st.Worktree()
	if err != nil {
		return failure(fsError("git", err))
	}
	r := st.Repo
	fromStart := create && start != ""
	if fromStart {
		tr, err := sh.Engine.Branch(r, target, start)
		if err != nil {
			return failure(err.Error())
		}
		r, create = tr.Repo, false
	}
	tr, err := sh.Engine.Checkout(r, target, create)
	if err != nil {
		return failure(err.Error())
	}
	if fromStart {
		tr.Message = fmt.Sprintf("Switched to a new branch '%s'", target)
	}
	if tr.Tree == nil {
		st.Repo = tr.Repo
		return transitionResult(tr)
	}

	head := st.Repo.HeadTree()
	tree, conflicts := carryLocal(head, wt, tr.Tree)
	if len(conflicts) > 0 {
		return failuref("error: Your local changes to the following files would be overwritten by checkout:\n\t%s\nPlease commit your changes or stash them before you switch branches.\nAborting",
			strings.Join(conflicts, "\n\t"))
	}
	for p, e := range st.Repo.Index {
		hc, inHead := head[p]
		tc, inTarget := tr.Tree[p]
		if inHead == inTarget && hc == tc {
			tr.Repo.Index[p] = e
		}
	}
	tr.Tree = tree
	return apply(st, wt, tr)
}

// carryLocal replays the local edits in wt (relative to head) on top of
// target. Edited paths that also differ between head and target conflict,
// unless the edit already matches target.
func carryLocal(head, wt, target vfs.Snapshot) (vfs.Snapshot, []string) {
	out := target.Clone()
	seen := map[string]bool{}
	for p := range head {
		seen[p] = true
	}
	for p := range wt {
		seen[p] = true
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var conflicts []string
	for _, p := range paths {
		hc, inHead := head[p]
		wc, inWT := wt[p]
		if inHead == inWT && hc == wc {
			continue
		}
		tc, inTarget := target[p]
		if inTarget != inHead || tc != hc {
			if inTarget != inWT || tc != wc {
				conflicts = append(conflicts, p)
			}
			continue
		}
		if inWT {
			out[p] = wc
		} else {
			delete(out, p)
		}
	}
	return out, conflicts
}

func gitCheckout(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git checkout")
	create := fs.StringP("branch", "b", "", "create and checkout a new branch")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	rest := fs.Args()
	if dash := fs.ArgsLenAtDash(); dash >= 0 {
		return restorePaths(sh, st, rest[dash:], false)
	}
	if *create != "" {
		start := ""
		if len(rest) > 0 {
			start = rest[0]
		}
		return switchBranch(sh, st, *create, start, true)
	}
	if len(rest) == 0 {
		return failure("fatal: you must specify a branch to checkout")
	}
	target := rest[0]
	if len(rest) == 1 && !isRef(st.Repo, target) {
		if p, ok := st.RepoPath(target); ok && len(st.Repo.IndexTree().Under(p)) > 0 {
			return restorePaths(sh, st, rest, false)
		}
	}
	return switchBranch(sh, st, target, "", false)
}

// isRef reports whether name resolves to a branch, remote branch or commit.
func isRef(r *vcs.Repository, name string) bool {
	if _, ok := r.Branches[name]; ok {
		return true
	}
	if remoteBranch(r, name) {
		return true
	}
	_, err := vcs.ResolveRef(r, name)
	return err == nil
}

func remoteBranch(r *vcs.Repository, name string) bool {
	for ref := range r.RemoteRefs {
		if strings.HasSuffix(ref, "/"+name) {
			return true
		}
	}
	return false
}

func gitSwitch(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git switch")
	create := fs.StringP("create", "c", "", "create and switch to a new branch")
	detach := fs.Bool("detach", false, "switch to a commit for inspection")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	rest := fs.Args()
	if *create != "" {
		start := ""
		if len(rest) > 0 {
			start = rest[0]
		}
		return switchBranch(sh, st, *create, start, true)
	}
	if len(rest) == 0 {
		return failure("fatal: missing branch or commit argument")
	}
	target := rest[0]
	_, local := st.Repo.Branches[target]
	if !local && !*detach && !remoteBranch(st.Repo, target) {
		if _, err := vcs.ResolveRef(st.Repo, target); err == nil {
			return failuref("fatal: a branch is expected, got commit '%s'\nhint: If you want to detach HEAD at the commit, try again with the --detach option.", target)
		}
		return failuref("fatal: invalid reference: %s", target)
	}
	return switchBranch(sh, st, target, "", false)
}

func gitRestore(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git restore")
	staged := fs.BoolP("staged", "S", false, "restore the index")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	return restorePaths(sh, st, fs.Args(), *staged)
}

func restorePaths(sh *Shell, st *session.State, args []string, staged bool) Result {
	paths, errRes := repoPaths(st, args)
	if errRes != nil {
		return *errRes
	}
	return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
		return sh.Engine.Restore(st.Repo, wt, paths, staged)
	})
}

func gitMerge(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git merge")
	message := fs.StringP("message", "m", "", "merge commit message")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
		return sh.Engine.Merge(st.Repo, wt, fs.Arg(0), *message)
	})
}

func gitStash(sh *Shell, st *session.State, args []string) Result {
	action := "push"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action, args = args[0], args[1:]
	}
	switch action {
	case "push", "save":
		fs := newFlags("git stash push")
		message := fs.StringP("message", "m", "", "stash message")
		if res, ok := parseFlags(fs, args); !ok {
			return res
		}
		if action == "save" && *message == "" {
			*message = strings.Join(fs.Args(), " ")
		}
		return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
			return sh.Engine.StashPush(st.Repo, wt, *message)
		})
	case "list":
		return fromLines(render.StashList(st.Repo), Success)
	case "clear":
		tr, err := sh.Engine.StashClear(st.Repo)
		if err != nil {
			return failure(err.Error())
		}
		st.Repo = tr.Repo
		return transitionResult(tr)
	}

	n, err := stashRef(args)
	if err != nil {
		return failure(err.Error())
	}
	switch action {
	case "pop", "apply":
		return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
			return sh.Engine.StashApply(st.Repo, wt, n, action == "pop")
		})
	case "drop":
		tr, err := sh.Engine.StashDrop(st.Repo, n)
		if err != nil {
			return failure(err.Error())
		}
		st.Repo = tr.Repo
		return transitionResult(tr)
	}
	return failuref("error: unknown subcommand: %s\nusage: git stash [push [-m <message>] | pop | apply | list | drop | clear]", action)
}

// stashRef parses "stash@{n}" or "n"; no argument means the newest entry.
func stashRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	s := args[0]
	if strings.HasPrefix(s, "stash@{") && strings.HasSuffix(s, "}") {
		s = s[len("stash@{") : len(s)-1]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("error: %s is not a valid reference", args[0])
	}
	return n, nil
}

func gitReset(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git reset")
	soft := fs.Bool("soft", false, "move HEAD only")
	mixed := fs.Bool("mixed", false, "move HEAD and reset the index")
	hard := fs.Bool("hard", false, "move HEAD, reset the index and the working tree")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	rest := fs.Args()
	modes := 0
	mode := vcs.ResetMixed
	for _, m := range []struct {
		set  bool
		mode vcs.ResetMode
	}{{*soft, vcs.ResetSoft}, {*mixed, vcs.ResetMixed}, {*hard, vcs.ResetHard}} {
		if m.set {
			modes++
			mode = m.mode
		}
	}
	if modes > 1 {
		return failure("fatal: --soft, --mixed and --hard are mutually exclusive")
	}

	ref := "HEAD"
	var paths []string
	switch dash := fs.ArgsLenAtDash(); {
	case dash >= 0:
		if dash > 0 {
			ref = rest[0]
		}
		paths = rest[dash:]
	case len(rest) > 0 && isRef(st.Repo, rest[0]):
		ref, paths = rest[0], rest[1:]
	default:
		paths = rest
	}

	if len(paths) > 0 {
		if modes > 0 {
			return failuref("fatal: Cannot do %s reset with paths.", mode)
		}
		if ref != "HEAD" {
			return failure("fatal: resetting paths to a commit other than HEAD is not supported")
		}
		repoRel, errRes := repoPaths(st, paths)
		if errRes != nil {
			return *errRes
		}
		return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
			return sh.Engine.Unstage(st.Repo, wt, repoRel)
		})
	}
	return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
		return sh.Engine.Reset(st.Repo, wt, mode, ref)
	})
}

func gitRevert(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git revert")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	if fs.NArg() == 0 {
		return failure("fatal: you must specify a commit to revert")
	}
	return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
		return sh.Engine.Revert(st.Repo, wt, fs.Arg(0))
	})
}

func gitRemote(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git remote")
	verbose := fs.BoolP("verbose", "v", false, "show remote url")
	fs.SetInterspersed(false)
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fromLines(render.Remotes(st.Repo, *verbose), Success)
	}

	var tr vcs.Transition
	var err error
	switch rest[0] {
	case "add":
		if len(rest) != 3 {
			return failure("usage: git remote add <name> <url>")
		}
		tr, err = sh.Engine.RemoteAdd(st.Repo, rest[1], rest[2])
	case "remove", "rm":
		if len(rest) != 2 {
			return failure("usage: git remote remove <name>")
		}
		tr, err = sh.Engine.RemoteRemove(st.Repo, rest[1])
	default:
		return failuref("error: unknown subcommand: %s", rest[0])
	}
	if err != nil {
		return failure(err.Error())
	}
	st.Repo = tr.Repo
	return transitionResult(tr)
}

// upstream splits the configured upstream of branch, e.g. "origin/main".
func upstream(r *vcs.Repository, branch string) (remote, name string, ok bool) {
	ref, ok := r.Upstreams[branch]
	if !ok {
		return "", "", false
	}
	remote, name, ok = strings.Cut(ref, "/")
	return remote, name, ok
}

func gitPush(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git push")
	setUpstream := fs.BoolP("set-upstream", "u", false, "set upstream for the branch")
	force := fs.BoolP("force", "f", false, "force updates")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	current := st.Repo.CurrentBranch()
	remote, branch := fs.Arg(0), fs.Arg(1)
	if branch == "" {
		branch = current
	}
	if branch == "" {
		return failure("fatal: You are not currently on a branch.\nTo push the history leading to the current (detached HEAD)\nstate now, use\n\n    git push origin HEAD:<name-of-remote-branch>")
	}
	if remote == "" {
		r, _, ok := upstream(st.Repo, branch)
		if !ok {
			return failuref("fatal: The current branch %s has no upstream branch.\nTo push the current branch and set the remote as upstream, use\n\n    git push --set-upstream origin %s", branch, branch)
		}
		remote = r
	}
	tr, err := sh.Engine.Push(st.Repo, remote, branch, vcs.PushOptions{SetUpstream: *setUpstream, Force: *force})
	if err != nil {
		return failure(err.Error())
	}
	st.Repo = tr.Repo
	return transitionResult(tr)
}

// defaultRemote picks the remote git would use without an explicit name.
func defaultRemote(r *vcs.Repository) (string, error) {
	if remote, _, ok := upstream(r, r.CurrentBranch()); ok {
		return remote, nil
	}
	names := vcs.RemoteNames(r)
	for _, n := range names {
		if n == "origin" {
			return n, nil
		}
	}
	if len(names) == 1 {
		return names[0], nil
	}
	return "", errors.New("fatal: No remote repository specified.  Please, specify either a URL or a\nremote name from which new revisions should be fetched.")
}

func gitFetch(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git fetch")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	remote := fs.Arg(0)
	if remote == "" {
		var err error
		if remote, err = defaultRemote(st.Repo); err != nil {
			return failure(err.Error())
		}
	}
	tr, err := sh.Engine.Fetch(st.Repo, remote)
	if err != nil {
		return failure(err.Error())
	}
	st.Repo = tr.Repo
	return transitionResult(tr)
}

func gitPull(sh *Shell, st *session.State, args []string) Result {
	fs := newFlags("git pull")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	remote, branch := fs.Arg(0), fs.Arg(1)
	if remote == "" || branch == "" {
		r, b, ok := upstream(st.Repo, st.Repo.CurrentBranch())
		switch {
		case ok && remote == "":
			remote, branch = r, b
		case ok && remote == r:
			branch = b
		case remote != "":
			branch = st.Repo.CurrentBranch()
		default:
			return failure("There is no tracking information for the current branch.\nPlease specify which branch you want to merge with.\n\n    git pull <remote> <branch>\n\nIf you wish to set tracking information for this branch you can do so with:\n\n    git push --set-upstream origin <branch>")
		}
	}
	return runOp(st, func(wt vfs.Snapshot) (vcs.Transition, error) {
		return sh.Engine.Pull(st.Repo, wt, remote, branch)
	})
}

func gitDiff(_ *Shell, st *session.State, args []string) Result {
	fs := newFlags("git diff")
	staged := fs.Bool("staged", false, "show changes staged for the next commit")
	fs.BoolVar(staged, "cached", false, "synonym for --staged")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	if *staged {
		return fromLines(render.Diff(st.Repo.HeadTree(), st.Repo.IndexTree()), Success)
	}
	wt, err := st.Worktree()
	if err != nil {
		return failure(fsError("git", err))
	}
	tracked := vfs.Snapshot{}
	base := st.Repo.IndexTree()
	for p, content := range wt {
		if _, ok := base[p]; ok {
			tracked[p] = content
		}
	}
	return fromLines(render.Diff(base, tracked), Success)
}

func gitShow(_ *Shell, st *session.State, args []string) Result {
	fs := newFlags("git show")
	if res, ok := parseFlags(fs, args); !ok {
		return res
	}
	ref := fs.Arg(0)
	if ref == "" {
		ref = "HEAD"
	}
	lines, err := render.Show(st.Repo, ref)
	if err != nil {
		return failure(err.Error())
	}
	return fromLines(lines, Success)
}
