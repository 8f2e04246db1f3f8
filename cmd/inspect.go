package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/vcs"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the simulated repository as tables",
	Long: `inspect prints the branches, commits, remotes and stash of the saved
session's repository, the way the engine sees them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}
		s, err := store.Load()
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return fmt.Errorf("no saved session")
			}
			return err
		}
		r := s.State.Repo
		out := cmd.OutOrStdout()
		if !r.Initialized {
			fmt.Fprintln(out, "no repository: run git init in the shell first")
			return nil
		}
		fmt.Fprintf(out, "repository at %s\n\n", r.Root)
		writeBranches(out, r)
		if err := writeCommits(out, r, inspectLimit); err != nil {
			return err
		}
		writeRemotes(out, r)
		writeStash(out, r)
		return nil
	},
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

func writeBranches(w io.Writer, r *vcs.Repository) {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"", "Branch", "Commit", "Upstream"})
	names := make([]string, 0, len(r.Branches))
	for name := range r.Branches {
		names = append(names, name)
	}
	sort.Strings(names)
	current := r.CurrentBranch()
	for _, name := range names {
		marker := ""
		if name == current {
			marker = "*"
		}
		tbl.AppendRow(table.Row{marker, name, vcs.Short(r.Branches[name]), r.Upstreams[name]})
	}
	if id, ok := r.Head.Detached(); ok {
		tbl.AppendRow(table.Row{"*", "(HEAD detached)", vcs.Short(id), ""})
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d branches", len(names))})
	fmt.Fprintf(w, "Branches:\n%s\n\n", tbl.Render())
}

func writeCommits(w io.Writer, r *vcs.Repository, limit int) error {
	commits, err := vcs.History(r, vcs.LogOptions{All: true, Limit: limit})
	if err != nil {
		return err
	}
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Commit", "Parents", "Author", "When", "Message"})
	for _, c := range commits {
		parents := make([]string, 0, 2)
		for _, p := range c.Parents() {
			parents = append(parents, vcs.Short(p))
		}
		msg, _, _ := strings.Cut(c.Message, "\n")
		tbl.AppendRow(table.Row{vcs.Short(c.ID), strings.Join(parents, " "), c.Author.Name, humanize.Time(c.Timestamp), msg})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("%d of %d", len(commits), r.Graph.Len())})
	fmt.Fprintf(w, "Commits:\n%s\n\n", tbl.Render())
	return nil
}

func writeRemotes(w io.Writer, r *vcs.Repository) {
	names := vcs.RemoteNames(r)
	if len(names) == 0 {
		return
	}
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Remote", "URL", "Branch", "Remote commit", "Tracking ref"})
	for _, name := range names {
		rm := r.Remotes[name]
		branches := make([]string, 0, len(rm.Branches))
		for b := range rm.Branches {
			branches = append(branches, b)
		}
		sort.Strings(branches)
		if len(branches) == 0 {
			tbl.AppendRow(table.Row{name, rm.URL, "", "", ""})
		}
		for _, b := range branches {
			tbl.AppendRow(table.Row{name, rm.URL, b, vcs.Short(rm.Branches[b]), vcs.Short(r.RemoteRefs[name+"/"+b])})
		}
	}
	fmt.Fprintf(w, "Remotes:\n%s\n\n", tbl.Render())
}

func writeStash(w io.Writer, r *vcs.Repository) {
	entries := vcs.StashList(r)
	if len(entries) == 0 {
		return
	}
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Ref", "Branch", "Files", "When", "Message"})
	for i, e := range entries {
		tbl.AppendRow(table.Row{fmt.Sprintf("stash@{%d}", i), e.Branch, len(e.Tree), humanize.Time(e.Timestamp), e.Message})
	}
	fmt.Fprintf(w, "Stash:\n%s\n\n", tbl.Render())
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 20, "show at most `N` commits")
	rootCmd.AddCommand(inspectCmd)
}
