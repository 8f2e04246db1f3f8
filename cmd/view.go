package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/bundle"
	"github.com/fakeyudi/gitsim/internal/tui"
	"github.com/fakeyudi/gitsim/internal/vcs"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "View an exported transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}

		t, err := bundle.ParserFor(path, data).Parse(data)
		if err != nil {
			return err
		}

		if plainOutput || !interactive() {
			printTranscript(cmd.OutOrStdout(), t)
			return nil
		}
		return tui.RunViewer(t, path)
	},
}

// printTranscript writes a plain-text summary to w.
func printTranscript(w io.Writer, t *bundle.Transcript) {
	fmt.Fprintln(w, "## Summary")
	fmt.Fprintf(w, "  Session:   %s\n", t.Session.ID)
	if t.Session.Lesson != "" {
		fmt.Fprintf(w, "  Lesson:    %s\n", t.Session.Lesson)
	}
	if t.Session.Author != "" {
		fmt.Fprintf(w, "  Author:    %s\n", t.Session.Author)
	}
	fmt.Fprintf(w, "  Started:   %s\n", t.Session.StartTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  Ended:     %s\n", t.Session.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  Duration:  %s\n", t.Session.Duration)
	if t.Head != "" {
		fmt.Fprintf(w, "  HEAD:      %s\n", t.Head)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Commands")
	if len(t.Commands) == 0 {
		fmt.Fprintln(w, "  (none)")
	} else {
		for i, c := range t.Commands {
			mark := ""
			if c.Class == "error" {
				mark = "  [failed]"
			}
			fmt.Fprintf(w, "  %d. %s%s\n", i+1, c.Raw, mark)
			if c.Output != "" {
				fmt.Fprintln(w, indent(c.Output, "       "))
			}
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Branches")
	if len(t.Branches) == 0 {
		fmt.Fprintln(w, "  (none)")
	} else {
		names := make([]string, 0, len(t.Branches))
		for name := range t.Branches {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			marker := " "
			if name == t.Head {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %s  %s\n", marker, name, vcs.Short(t.Branches[name]))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Commits")
	if len(t.Commits) == 0 {
		fmt.Fprintln(w, "  (none)")
	} else {
		for _, c := range t.Commits {
			msg, _, _ := strings.Cut(c.Message, "\n")
			fmt.Fprintf(w, "  %s  %s  (%s)\n", vcs.Short(c.ID), msg, c.Author)
		}
	}
	fmt.Fprintln(w)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}
