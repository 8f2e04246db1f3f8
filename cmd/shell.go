package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/logging"
	"github.com/fakeyudi/gitsim/internal/seed"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/shell"
	"github.com/fakeyudi/gitsim/internal/tui"
)

var (
	shellPlain bool
	shellFresh bool
	shellSeed  string
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the practice shell, resuming the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}
		sess, err := openSession(store, shellFresh)
		if err != nil {
			return err
		}

		if shellSeed != "" {
			st := sess.State
			loader := &seed.Loader{Root: shellSeed, IgnorePatterns: cfg.IgnorePatterns}
			res, err := loader.Load(cmd.Context(), st.FS, st.Cwd)
			if err != nil {
				return fmt.Errorf("seeding from %s: %w", shellSeed, err)
			}
			for _, w := range res.Warnings {
				warnColor.Fprintf(cmd.ErrOrStderr(), "  ⚠ %s\n", w)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d files from %s\n", len(res.Files), shellSeed)
		}
		if err := store.Save(sess); err != nil {
			return err
		}

		loop := shell.NewLoop(newShell(time.Now, shell.CommandLogHook()), sess.State)
		persist := func(st *session.State) {
			sess.State = st
			sess.UpdatedAt = time.Now()
			if err := store.Save(sess); err != nil {
				logging.L().Warn("save session", "err", err)
			}
		}

		if !shellPlain && interactive() {
			return tui.RunShell(loop, tui.Options{Title: sess.Lesson, OnCommand: persist})
		}
		return lineMode(cmd.InOrStdin(), cmd.OutOrStdout(), loop, persist)
	},
}

// openSession loads the saved session, or starts a new one when none exists
// or fresh is set.
func openSession(store session.SessionStore, fresh bool) (*session.Session, error) {
	if !fresh {
		sess, err := store.Load()
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNoSession) {
			return nil, err
		}
	} else if err := shell.TruncateCommandLog(); err != nil {
		return nil, err
	}
	return session.New(newState(time.Now), time.Now()), nil
}

// lineMode reads commands from in until EOF or exit, printing each result
// to out.
func lineMode(in io.Reader, out io.Writer, loop *shell.Loop, persist func(*session.State)) error {
	scanner := bufio.NewScanner(in)
	for {
		promptColor.Fprint(out, loop.Shell().Prompt(loop.State()))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return nil
		case "undo":
			if err := loop.Undo(); err != nil {
				errorColor.Fprintln(out, err.Error())
			} else {
				persist(loop.State())
			}
			continue
		}
		res, err := loop.Submit(line)
		if err != nil {
			return err
		}
		if !res.Clear {
			printResult(out, res)
		}
		persist(loop.State())
	}
}

func init() {
	shellCmd.Flags().BoolVar(&shellPlain, "plain", false, "line mode instead of the TUI")
	shellCmd.Flags().BoolVar(&shellFresh, "fresh", false, "discard the saved session and start over")
	shellCmd.Flags().StringVar(&shellSeed, "seed", "", "copy the text files of `DIR` into the home directory")
	rootCmd.AddCommand(shellCmd)
}
