package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/script"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/shell"
)

var (
	runWatch bool
	runFresh bool
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a lesson or command script against a fresh state",
	Long: `run executes every step of a lesson on an empty home directory and
checks the expectations attached to each step. A plain script is one
command per line; YAML lessons may attach expectations to steps.

With --fresh the final state replaces the saved session, so the shell
resumes where the lesson ended.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		out := cmd.OutOrStdout()

		if !runWatch {
			return runScript(out, path)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		rerun := func() {
			if err := runScript(out, path); err != nil {
				errorColor.Fprintln(out, err.Error())
			}
			hintColor.Fprintf(out, "\nwatching %s, press ctrl+c to stop\n", path)
		}
		rerun()
		return script.Watch(ctx, path, func() {
			fmt.Fprintln(out)
			rerun()
		})
	},
}

// runScript loads and runs the lesson at path.
func runScript(out io.Writer, path string) error {
	lesson, err := script.Load(path)
	if err != nil {
		return err
	}
	st, failed, checked := runLesson(out, lesson)

	if runFresh {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}
		if err := shell.TruncateCommandLog(); err != nil {
			return err
		}
		sess := session.New(st, time.Now())
		sess.Lesson = lesson.Name
		if err := store.Save(sess); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("lesson %s: %d of %d checks failed", lesson.Name, failed, checked)
	}
	if checked > 0 {
		okColor.Fprintf(out, "lesson %s: all %d checks passed\n", lesson.Name, checked)
	}
	return nil
}

// runLesson executes every step on a new state, printing each command and
// its output, and verifies the expectations. It returns the final state and
// the number of failed and verified steps.
func runLesson(out io.Writer, lesson *script.Lesson) (st *session.State, failed, checked int) {
	loop := shell.NewLoop(newShell(time.Now), newState(time.Now))
	if lesson.Description != "" {
		hintColor.Fprintln(out, lesson.Description)
	}
	for i, step := range lesson.Steps {
		echo(out, loop.Shell().Prompt(loop.State()), step.Run)
		res, err := loop.Submit(step.Run)
		if err != nil {
			errorColor.Fprintln(out, err.Error())
			failed++
			continue
		}
		printResult(out, res)
		if step.Expect == nil {
			continue
		}
		checked++
		problems := step.Expect.Verify(res.Class.String(), res.Text, loop.State())
		if len(problems) == 0 {
			okColor.Fprintf(out, "  ✓ step %d\n", i+1)
			continue
		}
		failed++
		for _, p := range problems {
			errorColor.Fprintf(out, "  ✗ step %d: %s\n", i+1, p)
		}
	}
	return loop.State(), failed, checked
}

func init() {
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "re-run whenever the script changes")
	runCmd.Flags().BoolVar(&runFresh, "fresh", false, "replace the saved session with the final state")
	rootCmd.AddCommand(runCmd)
}
