package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/bundle"
	"github.com/fakeyudi/gitsim/internal/replay"
	"github.com/fakeyudi/gitsim/internal/script"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/shell"
	"github.com/fakeyudi/gitsim/internal/tui"
)

var (
	replaySpeed float64
	replayPlain bool
)

// replaySleep waits between replay steps in line mode. Tests replace it.
var replaySleep replay.Sleeper = replay.Sleep

var replayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Replay the saved session, a transcript or a script on a fresh state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cmds  []string
			title string
			err   error
		)
		if len(args) == 1 {
			cmds, title, err = commandsFromFile(args[0])
		} else {
			cmds, title, err = commandsFromSession()
		}
		if err != nil {
			return err
		}
		if len(cmds) == 0 {
			return errors.New("nothing to replay")
		}

		speed := cfg.ReplaySpeed
		if replaySpeed > 0 {
			speed = replaySpeed
		}
		loop := shell.NewLoop(newShell(time.Now), newState(time.Now))

		if !replayPlain && interactive() {
			return tui.RunShell(loop, tui.Options{
				Title:        "replay " + title,
				Replay:       cmds,
				Speed:        speed,
				CharDelay:    cfg.CharDelay,
				CommandDelay: cfg.CommandDelay,
			})
		}

		out := cmd.OutOrStdout()
		p := replay.New(cmds, func(line string) error {
			echo(out, loop.Shell().Prompt(loop.State()), line)
			printResult(out, loop.Replay(line))
			return nil
		})
		// Line mode prints whole commands, so only the pause between them
		// applies.
		p.CharDelay = 0
		p.CommandDelay = cfg.CommandDelay
		if speed > 0 {
			p.SetSpeed(speed)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		loop.SetReplaying(true)
		defer loop.SetReplaying(false)
		if err := p.Run(ctx, replaySleep, nil); err != nil {
			return fmt.Errorf("replay stopped: %w", err)
		}
		hintColor.Fprintf(out, "replayed %d commands\n", len(cmds))
		return nil
	},
}

// commandsFromSession returns the command history of the saved session.
func commandsFromSession() ([]string, string, error) {
	store, err := session.NewSessionStore()
	if err != nil {
		return nil, "", err
	}
	sess, err := store.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, "", errors.New("no saved session to replay")
		}
		return nil, "", err
	}
	var cmds []string
	for _, h := range sess.State.History {
		cmds = append(cmds, h.Raw)
	}
	return cmds, "session", nil
}

// commandsFromFile reads a transcript, falling back to a lesson or plain
// script when the file is not a transcript.
func commandsFromFile(path string) ([]string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file not found: %s", path)
		}
		return nil, "", err
	}
	if t, err := bundle.ParserFor(path, data).Parse(data); err == nil {
		return t.Lines(), t.Session.Lesson, nil
	}
	lesson, err := script.Load(path)
	if err != nil {
		return nil, "", err
	}
	return lesson.Commands(), lesson.Name, nil
}

func init() {
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 0, "playback speed multiplier (default from config)")
	replayCmd.Flags().BoolVar(&replayPlain, "plain", false, "print commands instead of animating them in the TUI")
	rootCmd.AddCommand(replayCmd)
}
