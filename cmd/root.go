package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/config"
	"github.com/fakeyudi/gitsim/internal/logging"
	"github.com/fakeyudi/gitsim/internal/profile"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/shell"
	"github.com/fakeyudi/gitsim/internal/vcs"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg = config.Defaults()

// activeProfile holds the loaded user profile.
var activeProfile *profile.Profile

// interactive reports whether stdin is a terminal. Tests replace it.
var interactive = func() bool { return term.IsTerminal(os.Stdin.Fd()) }

var rootCmd = &cobra.Command{
	Use:   "gitsim",
	Short: "Practice git in a simulated shell and repository",
	Long: `gitsim runs a sandboxed shell with an in-memory filesystem and a
simulated git, so you can experiment with branches, merges and remotes
without touching a real repository.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// First-run: profile missing, run the setup wizard when a human is
		// at the keyboard.
		if !profile.Exists() && interactive() {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "  Welcome to gitsim! Looks like this is your first time.")
			if err := runSetup(cmd, true); err != nil {
				return err
			}
		}

		activeProfile = nil
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		// Profile values fill in config gaps.
		if activeProfile != nil {
			if cfg.DefaultFormat == "" || cfg.DefaultFormat == "markdown" {
				if activeProfile.DefaultFormat != "" {
					cfg.DefaultFormat = activeProfile.DefaultFormat
				}
			}
			if cfg.OutputDir == "." && activeProfile.OutputDir != "" && activeProfile.OutputDir != "." {
				cfg.OutputDir = activeProfile.OutputDir
			}
		}

		if err := logging.Init(cfg.LogFile, cfg.LogLevel); err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active user profile, or the defaults before setup.
func GetProfile() *profile.Profile {
	if activeProfile == nil {
		return profile.Default()
	}
	return activeProfile
}

// newShell builds a dispatcher whose commits are signed by the profile.
func newShell(clock func() time.Time, hooks ...shell.Hook) *shell.Shell {
	engine := vcs.New(GetProfile().Signature(), clock)
	sh := shell.New(engine, clock)
	sh.Host = cfg.User() + "@" + cfg.Host()
	sh.Hooks = append(sh.Hooks, hooks...)
	return sh
}

// newState returns an empty state for the configured user.
func newState(clock func() time.Time) *session.State {
	return session.NewState(cfg.Owner(), clock)
}
