package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/profile"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure gitsim (re-run anytime to edit settings)",
	// Bypass the normal PersistentPreRunE so setup works before profile exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd, false)
	},
}

// runSetup runs the interactive setup wizard on the command's streams.
// If firstRun is true, a welcome message is shown.
func runSetup(cmd *cobra.Command, firstRun bool) error {
	out := cmd.OutOrStdout()
	if firstRun {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Let's get you set up.")
	}

	// Load existing profile as defaults if present.
	var existing *profile.Profile
	if profile.Exists() {
		p, err := profile.Load()
		if err == nil {
			existing = p
		}
	}

	prof, err := profile.RunSetup(cmd.InOrStdin(), out, existing)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	if err := profile.Save(prof); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	fmt.Fprintln(out, "  ✓ Profile saved.")

	if prof.InstallPlugin && prof.PluginShell != "" {
		if err := profile.InstallPlugin(prof.PluginShell, out); err != nil {
			fmt.Fprintf(out, "  ⚠ Plugin install failed: %v\n", err)
			fmt.Fprintln(out, "    You can retry with: gitsim setup")
		}
	}

	fmt.Fprintln(out, "  Setup complete. Run 'gitsim shell' to start practising.")
	fmt.Fprintln(out)
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
