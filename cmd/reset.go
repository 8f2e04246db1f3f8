package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/shell"
)

var resetCmd = &cobra.Command{
	Use:   "reset-session",
	Short: "Discard the saved session and its command log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}
		if err := store.Delete(); err != nil {
			return err
		}
		if err := shell.TruncateCommandLog(); err != nil {
			return err
		}
		cmd.Println("Session discarded.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
