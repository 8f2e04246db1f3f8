package cmd

import (
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}

		s, err := store.Load()
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				cmd.Println("no saved session")
				return nil
			}
			return err
		}

		st := s.State
		failed := 0
		for _, h := range st.History {
			if h.Class == "error" {
				failed++
			}
		}

		cmd.Printf("Session: %s\n", s.ID)
		if s.Lesson != "" {
			cmd.Printf("Lesson: %s\n", s.Lesson)
		}
		cmd.Printf("Started: %s (%s)\n", s.StartTime.Format(time.RFC3339), humanize.Time(s.StartTime))
		cmd.Printf("Last command: %s\n", humanize.Time(s.UpdatedAt))
		cmd.Printf("Commands: %d (%d failed)\n", len(st.History), failed)
		cmd.Printf("Directory: %s\n", st.Cwd)
		if !st.Repo.Initialized {
			cmd.Println("Repository: not initialized")
			return nil
		}
		head := st.Repo.CurrentBranch()
		if head == "" {
			head = "detached HEAD"
		}
		cmd.Printf("Repository: %s on %s\n", st.Repo.Root, head)
		cmd.Printf("Commits: %d\n", st.Repo.Graph.Len())
		cmd.Printf("Staged: %d\n", len(st.Repo.Index))
		cmd.Printf("Tracked: %d\n", len(st.Repo.Tracked))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
