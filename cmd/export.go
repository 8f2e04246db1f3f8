package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/gitsim/internal/bundle"
	"github.com/fakeyudi/gitsim/internal/session"
	"github.com/fakeyudi/gitsim/internal/shell"
)

var (
	exportFormat string
	exportOutput string
	exportEnd    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a transcript of the saved session",
	Args:  cobra.NoArgs,
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

		// --format overrides the configured default.
		format := exportFormat
		if format == "" {
			format = cfg.DefaultFormat
		}
		renderer, err := bundle.RendererFor(format)
		if err != nil {
			return err
		}

		now := time.Now()
		t := bundle.FromSession(s, GetProfile().Signature().String(), now)
		data, err := renderer.Render(t)
		if err != nil {
			return fmt.Errorf("render transcript: %w", err)
		}

		outputPath := exportOutput
		if outputPath == "" {
			outputDir := cfg.OutputDir
			if outputDir == "" {
				outputDir = "."
			}
			name := "gitsim-" + now.Format("20060102-150405")
			outputPath = uniquePath(filepath.Join(outputDir, name), bundle.Extension(format))
		}
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}

		if exportEnd {
			if err := store.Delete(); err != nil {
				return err
			}
			if err := shell.TruncateCommandLog(); err != nil {
				return err
			}
		}

		cmd.Printf("Transcript written: %s (%d commands, %s)\n",
			outputPath, len(t.Commands), humanize.Bytes(uint64(len(data))))
		return nil
	},
}

// uniquePath returns base+ext, or base-N+ext for the first N that does not
// exist yet.
func uniquePath(base, ext string) string {
	p := base + ext
	for n := 2; ; n++ {
		if _, err := os.Stat(p); err != nil {
			return p
		}
		p = fmt.Sprintf("%s-%d%s", base, n, ext)
	}
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: markdown, json or yaml (overrides config)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output `FILE` (default: a timestamped file in the output dir)")
	exportCmd.Flags().BoolVar(&exportEnd, "end", false, "end the session after exporting")
	rootCmd.AddCommand(exportCmd)
}
