// Package profile manages the user's persistent gitsim profile.
// The profile is stored at ~/.config/gitsim/profile.json and is created
// once via the interactive setup flow, then referenced on every command.
package profile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fakeyudi/gitsim/internal/config"
	"github.com/fakeyudi/gitsim/internal/vcs"
)

// Profile holds user-level preferences set during first-run setup.
type Profile struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	DefaultFormat string `json:"default_format"` // "markdown" | "json" | "yaml"
	OutputDir     string `json:"output_dir"`     // default transcript output dir
	InstallPlugin bool   `json:"install_plugin"` // completion + gsim shortcut
	PluginShell   string `json:"plugin_shell"`   // "zsh" | "bash" | ""
}

// Default is used before setup has run.
func Default() *Profile {
	return &Profile{
		Name:          "Student",
		Email:         "student@example.com",
		DefaultFormat: "markdown",
		OutputDir:     ".",
	}
}

// Signature is the author recorded on simulated commits.
func (p *Profile) Signature() vcs.Signature {
	name, email := p.Name, p.Email
	if name == "" {
		name = "Student"
	}
	if email == "" {
		email = strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	}
	return vcs.Signature{Name: name, Email: email}
}

// profilePath returns the path to the profile file.
func profilePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.json"), nil
}

// Exists reports whether a profile file is present on disk.
func Exists() bool {
	p, err := profilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load reads the profile from disk. Returns an error if the file is missing or malformed.
func Load() (*Profile, error) {
	p, err := profilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("profile not found, run 'gitsim setup' to configure: %w", err)
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("malformed profile at %s: %w", p, err)
	}
	return &prof, nil
}

// Save writes the profile to disk, creating the config directory if needed.
func Save(prof *Profile) error {
	p, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// RunSetup runs the interactive setup wizard, reading answers from in and
// writing prompts to out. If existing is non-nil, it is used as the default
// for each prompt (edit mode).
func RunSetup(in io.Reader, out io.Writer, existing *Profile) (*Profile, error) {
	r := bufio.NewReader(in)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	askBool := func(prompt string, defaultVal bool) (bool, error) {
		def := "n"
		if defaultVal {
			def = "y"
		}
		ans, err := ask(prompt+" (y/n)", def)
		if err != nil {
			return false, err
		}
		return strings.ToLower(ans) == "y" || strings.ToLower(ans) == "yes", nil
	}

	prof := Default()
	prof.InstallPlugin = true
	if existing != nil {
		*prof = *existing
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(out, "  │    gitsim: first-time setup     │")
	fmt.Fprintln(out, "  └─────────────────────────────────┘")
	fmt.Fprintln(out)

	var err error

	prof.Name, err = ask("  Your name (used as commit author)", prof.Name)
	if err != nil {
		return nil, err
	}
	prof.Email, err = ask("  Your email", prof.Email)
	if err != nil {
		return nil, err
	}

	format, err := ask("  Default export format (markdown/json/yaml)", prof.DefaultFormat)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json", "yaml":
		prof.DefaultFormat = format
	default:
		prof.DefaultFormat = "markdown"
	}

	prof.OutputDir, err = ask("  Default output directory", prof.OutputDir)
	if err != nil {
		return nil, err
	}

	prof.InstallPlugin, err = askBool("  Install shell completion and the gsim shortcut", prof.InstallPlugin)
	if err != nil {
		return nil, err
	}
	if prof.InstallPlugin {
		shell, err := ask("  Shell (zsh/bash)", detectShell())
		if err != nil {
			return nil, err
		}
		prof.PluginShell = shell
	} else {
		prof.PluginShell = ""
	}

	fmt.Fprintln(out)
	return prof, nil
}

// detectShell returns the base name of the current shell.
func detectShell() string {
	shell := filepath.Base(os.Getenv("SHELL"))
	if shell == "zsh" || shell == "bash" {
		return shell
	}
	return "zsh"
}
