package profile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fakeyudi/gitsim/internal/config"
)

// ZshPlugin loads gitsim completion and defines the gsim shortcut.
const ZshPlugin = `# gitsim shell plugin, auto-generated, do not edit manually
# Source this file from your ~/.zshrc:
#   source ~/.config/gitsim/gitsim.plugin.zsh

if command -v gitsim >/dev/null 2>&1; then
  source <(gitsim completion zsh)
  compdef _gitsim gitsim
fi

# gsim opens the practice shell; any arguments are passed through.
gsim() {
  gitsim shell "$@"
}
`

// BashPlugin is the bash counterpart of ZshPlugin.
const BashPlugin = `# gitsim shell plugin, auto-generated, do not edit manually
# Source this file from your ~/.bashrc:
#   source ~/.config/gitsim/gitsim.plugin.bash

if command -v gitsim >/dev/null 2>&1; then
  source <(gitsim completion bash)
fi

gsim() {
  gitsim shell "$@"
}
`

// PluginPath returns the path where the plugin file should be written.
func PluginPath(shell string) (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gitsim.plugin."+shell), nil
}

// InstallPlugin writes the plugin file for the given shell and prints the
// source instruction the user needs to add to their rc file.
func InstallPlugin(shell string, out io.Writer) error {
	var content string
	switch shell {
	case "zsh":
		content = ZshPlugin
	case "bash":
		content = BashPlugin
	default:
		return fmt.Errorf("unsupported shell for plugin: %s (supported: zsh, bash)", shell)
	}

	path, err := PluginPath(shell)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing plugin file: %w", err)
	}

	rcFile := rcFileName(shell)
	fmt.Fprintf(out, "\n  ✓ Plugin written to %s\n", path)
	fmt.Fprintf(out, "\n  Add this line to your %s:\n", rcFile)
	fmt.Fprintf(out, "    source %s\n", path)
	fmt.Fprintf(out, "\n  Then reload: source %s\n\n", rcFile)
	return nil
}

// PluginInstalled reports whether the plugin file exists on disk.
func PluginInstalled(shell string) bool {
	path, err := PluginPath(shell)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func rcFileName(shell string) string {
	switch shell {
	case "zsh":
		return "~/.zshrc"
	case "bash":
		return "~/.bashrc"
	default:
		return "~/." + shell + "rc"
	}
}
