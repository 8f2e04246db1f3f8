// Package tui provides the Bubble Tea front ends: the interactive practice
// shell (with replay) and the transcript viewer.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/gitsim/internal/render"
	"github.com/fakeyudi/gitsim/internal/shell"
)

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	replayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

// kindStyles colour output lines by what they describe.
var kindStyles = map[render.Kind]lipgloss.Style{
	render.Header:        lipgloss.NewStyle().Bold(true),
	render.Hint:          dimStyle,
	render.Staged:        lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
	render.Modified:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	render.Deleted:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	render.Untracked:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	render.Branch:        lipgloss.NewStyle(),
	render.BranchCurrent: lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true),
	render.Commit:        lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
	render.Added:         lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
	render.Removed:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

// classStyles apply to Normal lines, depending on the command's outcome.
var classStyles = map[shell.Class]lipgloss.Style{
	shell.Error: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	shell.Info:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
}

// styleLine renders one output line of a command classified as class.
func styleLine(l render.Line, class shell.Class) string {
	if l.Kind == render.Normal {
		if s, ok := classStyles[class]; ok {
			return s.Render(l.Text)
		}
		return l.Text
	}
	if s, ok := kindStyles[l.Kind]; ok {
		return s.Render(l.Text)
	}
	return l.Text
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func bullet(text string) string {
	return bulletStyle.Render("  •") + "  " + text + "\n"
}
