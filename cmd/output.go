package cmd

import (
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/fakeyudi/gitsim/internal/render"
	"github.com/fakeyudi/gitsim/internal/shell"
)

var (
	promptColor = color.New(color.FgGreen, color.Bold)
	hintColor   = color.New(color.Faint)
	errorColor  = color.New(color.FgRed)
	infoColor   = color.New(color.FgCyan)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
)

var kindColors = map[render.Kind]*color.Color{
	render.Header:        color.New(color.Bold),
	render.Hint:          hintColor,
	render.Staged:        okColor,
	render.Modified:      errorColor,
	render.Deleted:       errorColor,
	render.Untracked:     errorColor,
	render.BranchCurrent: color.New(color.FgGreen, color.Bold),
	render.Commit:        warnColor,
	render.Added:         okColor,
	render.Removed:       errorColor,
}

// printResult writes the output of one command in line mode.
func printResult(w io.Writer, res shell.Result) {
	for _, l := range res.Lines {
		c, ok := kindColors[l.Kind]
		if l.Kind == render.Normal {
			switch res.Class {
			case shell.Error:
				c, ok = errorColor, true
			case shell.Info:
				c, ok = infoColor, true
			}
		}
		if ok {
			c.Fprintln(w, l.Text)
		} else {
			io.WriteString(w, l.Text+"\n")
		}
	}
}

// echo prints a prompt followed by the command as if it were typed.
func echo(w io.Writer, prompt, line string) {
	promptColor.Fprint(w, prompt)
	io.WriteString(w, strings.TrimRight(line, "\n")+"\n")
}
