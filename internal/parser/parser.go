// Package parser turns a line of shell-like input into a Command.
package parser

import (
	"errors"
	"strings"
)

// ErrChained is returned for input that sequences several commands. The
// simulator wants every step run and observed on its own.
var ErrChained = errors.New("chained commands are not supported here, run step-by-step")

// ErrSyntax is returned when a redirect or pipe has nothing to act on.
var ErrSyntax = errors.New("syntax error")

// Redirect describes `> target` or `>> target`.
type Redirect struct {
	Target string
	Append bool
}

// Command is one parsed command, optionally piped into a second one.
type Command struct {
	Name     string
	Args     []string
	Redirect *Redirect
	Pipe     *Command
	Raw      string
}

// IsEmpty reports whether the input held no command.
func (c Command) IsEmpty() bool { return c.Name == "" }

// String renders the command back to shell syntax, quoting arguments that
// contain whitespace.
func (c Command) String() string {
	parts := []string{quote(c.Name)}
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	s := strings.Join(parts, " ")
	if c.Pipe != nil {
		s += " | " + c.Pipe.String()
	}
	if c.Redirect != nil {
		op := ">"
		if c.Redirect.Append {
			op = ">>"
		}
		s += " " + op + " " + quote(c.Redirect.Target)
	}
	return s
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t|><;&") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

// Parse tokenizes line. Quoting problems never fail: an unterminated quote
// runs to the end of the line. Empty input yields an empty Command.
func Parse(line string) (Command, error) {
	toks := tokenize(line)
	if len(toks) == 0 {
		return Command{Raw: line}, nil
	}

	var stages [][]token
	var current []token
	var redirect *Redirect

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.quoted {
			current = append(current, t)
			continue
		}
		switch t.text {
		case "&&", "||", ";", "&":
			return Command{Raw: line}, ErrChained
		case "|":
			if len(current) == 0 {
				return Command{Raw: line}, syntaxErr("|")
			}
			stages = append(stages, current)
			current = nil
			if len(stages) > 1 {
				return Command{Raw: line}, ErrChained
			}
		case ">", ">>":
			if i+1 >= len(toks) || (!toks[i+1].quoted && isOperator(toks[i+1].text)) {
				return Command{Raw: line}, syntaxErr("newline")
			}
			redirect = &Redirect{Target: toks[i+1].text, Append: t.text == ">>"}
			i++
		default:
			current = append(current, t)
		}
	}
	if len(current) == 0 {
		if len(stages) > 0 {
			return Command{Raw: line}, syntaxErr("|")
		}
		if redirect != nil {
			// A bare "> file" truncates the file, like a shell.
			return Command{Name: ":", Redirect: redirect, Raw: line}, nil
		}
		return Command{Raw: line}, nil
	}
	stages = append(stages, current)

	cmd := build(stages[0])
	cmd.Raw = line
	if len(stages) == 2 {
		pipe := build(stages[1])
		cmd.Pipe = &pipe
	}
	cmd.Redirect = redirect
	return cmd, nil
}

func build(toks []token) Command {
	cmd := Command{Name: toks[0].text}
	for _, t := range toks[1:] {
		cmd.Args = append(cmd.Args, t.text)
	}
	return cmd
}

func syntaxErr(near string) error {
	return &SyntaxError{Near: near}
}

// SyntaxError reports the token a shell would complain about.
type SyntaxError struct {
	Near string
}

func (e *SyntaxError) Error() string {
	return "syntax error near unexpected token `" + e.Near + "'"
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

func isOperator(s string) bool {
	switch s {
	case "|", ">", ">>", "&&", "||", ";", "&":
		return true
	}
	return false
}
