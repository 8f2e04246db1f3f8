// Package script loads lesson scripts: either plain text with one command per
// line, or YAML with expectations checked after each step.
package script

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/gitsim/internal/session"
)

// ErrEmpty is returned for a script without any steps.
var ErrEmpty = errors.New("script has no commands")

// Lesson is a named sequence of steps.
type Lesson struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
}

// Step is one command line and what should hold after it runs.
type Step struct {
	Run    string       `yaml:"run"`
	Expect *Expectation `yaml:"expect,omitempty"`
}

// Expectation is checked against a step's outcome. Zero fields are not
// checked.
type Expectation struct {
	Class      string   `yaml:"class,omitempty"`
	Contains   string   `yaml:"contains,omitempty"`
	Branch     string   `yaml:"branch,omitempty"`
	Commits    int      `yaml:"commits,omitempty"`
	Clean      *bool    `yaml:"clean,omitempty"`
	Files      []string `yaml:"files,omitempty"`
	MergeMade  bool     `yaml:"merge,omitempty"`
	PushedTo   string   `yaml:"pushed,omitempty"` // "remote/branch"
	StagedPath string   `yaml:"staged,omitempty"`
}

// Commands returns the command line of every step.
func (l *Lesson) Commands() []string {
	out := make([]string, len(l.Steps))
	for i, s := range l.Steps {
		out[i] = s.Run
	}
	return out
}

// Load reads a lesson from path. Files ending in .yaml or .yml are parsed as
// YAML; anything else is read as one command per line, skipping blank lines
// and # comments.
func Load(path string) (*Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data, name)
	}
	return ParseLines(data, name)
}

// ParseYAML parses a YAML lesson. name is used when the document has none.
func ParseYAML(data []byte, name string) (*Lesson, error) {
	var l Lesson
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse lesson: %w", err)
	}
	if l.Name == "" {
		l.Name = name
	}
	steps := l.Steps[:0]
	for _, s := range l.Steps {
		s.Run = strings.TrimSpace(s.Run)
		if s.Run != "" {
			steps = append(steps, s)
		}
	}
	l.Steps = steps
	if len(l.Steps) == 0 {
		return nil, ErrEmpty
	}
	return &l, nil
}

// ParseLines parses a plain script.
func ParseLines(data []byte, name string) (*Lesson, error) {
	l := &Lesson{Name: name}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		l.Steps = append(l.Steps, Step{Run: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(l.Steps) == 0 {
		return nil, ErrEmpty
	}
	return l, nil
}

type check struct {
	desc string
	pred session.Predicate
}

func (e Expectation) checks() []check {
	var out []check
	if e.Branch != "" {
		out = append(out, check{"on branch " + e.Branch, session.OnBranch(e.Branch)})
	}
	if e.Commits > 0 {
		out = append(out, check{fmt.Sprintf("at least %d commits", e.Commits), session.HasCommitCount(e.Commits)})
	}
	if e.Clean != nil {
		clean := session.IsClean()
		if *e.Clean {
			out = append(out, check{"a clean working tree", clean})
		} else {
			out = append(out, check{"uncommitted changes", func(s *session.State) bool { return !clean(s) }})
		}
	}
	for _, f := range e.Files {
		out = append(out, check{"file " + f, session.FileExists(f)})
	}
	if e.MergeMade {
		out = append(out, check{"a merge commit", session.HasMergeCommit()})
	}
	if remote, branch, ok := strings.Cut(e.PushedTo, "/"); ok {
		out = append(out, check{"a push to " + e.PushedTo, session.PushedTo(remote, branch)})
	}
	if e.StagedPath != "" {
		out = append(out, check{e.StagedPath + " staged", session.Staged(e.StagedPath)})
	}
	return out
}

// Predicate combines the state checks of e.
func (e Expectation) Predicate() session.Predicate {
	var preds []session.Predicate
	for _, c := range e.checks() {
		preds = append(preds, c.pred)
	}
	return session.All(preds...)
}

// Verify returns a description of every unmet expectation. class and output
// are the step's classification and text.
func (e Expectation) Verify(class, output string, st *session.State) []string {
	var problems []string
	if e.Class != "" && e.Class != class {
		problems = append(problems, fmt.Sprintf("expected a %s result, got %s", e.Class, class))
	}
	if e.Contains != "" && !strings.Contains(output, e.Contains) {
		problems = append(problems, fmt.Sprintf("expected output to contain %q", e.Contains))
	}
	for _, c := range e.checks() {
		if !c.pred(st) {
			problems = append(problems, "expected "+c.desc)
		}
	}
	return problems
}
