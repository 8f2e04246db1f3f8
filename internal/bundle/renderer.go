package bundle

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Markdown sentinels carrying the embedded payload.
const (
	versionSentinel = "<!-- gitsim-transcript-version: 1 -->"
	dataPrefix      = "<!-- gitsim-data: "
	dataSuffix      = " -->"
)

// Renderer serializes a Transcript to bytes.
type Renderer interface {
	Render(t *Transcript) ([]byte, error)
}

// JSONRenderer renders a Transcript as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(t *Transcript) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// YAMLRenderer renders a Transcript as YAML.
type YAMLRenderer struct{}

func (r *YAMLRenderer) Render(t *Transcript) ([]byte, error) {
	return yaml.Marshal(t)
}

// MarkdownRenderer renders a Transcript as human-readable Markdown with
// an embedded base64 JSON payload for lossless round-trip parsing.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(t *Transcript) ([]byte, error) {
	jsonBytes, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder

	sb.WriteString(versionSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, encoded, dataSuffix)

	title := t.Session.Lesson
	if title == "" {
		title = "Session " + t.Session.ID
	}
	fmt.Fprintf(&sb, "# gitsim: %s (%s)\n\n", title, t.Session.EndTime.Format("2006-01-02 15:04:05 MST"))

	// ## Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Duration: %s\n", t.Session.Duration)
	if t.Session.Author != "" {
		fmt.Fprintf(&sb, "- Author: %s\n", t.Session.Author)
	}
	fmt.Fprintf(&sb, "- Commands: %d\n", len(t.Commands))
	if t.Session.RepoRoot != "" {
		fmt.Fprintf(&sb, "- Repository: %s\n", t.Session.RepoRoot)
		fmt.Fprintf(&sb, "- HEAD: %s\n", t.Head)
	}
	sb.WriteString("\n")

	// ## Commands
	sb.WriteString("## Commands\n\n")
	if len(t.Commands) == 0 {
		sb.WriteString("_No commands recorded._\n")
	} else {
		for i, c := range t.Commands {
			fmt.Fprintf(&sb, "%d. `%s` (%s)\n", i+1, c.Raw, c.Class)
			if c.Output != "" {
				sb.WriteString("\n   ```\n")
				for _, line := range strings.Split(strings.TrimRight(c.Output, "\n"), "\n") {
					sb.WriteString("   " + line + "\n")
				}
				sb.WriteString("   ```\n\n")
			}
		}
	}
	sb.WriteString("\n")

	// ## Branches
	sb.WriteString("## Branches\n\n")
	if len(t.Branches) == 0 {
		sb.WriteString("_No branches._\n")
	} else {
		names := make([]string, 0, len(t.Branches))
		for name := range t.Branches {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("| Branch | Commit |\n")
		sb.WriteString("|--------|--------|\n")
		for _, name := range names {
			id := t.Branches[name]
			if id == "" {
				id = "_unborn_"
			}
			fmt.Fprintf(&sb, "| %s | %s |\n", name, shortID(id))
		}
	}
	sb.WriteString("\n")

	// ## Commits
	sb.WriteString("## Commits\n\n")
	if len(t.Commits) == 0 {
		sb.WriteString("_No commits._\n")
	} else {
		for _, c := range t.Commits {
			fmt.Fprintf(&sb, "- %s %s (%s, %s)\n",
				shortID(c.ID), firstLine(c.Message), c.Author, c.Timestamp.Format("2006-01-02 15:04:05"))
		}
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// RendererFor returns the renderer for a format name: markdown, json or
// yaml.
func RendererFor(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "markdown", "md", "":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "yaml", "yml":
		return &YAMLRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want markdown, json or yaml)", format)
}

// Extension returns the file extension used for a format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "json":
		return ".json"
	case "yaml", "yml":
		return ".yaml"
	}
	return ".md"
}
