package bundle

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parser deserializes a transcript file back into structured data.
type Parser interface {
	Parse(data []byte) (*Transcript, error)
}

// JSONParser parses a JSON-encoded Transcript.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*Transcript, error) {
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse JSON transcript: %w", err)
	}
	return &t, nil
}

// YAMLParser parses a YAML-encoded Transcript.
type YAMLParser struct{}

func (p *YAMLParser) Parse(data []byte) (*Transcript, error) {
	var t Transcript
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse YAML transcript: %w", err)
	}
	if t.Session.ID == "" && len(t.Commands) == 0 {
		return nil, fmt.Errorf("not a gitsim transcript: no session or commands")
	}
	return &t, nil
}

// MarkdownParser parses a Markdown-rendered Transcript by extracting the
// embedded base64 JSON payload from the sentinel comments.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte) (*Transcript, error) {
	content := string(data)

	if !strings.Contains(content, versionSentinel) {
		return nil, fmt.Errorf("not a valid gitsim transcript: missing version sentinel")
	}

	start := strings.Index(content, dataPrefix)
	if start == -1 {
		return nil, fmt.Errorf("not a valid gitsim transcript: missing data payload")
	}
	start += len(dataPrefix)
	end := strings.Index(content[start:], dataSuffix)
	if end == -1 {
		return nil, fmt.Errorf("not a valid gitsim transcript: malformed data payload")
	}
	encoded := content[start : start+end]

	jsonBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("not a valid gitsim transcript: corrupted base64 payload: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(jsonBytes, &t); err != nil {
		return nil, fmt.Errorf("not a valid gitsim transcript: failed to parse embedded JSON: %w", err)
	}
	return &t, nil
}

// ParserFor picks a parser from the file extension of path, falling back to
// sniffing the content.
func ParserFor(path string, data []byte) Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &JSONParser{}
	case ".yaml", ".yml":
		return &YAMLParser{}
	case ".md", ".markdown":
		return &MarkdownParser{}
	}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		return &JSONParser{}
	case bytes.HasPrefix(trimmed, []byte(versionSentinel)):
		return &MarkdownParser{}
	}
	return &YAMLParser{}
}
