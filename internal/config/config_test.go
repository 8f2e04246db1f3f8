package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Feature: gitsim, Property 15: Config merge precedence
func TestConfigMergePrecedence(t *testing.T) {
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.@-]{1,20}`)

	configGen := rapid.Custom(func(t *rapid.T) *Config {
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasDefaultFormat") {
			cfg.DefaultFormat = nonEmptyString.Draw(t, "defaultFormat")
		}
		if rapid.Bool().Draw(t, "hasOutputDir") {
			cfg.OutputDir = nonEmptyString.Draw(t, "outputDir")
		}
		if rapid.Bool().Draw(t, "hasPrompt") {
			cfg.Prompt = nonEmptyString.Draw(t, "prompt")
		}
		if rapid.Bool().Draw(t, "hasCharDelay") {
			cfg.CharDelay = time.Duration(rapid.IntRange(1, 1000).Draw(t, "charDelay")) * time.Millisecond
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")

		merged := Merge(global, project)
		defaults := Defaults()

		checkStringField(t, "DefaultFormat",
			global.DefaultFormat, project.DefaultFormat, defaults.DefaultFormat,
			merged.DefaultFormat)
		checkStringField(t, "OutputDir",
			global.OutputDir, project.OutputDir, defaults.OutputDir,
			merged.OutputDir)
		checkStringField(t, "Prompt",
			global.Prompt, project.Prompt, defaults.Prompt,
			merged.Prompt)

		want := defaults.CharDelay
		switch {
		case project.CharDelay > 0:
			want = project.CharDelay
		case global.CharDelay > 0:
			want = global.CharDelay
		}
		if merged.CharDelay != want {
			t.Fatalf("CharDelay: expected %v, got %v", want, merged.CharDelay)
		}
	})
}

// checkStringField asserts the merge precedence rule for a single string field:
//   - project non-empty  → merged == project
//   - project empty, global non-empty → merged == global
//   - both empty → merged == defaultVal
func checkStringField(t *rapid.T, name, globalVal, projectVal, defaultVal, mergedVal string) {
	t.Helper()
	switch {
	case projectVal != "":
		if mergedVal != projectVal {
			t.Fatalf("%s: both set, expected project value %q, got %q", name, projectVal, mergedVal)
		}
	case globalVal != "":
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set, expected global value %q, got %q", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set, expected default %q, got %q", name, defaultVal, mergedVal)
		}
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	assert.Equal(t, "markdown", d.DefaultFormat)
	assert.Equal(t, ".", d.OutputDir)
	assert.NotNil(t, d.IgnorePatterns)
	assert.Empty(t, d.IgnorePatterns)
	assert.Equal(t, 40*time.Millisecond, d.CharDelay)
	assert.Equal(t, 600*time.Millisecond, d.CommandDelay)
	assert.Equal(t, 1.0, d.ReplaySpeed)
	assert.Equal(t, "student", d.Owner())
	assert.Equal(t, "gitsim", d.Host())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadGlobal()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadGlobalYAMLAndEnv(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("GITSIM_LOG_LEVEL", "debug")

	dir := filepath.Join(tmp, ".config", "gitsim")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
default_format: yaml
char_delay: 10ms
replay_speed: 2.5
ignore_patterns: ["*.log", "node_modules/"]
prompt: ada@lab
`), 0o644))

	cfg, err := LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.DefaultFormat)
	assert.Equal(t, 10*time.Millisecond, cfg.CharDelay)
	assert.Equal(t, 2.5, cfg.ReplaySpeed)
	assert.Equal(t, []string{"*.log", "node_modules/"}, cfg.IgnorePatterns)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ada", cfg.User())
	assert.Equal(t, "lab", cfg.Host())

	merged := Merge(cfg, nil)
	assert.Equal(t, 600*time.Millisecond, merged.CommandDelay, "unset keys fall back to defaults")
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadProject()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadProjectJSON(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitsim.json"), []byte(`{"output_dir": "out", "home_dir": "/home/ada"}`), 0o644))

	cfg, err := LoadProject()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "ada", cfg.Owner())
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfgDir := filepath.Join(tmp, ".config", "gitsim")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte("{invalid json"), 0o644))

	_, err := LoadGlobal()
	require.Error(t, err)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	assert.Contains(t, err.Error(), "config.json")
}
