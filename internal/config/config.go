// Package config loads gitsim settings from a global file, an optional
// per-project file and GITSIM_* environment variables.
package config

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configurable gitsim settings.
type Config struct {
	DefaultFormat  string        `mapstructure:"default_format"` // "markdown" | "json" | "yaml"
	OutputDir      string        `mapstructure:"output_dir"`
	IgnorePatterns []string      `mapstructure:"ignore_patterns"`
	ReplaySpeed    float64       `mapstructure:"replay_speed"`
	CharDelay      time.Duration `mapstructure:"char_delay"`
	CommandDelay   time.Duration `mapstructure:"command_delay"`
	Prompt         string        `mapstructure:"prompt"` // user@host
	HomeDir        string        `mapstructure:"home_dir"`
	LogFile        string        `mapstructure:"log_file"`
	LogLevel       string        `mapstructure:"log_level"`
}

// keys lists every setting, for environment binding.
var keys = []string{
	"default_format", "output_dir", "ignore_patterns", "replay_speed",
	"char_delay", "command_delay", "prompt", "home_dir", "log_file", "log_level",
}

// configExts are tried in order when looking for a config file.
var configExts = []string{".json", ".yaml", ".yml"}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DefaultFormat:  "markdown",
		OutputDir:      ".",
		IgnorePatterns: []string{},
		ReplaySpeed:    1,
		CharDelay:      40 * time.Millisecond,
		CommandDelay:   600 * time.Millisecond,
		Prompt:         "student@gitsim",
		HomeDir:        "/home/student",
		LogLevel:       "info",
	}
}

// Dir returns ~/.config/gitsim.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gitsim"), nil
}

// LoadGlobal reads ~/.config/gitsim/config.{json,yaml} with GITSIM_*
// environment variables applied on top. Returns defaults if neither a file
// nor an environment override exists.
func LoadGlobal() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetEnvPrefix("GITSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	file := findFile(filepath.Join(dir, "config"))
	if file == "" {
		setDefaults(v)
	}
	return load(v, file)
}

// LoadProject reads .gitsim.{json,yaml} in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	file := findFile(".gitsim")
	if file == "" {
		return nil, nil
	}
	return load(viper.New(), file)
}

func findFile(base string) string {
	for _, ext := range configExts {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return ""
}

// load reads file (if any) into v and decodes it.
func load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				d := Defaults()
				return &d, nil
			}
			return nil, &ParseError{Path: file, Err: err}
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ParseError{Path: file, Err: err}
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("default_format", d.DefaultFormat)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("ignore_patterns", d.IgnorePatterns)
	v.SetDefault("replay_speed", d.ReplaySpeed)
	v.SetDefault("char_delay", d.CharDelay)
	v.SetDefault("command_delay", d.CommandDelay)
	v.SetDefault("prompt", d.Prompt)
	v.SetDefault("home_dir", d.HomeDir)
	v.SetDefault("log_level", d.LogLevel)
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.DefaultFormat != "" {
			result.DefaultFormat = c.DefaultFormat
		}
		if c.OutputDir != "" {
			result.OutputDir = c.OutputDir
		}
		if len(c.IgnorePatterns) > 0 {
			result.IgnorePatterns = c.IgnorePatterns
		}
		if c.ReplaySpeed > 0 {
			result.ReplaySpeed = c.ReplaySpeed
		}
		if c.CharDelay > 0 {
			result.CharDelay = c.CharDelay
		}
		if c.CommandDelay > 0 {
			result.CommandDelay = c.CommandDelay
		}
		if c.Prompt != "" {
			result.Prompt = c.Prompt
		}
		if c.HomeDir != "" {
			result.HomeDir = c.HomeDir
		}
		if c.LogFile != "" {
			result.LogFile = c.LogFile
		}
		if c.LogLevel != "" {
			result.LogLevel = c.LogLevel
		}
	}
	return result
}

// Load is LoadGlobal and LoadProject merged.
func Load() (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Defaults(), err
	}
	project, err := LoadProject()
	if err != nil {
		return Defaults(), err
	}
	return Merge(global, project), nil
}

// Owner is the account whose home directory the virtual filesystem starts
// in, taken from the last element of HomeDir.
func (c Config) Owner() string {
	owner := path.Base(strings.TrimRight(c.HomeDir, "/"))
	if owner == "." || owner == "/" || owner == "" {
		return c.User()
	}
	return owner
}

// User returns the account name of the prompt, e.g. "student".
func (c Config) User() string {
	user, _, _ := strings.Cut(c.Prompt, "@")
	if user == "" {
		return "student"
	}
	return user
}

// Host returns the host part of the prompt.
func (c Config) Host() string {
	_, host, ok := strings.Cut(c.Prompt, "@")
	if !ok || host == "" {
		return "gitsim"
	}
	return host
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
