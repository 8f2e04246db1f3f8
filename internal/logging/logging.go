// Package logging configures the gitsim diagnostic logger.
//
// Logging is disabled by default so it never interferes with simulated
// command output. Set GITSIM_LOG_FILE to enable it and GITSIM_LOG_LEVEL to
// control verbosity (debug, info, warn, error).
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	logger  = log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	enabled bool
)

// ParseLevel maps a level name to a log.Level. Unknown names map to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// Init opens logPath for appending and routes all gitsim logging to it.
// Environment variables take precedence over the arguments. An empty path
// leaves logging disabled.
func Init(logPath, level string) error {
	if env := os.Getenv("GITSIM_LOG_FILE"); env != "" {
		logPath = env
	}
	if env := os.Getenv("GITSIM_LOG_LEVEL"); env != "" {
		level = env
	}
	if logPath == "" {
		return nil
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}

	SetLogger(log.NewWithOptions(f, log.Options{
		Level:           ParseLevel(level),
		Prefix:          "gitsim",
		ReportTimestamp: true,
	}))
	return nil
}

// SetLogger replaces the active logger. Passing nil disables logging.
func SetLogger(l *log.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
		enabled = false
		return
	}
	logger = l
	enabled = true
}

// L returns the active logger. It is always non-nil.
func L() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Enabled reports whether a log destination has been configured.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Op starts timing an operation and returns a completion func that logs the
// outcome with any extra key-values supplied at completion.
//
//	done := logging.Op("commit", "branch", name)
//	defer done(err, "id", id)
func Op(op string, keyvals ...any) func(error, ...any) {
	if !Enabled() {
		return func(error, ...any) {}
	}

	start := time.Now()
	return func(err error, resultKeyvals ...any) {
		args := make([]any, 0, len(keyvals)+len(resultKeyvals)+6)
		args = append(args, "op", op)
		args = append(args, "duration", time.Since(start).String())
		args = append(args, keyvals...)
		args = append(args, resultKeyvals...)

		l := L()
		if err != nil {
			args = append(args, "error", err.Error())
			l.Error("operation failed", args...)
			return
		}
		l.Debug("operation complete", args...)
	}
}

// Truncate shortens s to maxLen bytes for safe logging of user input.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
