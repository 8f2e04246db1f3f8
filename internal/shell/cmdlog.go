package shell

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fakeyudi/gitsim/internal/logging"
	"github.com/fakeyudi/gitsim/internal/session"
)

// CommandLogPath returns the path to the gitsim command log file.
func CommandLogPath() (string, error) {
	dir, err := session.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "commands.log"), nil
}

var logMu sync.Mutex

// AppendCommandLog records one executed command.
// Format per line: <epoch>\t<class>\t<command>
func AppendCommandLog(raw string, class Class, at time.Time) error {
	path, err := CommandLogPath()
	if err != nil {
		return err
	}
	logMu.Lock()
	defer logMu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	raw = strings.ReplaceAll(raw, "\n", " ")
	if _, err := fmt.Fprintf(f, "%d\t%s\t%s\n", at.Unix(), class, raw); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CommandLogHook returns a Hook that appends every command to the log.
// Failures are logged and otherwise ignored.
func CommandLogHook() Hook {
	return func(line string, res Result, st *session.State) {
		at := time.Now()
		if e, ok := st.LastEntry(); ok {
			at = e.Timestamp
		}
		if err := AppendCommandLog(line, res.Class, at); err != nil {
			logging.L().Warn("append command log", "err", err)
		}
	}
}

// ReadCommandLog reads all entries from the command log as history entries
// with accurate timestamps.
func ReadCommandLog() ([]session.HistoryEntry, error) {
	path, err := CommandLogPath()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no log yet
		}
		return nil, err
	}
	defer f.Close()

	var entries []session.HistoryEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), "\t", 3)
		if len(parts) != 3 || parts[2] == "" {
			continue
		}
		epoch, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, session.HistoryEntry{
			Raw:       parts[2],
			Timestamp: time.Unix(epoch, 0),
			Class:     ParseClass(parts[1]).String(),
		})
	}
	return entries, scanner.Err()
}

// TruncateCommandLog empties the command log when a session is reset.
func TruncateCommandLog() error {
	path, err := CommandLogPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.WriteFile(path, nil, 0o644)
}
