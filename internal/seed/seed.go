// Package seed imports a directory from the real filesystem into a virtual
// one, so a session can start from an existing project.
package seed

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/fakeyudi/gitsim/internal/logging"
	"github.com/fakeyudi/gitsim/internal/vfs"
)

// MaxFileSize is the largest file copied into the virtual tree.
const MaxFileSize = 64 << 10

// ignoreFiles are read from Root and merged with the configured patterns.
var ignoreFiles = []string{".gitignore", ".gitsimignore"}

// Loader copies the text files below Root.
type Loader struct {
	Root           string
	IgnorePatterns []string
}

// Result lists the virtual paths written and any files that were skipped.
type Result struct {
	Files    []string
	Warnings []string
}

// Load copies every eligible file below l.Root into fsys under dest, keeping
// relative paths. Binary files, files over MaxFileSize and ignored paths are
// skipped; .git directories are never copied. Unreadable entries become
// warnings, not errors.
func (l *Loader) Load(ctx context.Context, fsys *vfs.FS, dest string) (res Result, err error) {
	done := logging.Op("seed.load", "root", l.Root, "dest", dest)
	defer func() { done(err, "files", len(res.Files), "warnings", len(res.Warnings)) }()

	info, err := os.Stat(l.Root)
	if err != nil {
		return res, err
	}
	if !info.IsDir() {
		return res, fmt.Errorf("seed %s: not a directory", l.Root)
	}

	patterns, err := l.loadIgnorePatterns()
	if err != nil {
		// Non-fatal: continue with configured patterns only.
		res.Warnings = append(res.Warnings, "failed to load ignore patterns: "+err.Error())
	}

	if err := fsys.Mkdir("/", dest, true); err != nil {
		return res, err
	}

	err = filepath.WalkDir(l.Root, func(path string, d fs.DirEntry, werr error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if werr != nil {
			res.Warnings = append(res.Warnings, werr.Error())
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, rerr := filepath.Rel(l.Root, path)
		if rerr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || isIgnored(rel, true, patterns) {
				return fs.SkipDir
			}
			return fsys.Mkdir(dest, rel, true)
		}
		if !d.Type().IsRegular() || isIgnored(rel, false, patterns) {
			return nil
		}

		fi, ierr := d.Info()
		if ierr != nil {
			res.Warnings = append(res.Warnings, ierr.Error())
			return nil
		}
		if fi.Size() > MaxFileSize {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: skipped, %s exceeds %s",
				rel, humanize.IBytes(uint64(fi.Size())), humanize.IBytes(MaxFileSize)))
			return nil
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			res.Warnings = append(res.Warnings, rerr.Error())
			return nil
		}
		if isBinary(data) {
			res.Warnings = append(res.Warnings, rel+": skipped, binary file")
			return nil
		}
		if werr := fsys.WriteFile(dest, rel, string(data), false); werr != nil {
			return werr
		}
		res.Files = append(res.Files, vfs.Join(dest, rel))
		return nil
	})
	return res, err
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)
}

// isIgnored reports whether rel matches any gitignore-style pattern. A
// trailing slash restricts a pattern to directories and a leading slash
// anchors it at Root.
func isIgnored(rel string, dir bool, patterns []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		if strings.HasSuffix(pattern, "/") {
			if !dir {
				continue
			}
			pattern = strings.TrimSuffix(pattern, "/")
		}
		if strings.HasPrefix(pattern, "/") {
			if ok, _ := filepath.Match(pattern[1:], rel); ok {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// loadIgnorePatterns merges the configured patterns with those from the
// ignore files found in Root.
func (l *Loader) loadIgnorePatterns() ([]string, error) {
	patterns := append([]string(nil), l.IgnorePatterns...)
	for _, name := range ignoreFiles {
		extra, err := readPatternFile(filepath.Join(l.Root, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return patterns, err
		}
		patterns = append(patterns, extra...)
	}
	return patterns, nil
}

// readPatternFile returns the non-empty, non-comment lines of a
// gitignore-style file.
func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}
