// Package scan enumerates candidate files under a root directory.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/kbsync/core"
)

var (
	// ErrNotDirectory is returned when the scan root is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// DiscoveryError represents an error during file discovery
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery error at %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Result holds the outcome of a scan pass.
type Result struct {
	Root     string // Absolute scan root
	Files    []core.FileRecord
	Problems []*DiscoveryError // Entries that could not be read; the walk continued past them
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions sets the file extensions to accept (case-insensitive, dot optional).
// An empty list keeps the current set.
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) {
		if len(exts) == 0 {
			return
		}
		set := make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			if n := core.NormalizeExtension(ext); n != "" {
				set[n] = struct{}{}
			}
		}
		s.extensions = set
	}
}

// WithSkipHidden configures whether to skip files and directories starting with ".".
func WithSkipHidden(skip bool) Option {
	return func(s *Scanner) {
		s.skipHidden = skip
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// Scanner walks a directory tree and collects files with supported extensions.
type Scanner struct {
	extensions map[string]struct{}
	skipHidden bool
	logger     *slog.Logger
}

// NewScanner creates a Scanner accepting core.DefaultExtensions unless configured otherwise.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{logger: slog.Default()}
	WithExtensions(core.DefaultExtensions...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extensions returns the accepted extensions in sorted order.
func (s *Scanner) Extensions() []string {
	return slices.Sorted(maps.Keys(s.extensions))
}

// Accepts reports whether path has a supported extension.
func (s *Scanner) Accepts(path string) bool {
	_, ok := s.extensions[core.NormalizeExtension(filepath.Ext(path))]
	return ok
}

// Scan recursively walks root and returns every accepted regular file in
// lexical order. Symlinks to regular files are included. Unreadable entries,
// dangling links among them, are collected in Result.Problems and skipped.
// A missing or non-directory root is an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	}

	result := &Result{Root: abs}

	err = filepath.WalkDir(abs, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if path == abs {
				return walkErr
			}
			result.Problems = append(result.Problems, &DiscoveryError{Path: path, Err: walkErr})
			s.logger.Warn("skipping unreadable entry", "path", path, "err", walkErr)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != abs && s.skipHidden && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() || !s.Accepts(path) {
			return nil
		}

		fi, err := statEntry(path, entry)
		if err != nil {
			result.Problems = append(result.Problems, &DiscoveryError{Path: path, Err: err})
			s.logger.Warn("skipping file without stat info", "path", path, "err", err)
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		result.Files = append(result.Files, core.NewFileRecord(abs, path, fi.Size()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("scan complete", "root", abs, "files", len(result.Files), "problems", len(result.Problems))
	return result, nil
}

// statEntry stats entry, following it when it is a symlink. Links to
// directories stat as directories and are never descended into.
func statEntry(path string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		return os.Stat(path)
	}
	return entry.Info()
}
