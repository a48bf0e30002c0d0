package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"morph-bang/internal/morph"
)

// OSFilesystemManager is the real implementation of morph.FilesystemManager.
// It is expected to run with enough privilege to re-own files in any user's tree.
type OSFilesystemManager struct{}

// NewOSFilesystemManager creates a filesystem manager that operates on the real filesystem.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{}
}

// ListFiles returns the regular files directly inside dir, sorted by name.
func (m *OSFilesystemManager) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// WalkDirs calls fn for root and every directory below it that the matcher does
// not ignore. Ignored directories are not descended into. Unreadable
// subdirectories are skipped.
func WalkDirs(root string, ignore *IgnoreMatcher, fn func(dir string) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if p != root {
			rel, relErr := filepath.Rel(root, p)
			if relErr == nil && ignore.Match(rel) {
				return fs.SkipDir
			}
		}
		return fn(p)
	})
}

// Compile-time check that OSFilesystemManager implements morph.FilesystemManager interface
var _ morph.FilesystemManager = (*OSFilesystemManager)(nil)
