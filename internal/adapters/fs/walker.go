// Package fs provides file system adapters for walking and snapshotting files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/taskhistory/internal/core/domain"
)

// Walker provides file walking functionality.
type Walker struct {
	ignores []string
}

// NewWalker creates a new Walker that skips entries matching any of the
// given name patterns in addition to VCS and cache directories.
func NewWalker(ignores ...string) *Walker {
	return &Walker{ignores: ignores}
}

// WalkFiles yields every file below root. Paths are yielded as produced by
// filepath.WalkDir, so they are absolute when root is absolute. Walk errors
// are yielded together with the offending path and stop the walk.
func (w *Walker) WalkFiles(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				yield(path, err)
				return filepath.SkipAll
			}

			if path != root && w.shouldSkip(d) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			if !yield(path, nil) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

func (w *Walker) shouldSkip(d fs.DirEntry) bool {
	name := d.Name()

	if d.IsDir() {
		switch name {
		case ".git", ".jj", domain.CacheDirName:
			return true
		}
	}

	for _, ignore := range w.ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}

	return false
}
