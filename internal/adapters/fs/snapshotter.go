package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/taskhistory/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Snapshotter = (*Snapshotter)(nil)

// Snapshotter records the content state of paths using xxhash.
type Snapshotter struct {
	walker *Walker
}

// NewSnapshotter creates a new Snapshotter.
func NewSnapshotter(walker *Walker) *Snapshotter {
	return &Snapshotter{walker: walker}
}

// Snapshot records the state of every path. Directories are walked and each
// contained file is recorded under its own path next to the directory entry.
// A path that does not exist is recorded as missing unless it is a glob
// pattern with matches, in which case every match is recorded instead.
func (s *Snapshotter) Snapshot(paths []string) (domain.FileSnapshot, error) {
	snap := domain.FileSnapshot{Files: make(map[string]domain.FileState, len(paths))}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return domain.FileSnapshot{}, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", p)
		}

		if err := s.snapshotPath(abs, snap.Files); err != nil {
			return domain.FileSnapshot{}, err
		}
	}

	return snap, nil
}

func (s *Snapshotter) snapshotPath(path string, files map[string]domain.FileState) error {
	info, err := os.Stat(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return s.snapshotMissing(path, files)
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}

	if !info.IsDir() {
		return s.snapshotFile(path, info.Size(), files)
	}

	files[path] = domain.FileState{Kind: domain.FileDirectory}
	for file, walkErr := range s.walker.WalkFiles(path) {
		if walkErr != nil {
			return zerr.With(zerr.Wrap(walkErr, domain.ErrPathStatFailed.Error()), "path", file)
		}

		fi, err := os.Stat(file)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", file)
		}
		if err := s.snapshotFile(file, fi.Size(), files); err != nil {
			return err
		}
	}

	return nil
}

func (s *Snapshotter) snapshotMissing(path string, files map[string]domain.FileState) error {
	matches, globErr := filepath.Glob(path)
	if globErr != nil || len(matches) == 0 || (len(matches) == 1 && matches[0] == path) {
		files[path] = domain.FileState{Kind: domain.FileMissing}
		return nil
	}

	for _, match := range matches {
		if err := s.snapshotPath(match, files); err != nil {
			return err
		}
	}
	return nil
}

func (s *Snapshotter) snapshotFile(path string, size int64, files map[string]domain.FileState) error {
	hash, err := ComputeFileHash(path)
	if err != nil {
		return err
	}

	files[path] = domain.FileState{
		Kind: domain.FileRegular,
		Hash: fmt.Sprintf("%016x", hash),
		Size: size,
	}
	return nil
}

// ComputeFileHash computes the XXHash of a file's content.
func ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}
