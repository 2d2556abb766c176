// Package cachedir implements cache directories whose contents are trusted
// only while a fingerprint file inside them matches the expected fingerprint.
package cachedir

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/zerr"
)

// Handle is an opened cache directory.
type Handle struct {
	dir      string
	expected domain.Fingerprint

	mu    sync.RWMutex
	valid bool
}

// Open opens dir and decides whether its existing contents can be trusted.
//
// A missing directory is created and reported invalid, as is any directory
// opened with domain.UsageForceRebuild, one without a fingerprint file, or one
// whose fingerprint differs from expected. Open never removes existing
// contents; cleaning up an invalid directory is up to the caller.
func Open(dir string, mode domain.UsageMode, expected domain.Fingerprint) (*Handle, error) {
	h := &Handle{
		dir:      filepath.Clean(dir),
		expected: expected.Clone(),
	}

	info, err := os.Stat(h.dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(h.dir, domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheDirCreateFailed.Error()), "dir", h.dir)
		}
		return h, nil
	case err != nil:
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheDirStatFailed.Error()), "dir", h.dir)
	case !info.IsDir():
		return nil, zerr.With(domain.ErrNotADirectory, "dir", h.dir)
	}

	if mode == domain.UsageForceRebuild {
		return h, nil
	}

	actual, found, err := ReadFingerprint(h.dir)
	switch {
	case err != nil && found:
		// A malformed fingerprint file cannot vouch for anything.
		return h, nil
	case err != nil:
		return nil, err
	}
	h.valid = found && actual.Equal(h.expected)

	return h, nil
}

// ReadFingerprint reads the fingerprint file of dir. It returns false if the
// file does not exist, and true together with an error if it is malformed.
func ReadFingerprint(dir string) (domain.Fingerprint, bool, error) {
	path := filepath.Join(dir, domain.FingerprintFileName)

	//nolint:gosec // Path is built from the cache directory and a constant file name
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrFingerprintReadFailed.Error()), "path", path)
	}

	fp, err := decodeProperties(data)
	if err != nil {
		return nil, true, zerr.With(err, "path", path)
	}
	return fp, true, nil
}

// Update writes the expected fingerprint into the directory and marks the
// handle valid.
func (h *Handle) Update() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(h.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheDirCreateFailed.Error()), "dir", h.dir)
	}

	path := filepath.Join(h.dir, domain.FingerprintFileName)
	if err := writeFileAtomic(path, encodeProperties(h.expected)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFingerprintWriteFailed.Error()), "path", path)
	}

	h.valid = true
	return nil
}

// IsValid reports whether the directory contents can be trusted.
func (h *Handle) IsValid() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.valid
}

// Dir returns the cache directory.
func (h *Handle) Dir() string {
	return h.dir
}

// Fingerprint returns a copy of the expected fingerprint.
func (h *Handle) Fingerprint() domain.Fingerprint {
	return h.expected.Clone()
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
