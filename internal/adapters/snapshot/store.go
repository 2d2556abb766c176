// Package snapshot implements content-addressed storage of file snapshots.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/taskhistory/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SnapshotStore = (*Store)(nil)

// Store implements ports.SnapshotStore using a file-per-snapshot strategy.
// Identifiers are derived from the encoded content, so a given identifier
// always names the same snapshot.
type Store struct {
	dir string
}

// NewStore creates a SnapshotStore rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

// Add persists snapshot and returns its identifier. Adding an already stored
// snapshot is a no-op returning the same identifier. An identifier is never
// reused for other content; a digest collision fails with ErrSnapshotIDConflict.
func (s *Store) Add(snapshot domain.FileSnapshot) (string, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error())
	}

	id := fmt.Sprintf("%016x", xxhash.Sum64(data))
	filename := s.getFilename(id)

	//nolint:gosec // Path is built from the store directory and a derived identifier
	existing, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if !bytes.Equal(existing, data) {
			return "", zerr.With(domain.ErrSnapshotIDConflict, "id", id)
		}
		return id, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", zerr.With(zerr.Wrap(err, domain.ErrSnapshotReadFailed.Error()), "id", id)
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error()), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, id+".*.tmp")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error()), "id", id)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", zerr.With(zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error()), "id", id)
	}
	if err := tmp.Close(); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error()), "id", id)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrSnapshotWriteFailed.Error()), "id", id)
	}

	return id, nil
}

// Get loads the snapshot stored under id.
func (s *Store) Get(id string) (domain.FileSnapshot, error) {
	if !validID(id) {
		return domain.FileSnapshot{}, zerr.With(domain.ErrSnapshotNotFound, "id", id)
	}

	//nolint:gosec // Path is built from the store directory and a validated identifier
	data, err := os.ReadFile(s.getFilename(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.FileSnapshot{}, zerr.With(domain.ErrSnapshotNotFound, "id", id)
		}
		return domain.FileSnapshot{}, zerr.With(zerr.Wrap(err, domain.ErrSnapshotReadFailed.Error()), "id", id)
	}

	var snapshot domain.FileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.FileSnapshot{}, zerr.With(zerr.Wrap(err, domain.ErrSnapshotReadFailed.Error()), "id", id)
	}
	return snapshot, nil
}

func (s *Store) getFilename(id string) string {
	return filepath.Join(s.dir, id[:2], id+".json")
}

func validID(id string) bool {
	if len(id) != 16 {
		return false
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
