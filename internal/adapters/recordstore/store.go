// Package recordstore implements a keyed store of task histories backed by
// SQLite inside a fingerprinted cache directory.
package recordstore

import (
	"database/sql"
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"go.trai.ch/taskhistory/internal/adapters/cachedir"
	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/taskhistory/internal/core/ports"
	"go.trai.ch/zerr"
)

//go:embed schema.sql
var schemaSQL string

// SchemaVersion identifies the table layout and record encoding. It is part
// of the store's fingerprint, so changing it discards existing records.
const SchemaVersion = "1"

// schemaFingerprintKey is the fingerprint entry carrying SchemaVersion.
const schemaFingerprintKey = "record.schema"

var _ ports.RecordStore = (*Store)(nil)

// Store implements ports.RecordStore.
type Store struct {
	db     *sql.DB
	handle *cachedir.Handle
}

// Open opens the record store for scope below root. If the scope directory
// cannot be trusted under fingerprint and mode, its database is discarded and
// the store starts empty.
func Open(
	root, scope string,
	mode domain.UsageMode,
	fingerprint domain.Fingerprint,
	logger ports.Logger,
) (*Store, error) {
	dir := filepath.Join(root, scope)
	fp := fingerprint.Merge(map[string]string{schemaFingerprintKey: SchemaVersion})

	handle, err := cachedir.Open(dir, mode, fp)
	if err != nil {
		return nil, err
	}

	dbPath := filepath.Join(handle.Dir(), domain.RecordsDBFileName)
	if !handle.IsValid() {
		logger.Info("record store " + scope + " cannot be trusted, starting empty")
		if err := removeDatabase(dbPath); err != nil {
			return nil, err
		}
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	if !handle.IsValid() {
		if err := handle.Update(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Store{db: db, handle: handle}, nil
}

func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}

	// SQLite allows a single writer; one connection serializes puts to
	// distinct keys without SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}

	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return zerr.With(err, "pragma", pragma)
		}
	}
	return nil
}

func removeDatabase(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, domain.ErrStoreResetFailed.Error()), "path", p)
		}
	}
	return nil
}

// Get loads the history stored under key, resolving property kinds with types.
func (s *Store) Get(key string, types *domain.TypeRegistry) (*domain.TaskHistory, bool, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM records WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", key)
	}

	history, err := decodeHistory(data, types)
	if err != nil {
		return nil, false, zerr.With(err, "key", key)
	}
	return history, true, nil
}

// Put stores history under key.
func (s *Store) Put(key string, history *domain.TaskHistory) error {
	data, err := encodeHistory(history)
	if err != nil {
		return zerr.With(err, "key", key)
	}

	_, err = s.db.Exec(
		`INSERT INTO records (key, data) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		key, data,
	)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key)
	}
	return nil
}

// Keys returns every stored key in sorted order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM records ORDER BY key")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	defer rows.Close() //nolint:errcheck // Best effort close in defer

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	return keys, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the scope directory holding the store.
func (s *Store) Dir() string {
	return s.handle.Dir()
}
