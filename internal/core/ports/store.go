// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/taskhistory/internal/core/domain"

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// RecordStore is a string-keyed store of task histories.
type RecordStore interface {
	// Get loads the history stored under key, decoding custom properties
	// with types. It returns false if nothing is stored under key.
	Get(key string, types *domain.TypeRegistry) (*domain.TaskHistory, bool, error)

	// Put stores history under key, replacing any previous value.
	Put(key string, history *domain.TaskHistory) error

	// Keys returns all stored keys in sorted order.
	Keys() ([]string, error)

	// Close releases the store.
	Close() error
}

// SnapshotStore persists large immutable snapshots under generated identifiers.
type SnapshotStore interface {
	// Add persists the snapshot and returns its identifier.
	Add(snapshot domain.FileSnapshot) (string, error)

	// Get loads the snapshot persisted under id.
	Get(id string) (domain.FileSnapshot, error)
}

// Snapshotter captures the current state of a set of paths.
type Snapshotter interface {
	// Snapshot records the state of every path, descending into directories.
	Snapshot(paths []string) (domain.FileSnapshot, error)
}
