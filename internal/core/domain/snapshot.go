package domain

// FileKind describes what was found at a snapshotted path.
type FileKind string

const (
	// FileMissing means nothing existed at the path.
	FileMissing FileKind = "missing"
	// FileRegular means a regular file existed at the path.
	FileRegular FileKind = "file"
	// FileDirectory means a directory existed at the path.
	FileDirectory FileKind = "directory"
)

// FileState is the recorded state of a single path.
type FileState struct {
	Kind FileKind `json:"kind"`
	Hash string   `json:"hash,omitzero"`
	Size int64    `json:"size,omitzero"`
}

// FileSnapshot maps absolute paths to their recorded state. Snapshots can be
// large, so records refer to them indirectly through a SnapshotRef.
type FileSnapshot struct {
	Files map[string]FileState `json:"files"`
}

// Len returns the number of paths in the snapshot.
func (s FileSnapshot) Len() int {
	return len(s.Files)
}

// SnapshotLoader fetches a persisted snapshot by its durable identifier.
type SnapshotLoader interface {
	Get(id string) (FileSnapshot, error)
}

// SnapshotRef points at a snapshot either by holding the value in memory,
// by holding the durable identifier it was persisted under, or both once a
// resolved value has been persisted or a deferred one has been loaded.
type SnapshotRef struct {
	value    FileSnapshot
	resolved bool
	id       string
}

// ResolvedSnapshot returns a reference holding v that still needs persisting.
func ResolvedSnapshot(v FileSnapshot) SnapshotRef {
	return SnapshotRef{value: v, resolved: true}
}

// DeferredSnapshot returns a reference to the snapshot persisted under id.
func DeferredSnapshot(id string) SnapshotRef {
	return SnapshotRef{id: id}
}

// ID returns the durable identifier and whether one is held.
func (r SnapshotRef) ID() (string, bool) {
	return r.id, r.id != ""
}

// IsResolved reports whether the value is held in memory.
func (r SnapshotRef) IsResolved() bool {
	return r.resolved
}

// IsDirty reports whether the held value still has to be persisted.
func (r SnapshotRef) IsDirty() bool {
	return r.resolved && r.id == ""
}

// IsEmpty reports whether the reference holds neither a value nor an identifier.
func (r SnapshotRef) IsEmpty() bool {
	return !r.resolved && r.id == ""
}

// Persisted returns r with the durable identifier it was stored under attached.
func (r SnapshotRef) Persisted(id string) SnapshotRef {
	r.id = id
	return r
}

// ResolveSnapshot returns the value r points at, fetching it from loader when
// it is not held in memory. It never mutates r.
func ResolveSnapshot(r SnapshotRef, loader SnapshotLoader) (FileSnapshot, error) {
	if r.resolved {
		return r.value, nil
	}
	if r.id == "" {
		return FileSnapshot{}, ErrSnapshotRefEmpty
	}
	return loader.Get(r.id)
}
