package domain

import "go.trai.ch/zerr"

var (
	// ErrCacheDirCreateFailed is returned when a cache directory cannot be created.
	ErrCacheDirCreateFailed = zerr.New("failed to create cache directory")

	// ErrCacheDirStatFailed is returned when a cache directory cannot be inspected.
	ErrCacheDirStatFailed = zerr.New("failed to stat cache directory")

	// ErrNotADirectory is returned when the cache path exists but is not a directory.
	ErrNotADirectory = zerr.New("cache path is not a directory")

	// ErrFingerprintReadFailed is returned when the fingerprint file cannot be read.
	ErrFingerprintReadFailed = zerr.New("failed to read cache fingerprint")

	// ErrFingerprintParseFailed is returned when the fingerprint file is malformed.
	ErrFingerprintParseFailed = zerr.New("failed to parse cache fingerprint")

	// ErrFingerprintWriteFailed is returned when the fingerprint file cannot be written.
	ErrFingerprintWriteFailed = zerr.New("failed to write cache fingerprint")

	// ErrInvalidUsageMode is returned when a usage mode string is not recognised.
	ErrInvalidUsageMode = zerr.New("invalid cache usage mode, expected 'normal' or 'force-rebuild'")

	// ErrStoreOpenFailed is returned when the record store cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open record store")

	// ErrStoreResetFailed is returned when stale record store files cannot be removed.
	ErrStoreResetFailed = zerr.New("failed to reset record store")

	// ErrStoreReadFailed is returned when a record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read record")

	// ErrStoreWriteFailed is returned when a record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write record")

	// ErrStoreMarshalFailed is returned when a record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal record")

	// ErrStoreUnmarshalFailed is returned when a record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal record")

	// ErrUnresolvedType is returned when a recorded property references a kind
	// that the active type registry cannot resolve.
	ErrUnresolvedType = zerr.New("property type cannot be resolved")

	// ErrDuplicateType is returned when a kind is registered twice in a type registry.
	ErrDuplicateType = zerr.New("property type already registered")

	// ErrSnapshotNotPersisted is returned when a record is encoded while one of
	// its snapshot references has no durable identifier.
	ErrSnapshotNotPersisted = zerr.New("snapshot has not been persisted")

	// ErrSnapshotRefEmpty is returned when a snapshot reference holds neither a
	// value nor a durable identifier.
	ErrSnapshotRefEmpty = zerr.New("snapshot reference holds neither a value nor an identifier")

	// ErrSnapshotNotFound is returned when a snapshot identifier is unknown to the store.
	ErrSnapshotNotFound = zerr.New("snapshot not found")

	// ErrSnapshotIDConflict is returned when an identifier already names a snapshot with other content.
	ErrSnapshotIDConflict = zerr.New("snapshot identifier already names different content")

	// ErrSnapshotReadFailed is returned when a snapshot cannot be read.
	ErrSnapshotReadFailed = zerr.New("failed to read snapshot")

	// ErrSnapshotWriteFailed is returned when a snapshot cannot be written.
	ErrSnapshotWriteFailed = zerr.New("failed to write snapshot")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrHistoryLoadFailed is returned when a task's history cannot be loaded.
	ErrHistoryLoadFailed = zerr.New("failed to load task history")

	// ErrHistoryFinalizeFailed is returned when a task's history cannot be persisted.
	ErrHistoryFinalizeFailed = zerr.New("failed to persist task history")

	// ErrMissingTaskPath is returned when a task has no path.
	ErrMissingTaskPath = zerr.New("task path is required")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidScope is returned when a configured scope cannot be used as a directory name.
	ErrInvalidScope = zerr.New("invalid scope, only letters, digits, '.', '_' and '-' are allowed")

	// ErrFailedToGetRoot is returned when the cache root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of cache root")

	// ErrFailedToGetOutputPath is returned when an output path cannot be made absolute.
	ErrFailedToGetOutputPath = zerr.New("failed to get absolute path of output")
)
