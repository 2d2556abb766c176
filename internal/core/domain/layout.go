package domain

import "path/filepath"

const (
	// CacheDirName is the name of the cache root directory.
	CacheDirName = ".taskhistory"

	// RecordsDirName is the name of the directory holding record store scopes.
	RecordsDirName = "records"

	// SnapshotsDirName is the name of the snapshot store directory.
	SnapshotsDirName = "snapshots"

	// FingerprintFileName is the name of the fingerprint file inside a cache directory.
	FingerprintFileName = "cache.properties"

	// RecordsDBFileName is the name of the record store database inside its scope directory.
	RecordsDBFileName = "records.db"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = ".taskhistory.yaml"

	// DefaultScope is the record store scope used when none is configured.
	DefaultScope = "default"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the cache root below the given project root.
func DefaultCachePath(root string) string {
	return filepath.Join(root, CacheDirName)
}

// RecordsPath returns the directory holding record store scopes below a cache root.
func RecordsPath(cacheRoot string) string {
	return filepath.Join(cacheRoot, RecordsDirName)
}

// SnapshotsPath returns the snapshot store directory below a cache root.
func SnapshotsPath(cacheRoot string) string {
	return filepath.Join(cacheRoot, SnapshotsDirName)
}
