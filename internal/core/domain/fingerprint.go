package domain

import "maps"

// FingerprintVersionKey is the fingerprint entry carrying the on-disk format version.
const FingerprintVersionKey = "cache.version"

// CacheFormatVersion is bumped whenever the persisted record format changes
// in a way older readers cannot understand.
const CacheFormatVersion = "1"

// Fingerprint describes what must hold for the contents of a cache directory
// to still be meaningful. Two fingerprints match only when they hold the same
// keys mapped to the same values.
type Fingerprint map[string]string

// DefaultFingerprint returns the fingerprint every cache directory carries.
func DefaultFingerprint() Fingerprint {
	return Fingerprint{FingerprintVersionKey: CacheFormatVersion}
}

// Equal reports whether f and other hold exactly the same entries.
// A nil fingerprint equals an empty one.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return maps.Equal(f, other)
}

// Clone returns a copy of f that can be mutated independently.
func (f Fingerprint) Clone() Fingerprint {
	out := make(Fingerprint, len(f))
	maps.Copy(out, f)
	return out
}

// Merge returns a copy of f with the entries of extra applied on top.
func (f Fingerprint) Merge(extra map[string]string) Fingerprint {
	out := f.Clone()
	maps.Copy(out, extra)
	return out
}
