package domain

// Config is the resolved cache configuration.
type Config struct {
	// Root is the directory the configuration was discovered in.
	Root string
	// CacheDir is the absolute cache root.
	CacheDir string
	// Scope names the record store area used for this build context.
	Scope string
	// Mode decides whether existing cache contents may be trusted.
	Mode UsageMode
	// Fingerprint is the expected fingerprint of every cache directory.
	Fingerprint Fingerprint
}
