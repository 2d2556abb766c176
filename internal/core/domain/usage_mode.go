package domain

import "go.trai.ch/zerr"

// UsageMode controls whether an existing cache directory may be trusted.
type UsageMode uint8

const (
	// UsageNormal trusts a cache directory whose fingerprint matches.
	UsageNormal UsageMode = iota
	// UsageForceRebuild never trusts existing contents.
	UsageForceRebuild
)

// String returns the configuration spelling of the mode.
func (m UsageMode) String() string {
	switch m {
	case UsageForceRebuild:
		return "force-rebuild"
	default:
		return "normal"
	}
}

// ParseUsageMode parses a configuration value. The empty string means UsageNormal.
func ParseUsageMode(s string) (UsageMode, error) {
	switch s {
	case "", "normal":
		return UsageNormal, nil
	case "force-rebuild":
		return UsageForceRebuild, nil
	default:
		return UsageNormal, zerr.With(ErrInvalidUsageMode, "mode", s)
	}
}
