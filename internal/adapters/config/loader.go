// Package config provides the configuration loader for taskhistory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/taskhistory/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

var validScopeRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers .taskhistory.yaml in cwd or its parents and resolves it.
// Without a configuration file the defaults apply, rooted at cwd.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	configPath, found, err := findConfiguration(absCwd)
	if err != nil {
		return nil, err
	}

	var file File
	configDir := absCwd
	if found {
		if err := readAndUnmarshalYAML(configPath, &file); err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		configDir = filepath.Dir(configPath)
	}

	return l.resolve(configDir, &file)
}

func (l *Loader) resolve(configDir string, file *File) (*domain.Config, error) {
	root := resolvePath(configDir, file.Root)

	cacheDir := domain.DefaultCachePath(root)
	if file.Cache != "" {
		cacheDir = resolvePath(root, file.Cache)
	}

	scope := file.Scope
	if scope == "" {
		scope = domain.DefaultScope
	}
	if !validScopeRegex.MatchString(scope) || scope == "." || scope == ".." {
		return nil, zerr.With(domain.ErrInvalidScope, "scope", scope)
	}

	mode, err := domain.ParseUsageMode(file.Mode)
	if err != nil {
		return nil, err
	}

	extra := make(map[string]string, len(file.Fingerprint))
	for k, v := range file.Fingerprint {
		if k == domain.FingerprintVersionKey {
			l.Logger.Warn(fmt.Sprintf("fingerprint entry '%s' in %s has no effect", k, domain.ConfigFileName))
			continue
		}
		extra[k] = v
	}

	return &domain.Config{
		Root:        root,
		CacheDir:    cacheDir,
		Scope:       scope,
		Mode:        mode,
		Fingerprint: domain.DefaultFingerprint().Merge(extra),
	}, nil
}

func findConfiguration(cwd string) (string, bool, error) {
	currentDir := cwd
	for {
		configPath := filepath.Join(currentDir, domain.ConfigFileName)
		info, err := os.Stat(configPath)
		switch {
		case err == nil && !info.IsDir():
			return configPath, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false, nil
		}
		currentDir = parentDir
	}
}

func resolvePath(base, configured string) string {
	if configured == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(base, configured))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by the loader
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
