package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/taskhistory/internal/adapters/config"
	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/taskhistory/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), domain.FilePerm))
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	return config.NewLoader(mockLogger), mockLogger
}

func TestLoader_Load_Defaults(t *testing.T) {
	t.Parallel()

	loader, _ := newLoader(t)
	cwd := t.TempDir()

	cfg, err := loader.Load(cwd)
	require.NoError(t, err)

	assert.Equal(t, cwd, cfg.Root)
	assert.Equal(t, filepath.Join(cwd, domain.CacheDirName), cfg.CacheDir)
	assert.Equal(t, domain.DefaultScope, cfg.Scope)
	assert.Equal(t, domain.UsageNormal, cfg.Mode)
	assert.Equal(t, domain.DefaultFingerprint(), cfg.Fingerprint)
}

func TestLoader_Load_DiscoversParentConfig(t *testing.T) {
	t.Parallel()

	loader, _ := newLoader(t)
	rootDir := t.TempDir()
	createFile(t, rootDir, domain.ConfigFileName, `
version: "1"
scope: ci-linux
mode: force-rebuild
fingerprint:
  tool.go: "1.25"
  os: linux
`)
	nested := filepath.Join(rootDir, "pkg", "lib")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	cfg, err := loader.Load(nested)
	require.NoError(t, err)

	assert.Equal(t, rootDir, cfg.Root)
	assert.Equal(t, filepath.Join(rootDir, domain.CacheDirName), cfg.CacheDir)
	assert.Equal(t, "ci-linux", cfg.Scope)
	assert.Equal(t, domain.UsageForceRebuild, cfg.Mode)
	assert.Equal(t, domain.Fingerprint{
		domain.FingerprintVersionKey: domain.CacheFormatVersion,
		"tool.go":                    "1.25",
		"os":                         "linux",
	}, cfg.Fingerprint)
}

func TestLoader_Load_RootAndCache(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		wantRoot  func(dir string) string
		wantCache func(dir string) string
	}{
		{
			name:      "relative root",
			content:   "root: ./workspace\n",
			wantRoot:  func(dir string) string { return filepath.Join(dir, "workspace") },
			wantCache: func(dir string) string { return filepath.Join(dir, "workspace", domain.CacheDirName) },
		},
		{
			name:      "relative cache resolves against root",
			content:   "root: ws\ncache: build/cache\n",
			wantRoot:  func(dir string) string { return filepath.Join(dir, "ws") },
			wantCache: func(dir string) string { return filepath.Join(dir, "ws", "build", "cache") },
		},
		{
			name:      "absolute cache",
			content:   "cache: /var/cache/taskhistory\n",
			wantRoot:  func(dir string) string { return dir },
			wantCache: func(string) string { return "/var/cache/taskhistory" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader, _ := newLoader(t)
			dir := t.TempDir()
			createFile(t, dir, domain.ConfigFileName, tt.content)

			cfg, err := loader.Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoot(dir), cfg.Root)
			assert.Equal(t, tt.wantCache(dir), cfg.CacheDir)
		})
	}
}

func TestLoader_Load_VersionOverrideIgnored(t *testing.T) {
	t.Parallel()

	loader, mockLogger := newLoader(t)
	mockLogger.EXPECT().Warn("fingerprint entry 'cache.version' in .taskhistory.yaml has no effect")

	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, "fingerprint:\n  cache.version: \"99\"\n")

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFingerprint(), cfg.Fingerprint)
}

func TestLoader_Load_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "invalid yaml", content: "scope: [unterminated\n", wantErr: domain.ErrConfigParseFailed},
		{name: "invalid mode", content: "mode: sometimes\n", wantErr: domain.ErrInvalidUsageMode},
		{name: "scope with separator", content: "scope: ../escape\n", wantErr: domain.ErrInvalidScope},
		{name: "parent scope", content: "scope: \"..\"\n", wantErr: domain.ErrInvalidScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader, _ := newLoader(t)
			dir := t.TempDir()
			createFile(t, dir, domain.ConfigFileName, tt.content)

			_, err := loader.Load(dir)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestLoader_Load_ConfigDirectoryIsIgnored(t *testing.T) {
	t.Parallel()

	loader, _ := newLoader(t)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, domain.ConfigFileName), domain.DirPerm))

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultScope, cfg.Scope)
}
