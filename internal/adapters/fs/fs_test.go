package fs_test

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/taskhistory/internal/adapters/fs"
	"go.trai.ch/taskhistory/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestWalker_WalkFiles(t *testing.T) {
	t.Parallel()

	// tmp/
	//   .git/config
	//   .taskhistory/records/default/records.db
	//   ignored/file
	//   src/main.go
	//   README.md
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".git", "config"), "git config")
	writeFile(t, filepath.Join(tmpDir, domain.CacheDirName, "records", "default", "records.db"), "db")
	writeFile(t, filepath.Join(tmpDir, "ignored", "file"), "ignored content")
	writeFile(t, filepath.Join(tmpDir, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(tmpDir, "README.md"), "# Readme")

	walker := fs.NewWalker("ignored")

	var files []string
	for path, err := range walker.WalkFiles(tmpDir) {
		require.NoError(t, err)
		files = append(files, path)
	}
	slices.Sort(files)

	assert.Equal(t, []string{
		filepath.Join(tmpDir, "README.md"),
		filepath.Join(tmpDir, "src", "main.go"),
	}, files)
}

func TestWalker_WalkFiles_StopsEarly(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a"), "a")
	writeFile(t, filepath.Join(tmpDir, "b"), "b")

	count := 0
	for range fs.NewWalker().WalkFiles(tmpDir) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestWalker_WalkFiles_MissingRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "absent")

	var errs []error
	for _, err := range fs.NewWalker().WalkFiles(root) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.Error(t, errs[0])
}

func TestSnapshotter_Snapshot(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "out.txt")
	dir := filepath.Join(tmpDir, "dist")
	nested := filepath.Join(dir, "nested", "lib.a")
	missing := filepath.Join(tmpDir, "missing.txt")

	writeFile(t, file, "hello")
	writeFile(t, nested, "library")

	snap, err := fs.NewSnapshotter(fs.NewWalker()).Snapshot([]string{file, dir, missing})
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.FileState{
		file:    {Kind: domain.FileRegular, Hash: fmt.Sprintf("%016x", xxhash.Sum64String("hello")), Size: 5},
		dir:     {Kind: domain.FileDirectory},
		nested:  {Kind: domain.FileRegular, Hash: fmt.Sprintf("%016x", xxhash.Sum64String("library")), Size: 7},
		missing: {Kind: domain.FileMissing},
	}, snap.Files)
}

func TestSnapshotter_Snapshot_ContentChangeChangesHash(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "out.txt")
	snapshotter := fs.NewSnapshotter(fs.NewWalker())

	writeFile(t, file, "v1")
	first, err := snapshotter.Snapshot([]string{file})
	require.NoError(t, err)

	writeFile(t, file, "v2")
	second, err := snapshotter.Snapshot([]string{file})
	require.NoError(t, err)

	assert.NotEqual(t, first.Files[file].Hash, second.Files[file].Hash)
	assert.Equal(t, first.Files[file].Size, second.Files[file].Size)
}

func TestSnapshotter_Snapshot_Glob(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "a.go"), "a")
	writeFile(t, filepath.Join(tmpDir, "b.go"), "b")
	writeFile(t, filepath.Join(tmpDir, "c.txt"), "c")

	snap, err := fs.NewSnapshotter(fs.NewWalker()).Snapshot([]string{filepath.Join(tmpDir, "*.go")})
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Len())
	assert.Contains(t, snap.Files, filepath.Join(tmpDir, "a.go"))
	assert.Contains(t, snap.Files, filepath.Join(tmpDir, "b.go"))
}

func TestSnapshotter_Snapshot_RelativePathsAreAbsolute(t *testing.T) {
	t.Parallel()

	snap, err := fs.NewSnapshotter(fs.NewWalker()).Snapshot([]string{"does-not-exist.bin"})
	require.NoError(t, err)

	abs, err := filepath.Abs("does-not-exist.bin")
	require.NoError(t, err)
	assert.Equal(t, domain.FileState{Kind: domain.FileMissing}, snap.Files[abs])
}

func TestComputeFileHash_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := fs.ComputeFileHash(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrFileHashFailed.Error())
}
