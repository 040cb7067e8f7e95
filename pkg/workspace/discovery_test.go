package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectConfig(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	body := `
repos:
  - repo: local
    hooks:
      - id: foo
        name: Foo
        entry: ./foo.sh
        language: script
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pre-commit-config.yaml"), []byte(body), 0o644))
}

func TestDiscover_DeepestProjectGetsLowestIdx(t *testing.T) {
	root := t.TempDir()
	writeProjectConfig(t, root)
	writeProjectConfig(t, filepath.Join(root, "nested", "deep"))

	ws, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, ws.Projects, 2)
	assert.Equal(t, 0, ws.Projects[0].Idx)
	assert.Contains(t, ws.Projects[0].RelativePath, "deep")
	assert.Equal(t, 1, ws.Projects[1].Idx)
}

func TestDiscover_SkipsSubmodules(t *testing.T) {
	root := t.TempDir()
	writeProjectConfig(t, root)

	sub := filepath.Join(root, "vendor", "thing")
	writeProjectConfig(t, sub)
	require.NoError(t, os.WriteFile(filepath.Join(sub, ".git"), []byte("gitdir: ../../.git/modules/thing\n"), 0o644))

	ws, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, ws.Projects, 1)
}

func TestDiscover_SkipsCookiecutterDirs(t *testing.T) {
	root := t.TempDir()
	writeProjectConfig(t, root)
	writeProjectConfig(t, filepath.Join(root, "{{cookiecutter.project_slug}}"))

	ws, err := Discover(root)
	require.NoError(t, err)
	require.Len(t, ws.Projects, 1)
}

func TestDiscoveryCache_ValidWhenUnchanged(t *testing.T) {
	root := t.TempDir()
	writeProjectConfig(t, root)
	storeCache := t.TempDir()

	now := time.Unix(1_700_000_000, 0)
	ws1, err := DiscoverCached(storeCache, root, false, now)
	require.NoError(t, err)
	require.Len(t, ws1.Projects, 1)

	ws2, err := DiscoverCached(storeCache, root, false, now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, ws2.Projects, 1)
}

func TestDiscoveryCache_ExpiresAfterTTL(t *testing.T) {
	root := t.TempDir()
	writeProjectConfig(t, root)
	storeCache := t.TempDir()

	now := time.Unix(1_700_000_000, 0)
	cachePath := CachePath(storeCache, root)
	ws, err := Discover(root)
	require.NoError(t, err)
	require.NoError(t, Save(cachePath, ws, now))

	_, ok := LoadCached(cachePath, root, now.Add(2*time.Hour))
	assert.False(t, ok)
}

func TestDiscoveryCache_InvalidatesOnFileChange(t *testing.T) {
	root := t.TempDir()
	writeProjectConfig(t, root)
	storeCache := t.TempDir()

	now := time.Unix(1_700_000_000, 0)
	cachePath := CachePath(storeCache, root)
	ws, err := Discover(root)
	require.NoError(t, err)
	require.NoError(t, Save(cachePath, ws, now))

	time.Sleep(10 * time.Millisecond)
	writeProjectConfig(t, root)

	_, ok := LoadCached(cachePath, root, now.Add(time.Minute))
	assert.False(t, ok)
}

func TestConsumeOrphanFiles_OrphanClaimsItsSubtree(t *testing.T) {
	root := t.TempDir()
	parent := &Project{Root: root}
	child := &Project{Root: filepath.Join(root, "child"), Orphan: true}

	files := []string{
		filepath.Join(root, "a.go"),
		filepath.Join(root, "child", "b.go"),
	}

	claimed := ConsumeOrphanFiles([]*Project{child, parent}, files)
	assert.Equal(t, []string{filepath.Join(root, "child", "b.go")}, claimed[child])
	assert.Equal(t, []string{filepath.Join(root, "a.go")}, claimed[parent])
}
