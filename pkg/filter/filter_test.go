package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/hookdef"
	"github.com/prek-go/prek/pkg/workspace"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func TestForProject_RestrictsToProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "ok\n")
	writeFile(t, root, "sub/b.txt", "ok\n")

	proj := &workspace.Project{Root: root, RelativePath: ".", Config: &config.Config{}}
	consumed := NewConsumedFiles()

	ff := ForProject([]string{"a.txt", "sub/b.txt"}, proj, consumed)
	assert.ElementsMatch(t, []string{"a.txt", "sub/b.txt"}, ff.Scope())
}

func TestForProject_OrphanConsumesFilesFromAncestor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "ok\n")
	writeFile(t, root, "sub/b.txt", "ok\n")

	candidates := []string{"a.txt", "sub/b.txt"}
	consumed := NewConsumedFiles()

	subProj := &workspace.Project{Root: filepath.Join(root, "sub"), RelativePath: "sub", Orphan: true, Config: &config.Config{}}
	subFilter := ForProject(candidates, subProj, consumed)
	assert.Equal(t, []string{"sub/b.txt"}, subFilter.Scope())

	rootProj := &workspace.Project{Root: root, RelativePath: ".", Config: &config.Config{}}
	rootFilter := ForProject(candidates, rootProj, consumed)
	assert.Equal(t, []string{"a.txt"}, rootFilter.Scope())
}

func TestForHook_AppliesFilesExcludeAndTags(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "ok\n")
	writeFile(t, root, "b.py", "print(1)\n")

	proj := &workspace.Project{Root: root, RelativePath: ".", Config: &config.Config{}}
	ff := ForProject([]string{"a.txt", "b.py"}, proj, NewConsumedFiles())

	h, err := hookdef.Build(hookdef.BuildInput{
		Spec: config.HookOptions{ID: "py-only", Language: "system", Entry: "true", Types: []string{"python"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b.py"}, ff.ForHook(h))
}

func TestForHook_StripsProjectPrefixBeforeMatching(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sub/a.txt", "ok\n")

	proj := &workspace.Project{Root: filepath.Join(root, "sub"), RelativePath: "sub", Config: &config.Config{}}
	ff := ForProject([]string{"sub/a.txt"}, proj, NewConsumedFiles())

	filesPat, err := config.CompileRegex(`^a\.txt$`)
	require.NoError(t, err)
	h, err := hookdef.Build(hookdef.BuildInput{
		Spec: config.HookOptions{ID: "check", Language: "system", Entry: "true"},
	})
	require.NoError(t, err)
	h.Files = filesPat

	assert.Equal(t, []string{"sub/a.txt"}, ff.ForHook(h))
}
