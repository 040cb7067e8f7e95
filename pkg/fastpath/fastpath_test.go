package fastpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/filter"
	"github.com/prek-go/prek/pkg/hookdef"
	"github.com/prek-go/prek/pkg/workspace"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func buildHook(t *testing.T, spec config.HookOptions) hookdef.Hook {
	t.Helper()
	h, err := hookdef.Build(hookdef.BuildInput{Spec: spec})
	require.NoError(t, err)
	return h
}

func TestRun_TrailingWhitespaceFixer(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "clean line\ntrailing spaces   \nno issue\n")

	hook := buildHook(t, config.HookOptions{ID: "trailing-whitespace-fixer", Language: "system", Entry: "trailing-whitespace-fixer"})

	res, err := Run(Request{
		Hook:          hook,
		Filenames:     []string{"a.txt"},
		WorkspaceRoot: root,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, []string{"a.txt"}, res.ModifiedFiles)

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "clean line\ntrailing spaces\nno issue\n", string(data))
}

func TestRun_TrailingWhitespaceFixer_NoChange(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "already clean\n")

	hook := buildHook(t, config.HookOptions{ID: "trailing-whitespace-fixer", Language: "system", Entry: "trailing-whitespace-fixer"})
	res, err := Run(Request{Hook: hook, Filenames: []string{"a.txt"}, WorkspaceRoot: root})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Nil(t, res.ModifiedFiles)
}

func TestRun_EndOfFileFixer(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "missing.txt", "no trailing newline")
	writeFile(t, root, "extra.txt", "too many\n\n\n")

	hook := buildHook(t, config.HookOptions{ID: "end-of-file-fixer", Language: "system", Entry: "end-of-file-fixer"})
	res, err := Run(Request{
		Hook:          hook,
		Filenames:     []string{"missing.txt", "extra.txt"},
		WorkspaceRoot: root,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.ElementsMatch(t, []string{"missing.txt", "extra.txt"}, res.ModifiedFiles)

	got, err := os.ReadFile(filepath.Join(root, "missing.txt"))
	require.NoError(t, err)
	assert.Equal(t, "no trailing newline\n", string(got))

	got, err = os.ReadFile(filepath.Join(root, "extra.txt"))
	require.NoError(t, err)
	assert.Equal(t, "too many\n", string(got))
}

func TestRun_Identity(t *testing.T) {
	hook := buildHook(t, config.HookOptions{ID: "identity", Language: "system", Entry: "identity"})
	res, err := Run(Request{Hook: hook, Filenames: []string{"a.txt", "b.txt"}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "a.txt\nb.txt\n", string(res.Output))
}

func TestRun_CheckHooksApply_FlagsNeverMatching(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "ok\n")

	proj := &workspace.Project{Root: root, RelativePath: ".", Config: &config.Config{}}
	ff := filter.ForProject([]string{"a.txt"}, proj, filter.NewConsumedFiles())

	neverMatches := buildHook(t, config.HookOptions{ID: "py-only", Language: "system", Entry: "true", Types: []string{"python"}})
	alwaysRun := buildHook(t, config.HookOptions{ID: "always", Language: "system", Entry: "true", AlwaysRun: true})
	checkHooks := buildHook(t, config.HookOptions{ID: "check-hooks-apply", Language: "system", Entry: "check-hooks-apply"})

	res := mustCheckHooksApply(checkHooks, []hookdef.Hook{neverMatches, alwaysRun, checkHooks}, ff)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, string(res.Output), "py-only")
	assert.NotContains(t, string(res.Output), "always")
}

func mustCheckHooksApply(hook hookdef.Hook, all []hookdef.Hook, ff filter.FileFilter) Result {
	res, _ := Run(Request{Hook: hook, AllHooks: all, ProjectFilter: ff})
	return res
}

func TestRun_CheckUselessExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "ok\n")
	writeFile(t, root, "b.txt", "ok\n")

	proj := &workspace.Project{Root: root, RelativePath: ".", Config: &config.Config{}}
	ff := filter.ForProject([]string{"a.txt", "b.txt"}, proj, filter.NewConsumedFiles())

	excludePat, err := config.CompileRegex(`^nonexistent\.txt$`)
	require.NoError(t, err)
	useless := buildHook(t, config.HookOptions{ID: "useless", Language: "system", Entry: "true"})
	useless.Exclude = excludePat

	checkExcludes := buildHook(t, config.HookOptions{ID: "check-useless-excludes", Language: "system", Entry: "check-useless-excludes"})

	res, err := Run(Request{
		Hook:          checkExcludes,
		AllHooks:      []hookdef.Hook{useless, checkExcludes},
		ProjectFilter: ff,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, string(res.Output), "useless")
}

func TestRun_UnknownBuiltinIsUnimplemented(t *testing.T) {
	hook := buildHook(t, config.HookOptions{ID: "check-yaml", Language: "system", Entry: "check-yaml"})
	res, err := Run(Request{Hook: hook})
	require.NoError(t, err)
	assert.True(t, res.Unimplemented)
}
