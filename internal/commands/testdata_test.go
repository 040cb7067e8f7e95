package commands

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// initTestRepo creates a fresh git repository in a temp directory, with
// user.name/user.email configured so commits work without global config.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func writeAndStage(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	runGit(t, dir, "add", name)
}

// localSystemHookConfig is a minimal, valid .pre-commit-config.yaml using a
// local/system hook, so tests never need network access to a remote repo.
const localSystemHookConfig = `repos:
- repo: local
  hooks:
  - id: true-hook
    name: Always true
    entry: true
    language: system
    always_run: true
    pass_filenames: false
`

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// withCwd temporarily changes the working directory for the duration of a
// test, restoring it on cleanup.
func withCwd(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// withStore points PREK_HOME at a fresh temp directory for the test.
func withStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PREK_HOME", dir)
	return dir
}
