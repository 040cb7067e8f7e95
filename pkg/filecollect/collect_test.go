package filecollect

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prek-go/prek/pkg/config"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test User")
	return dir
}

func writeAndStage(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	cmd := exec.Command("git", "-C", dir, "add", name)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git add: %s", out)
}

func commit(t *testing.T, dir, msg string) {
	t.Helper()
	cmd := exec.Command("git", "-C", dir, "commit", "-q", "-m", msg)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git commit: %s", out)
}

func TestCollect_NonFileOperatingStageReturnsEmpty(t *testing.T) {
	dir := initRepo(t)
	res, err := Collect(context.Background(), Request{
		WorkspaceRoot: dir, GitRoot: dir, Stage: config.StagePostCommit,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
}

func TestCollect_CommitMsgStageReturnsCommitMsgFile(t *testing.T) {
	dir := initRepo(t)
	msgFile := filepath.Join(dir, ".git", "COMMIT_EDITMSG")
	require.NoError(t, os.WriteFile(msgFile, []byte("wip\n"), 0o644))

	res, err := Collect(context.Background(), Request{
		WorkspaceRoot: dir, GitRoot: dir, Stage: config.StageCommitMsg, CommitMsgFile: msgFile,
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, ".git/COMMIT_EDITMSG", res.Files[0])
}

func TestCollect_StagedFilesDefaultPath(t *testing.T) {
	dir := initRepo(t)
	writeAndStage(t, dir, "a.txt", "hello\n")

	res, err := Collect(context.Background(), Request{
		WorkspaceRoot: dir, GitRoot: dir, Stage: config.StagePreCommit,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Files, "a.txt")
}

func TestCollect_AllFilesListsEverythingTracked(t *testing.T) {
	dir := initRepo(t)
	writeAndStage(t, dir, "a.txt", "hello\n")
	commit(t, dir, "initial")
	writeAndStage(t, dir, "b.txt", "world\n")
	commit(t, dir, "second")

	res, err := Collect(context.Background(), Request{
		WorkspaceRoot: dir, GitRoot: dir, Stage: config.StagePreCommit, AllFiles: true,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Files, "a.txt")
	assert.Contains(t, res.Files, "b.txt")
}

func TestCollect_ExplicitFilesWarnsOnMissing(t *testing.T) {
	dir := initRepo(t)
	writeAndStage(t, dir, "a.txt", "hello\n")

	res, err := Collect(context.Background(), Request{
		WorkspaceRoot: dir, GitRoot: dir, Stage: config.StagePreCommit,
		Files: []string{"a.txt", "missing.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, res.Files)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "missing.txt")
}

func TestCollect_ExplicitDirectoryUnionsTrackedFiles(t *testing.T) {
	dir := initRepo(t)
	writeAndStage(t, dir, "sub/a.txt", "hello\n")
	writeAndStage(t, dir, "sub/b.txt", "world\n")
	commit(t, dir, "initial")

	res, err := Collect(context.Background(), Request{
		WorkspaceRoot: dir, GitRoot: dir, Stage: config.StagePreCommit,
		Directories: []string{"sub"},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Files, "sub/a.txt")
	assert.Contains(t, res.Files, "sub/b.txt")
}

func TestCollect_RefRangeDiffListsChangedFiles(t *testing.T) {
	dir := initRepo(t)
	writeAndStage(t, dir, "a.txt", "v1\n")
	commit(t, dir, "first")
	writeAndStage(t, dir, "a.txt", "v2\n")
	commit(t, dir, "second")

	res, err := Collect(context.Background(), Request{
		WorkspaceRoot: dir, GitRoot: dir, Stage: config.StagePreCommit,
		FromRef: "HEAD~1", ToRef: "HEAD",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Files, "a.txt")
}

func TestCollect_DropsPathsOutsideWorkspaceRoot(t *testing.T) {
	dir := initRepo(t)
	writeAndStage(t, dir, "outside.txt", "x\n")
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	res, err := Collect(context.Background(), Request{
		WorkspaceRoot: sub, GitRoot: dir, Stage: config.StagePreCommit,
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Files, "outside.txt")
}
