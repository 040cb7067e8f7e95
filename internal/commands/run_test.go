package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunCommand_Help(t *testing.T) {
	cmd := &RunCommand{}
	help := cmd.Help()

	assert.NotEmpty(t, help)
	for _, expected := range []string{
		"run", "Run hooks", "--all-files", "--file", "--hook-stage", "--verbose", "--dry-run",
	} {
		assert.Contains(t, help, expected)
	}
}

func TestRunCommand_Synopsis(t *testing.T) {
	cmd := &RunCommand{}
	assert.Equal(t, "Run hooks against files", cmd.Synopsis())
}

func TestRunCommand_Run_Help(t *testing.T) {
	cmd := &RunCommand{}
	assert.Equal(t, 0, cmd.Run([]string{"--help"}))
	assert.Equal(t, 0, cmd.Run([]string{"-h"}))
}

func TestRunCommand_Run_InvalidFlag(t *testing.T) {
	cmd := &RunCommand{}
	assert.NotEqual(t, 0, cmd.Run([]string{"--invalid-flag"}))
}

func TestValidateRunOptions_MutuallyExclusiveSelectors(t *testing.T) {
	err := validateRunOptions(RunOptions{AllFiles: true, Files: []string{"a.txt"}, HookStage: "pre-commit"})
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestValidateRunOptions_FromRefRequiresToRef(t *testing.T) {
	err := validateRunOptions(RunOptions{FromRef: "main", HookStage: "pre-commit"})
	assert.ErrorContains(t, err, "--from-ref and --to-ref")
}

func TestValidateRunOptions_UnknownHookStage(t *testing.T) {
	err := validateRunOptions(RunOptions{HookStage: "not-a-stage"})
	assert.ErrorContains(t, err, "unknown --hook-stage")
}

func TestValidateRunOptions_Valid(t *testing.T) {
	err := validateRunOptions(RunOptions{HookStage: "pre-commit", AllFiles: true})
	assert.NoError(t, err)
}

func TestShouldUseColor(t *testing.T) {
	assert.True(t, shouldUseColor("always"))
	assert.False(t, shouldUseColor("never"))
}

func TestRunCommand_Run_NotAGitRepository(t *testing.T) {
	withStore(t)
	dir := t.TempDir()
	withCwd(t, dir)

	cmd := &RunCommand{}
	exitCode := cmd.Run([]string{"--all-files"})
	assert.NotEqual(t, 0, exitCode)
}

func TestRunCommand_Run_LocalSystemHookAllFiles(t *testing.T) {
	withStore(t)
	dir := initTestRepo(t)
	writeConfig(t, dir, localSystemHookConfig)
	writeAndStage(t, dir, "a.txt", "hello\n")
	withCwd(t, dir)

	cmd := &RunCommand{}
	exitCode := cmd.Run([]string{"--all-files"})
	assert.Equal(t, 0, exitCode)
}

func TestRunCommand_Run_FailingHookReturnsNonZero(t *testing.T) {
	withStore(t)
	dir := initTestRepo(t)
	writeConfig(t, dir, strings.ReplaceAll(localSystemHookConfig, "entry: true", "entry: false"))
	writeAndStage(t, dir, "a.txt", "hello\n")
	withCwd(t, dir)

	cmd := &RunCommand{}
	exitCode := cmd.Run([]string{"--all-files"})
	assert.Equal(t, 1, exitCode)
}

func TestRunCommand_Run_DryRun(t *testing.T) {
	withStore(t)
	dir := initTestRepo(t)
	writeConfig(t, dir, localSystemHookConfig)
	writeAndStage(t, dir, "a.txt", "hello\n")
	withCwd(t, dir)

	cmd := &RunCommand{}
	exitCode := cmd.Run([]string{"--all-files", "--dry-run"})
	assert.Equal(t, 0, exitCode)
}
