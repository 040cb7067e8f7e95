package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookImplCommand_Help(t *testing.T) {
	cmd := &HookImplCommand{}
	help := cmd.Help()

	assert.NotEmpty(t, help)
	for _, expected := range []string{"hook-impl", "--hook-type", "HOOK_ARGS"} {
		assert.Contains(t, help, expected)
	}
}

func TestHookImplCommand_Synopsis(t *testing.T) {
	cmd := &HookImplCommand{}
	assert.Equal(t, "Internal hook implementation (not for direct use)", cmd.Synopsis())
}

func TestHookImplCommand_Run_Help(t *testing.T) {
	cmd := &HookImplCommand{}
	assert.Equal(t, 0, cmd.Run([]string{"--help"}))
}

func TestHookImplCommand_Run_MissingHookTypeFlag(t *testing.T) {
	cmd := &HookImplCommand{}
	assert.NotEqual(t, 0, cmd.Run([]string{}))
}

func TestHookImplCommand_Run_UnknownHookType(t *testing.T) {
	withStore(t)
	dir := initTestRepo(t)
	writeConfig(t, dir, localSystemHookConfig)
	withCwd(t, dir)

	cmd := &HookImplCommand{}
	assert.NotEqual(t, 0, cmd.Run([]string{"--hook-type", "not-a-real-hook"}))
}

func TestHookImplCommand_Run_MissingConfigSkipped(t *testing.T) {
	withStore(t)
	withCwd(t, t.TempDir())

	cmd := &HookImplCommand{}
	exitCode := cmd.Run([]string{"--hook-type", "pre-commit", "--skip-on-missing-config"})
	assert.Equal(t, 0, exitCode)
}

func TestHookImplCommand_Run_MissingConfigFails(t *testing.T) {
	withStore(t)
	withCwd(t, t.TempDir())

	cmd := &HookImplCommand{}
	assert.NotEqual(t, 0, cmd.Run([]string{"--hook-type", "pre-commit"}))
}

func TestHookImplCommand_Run_PreCommitRunsStagedFiles(t *testing.T) {
	withStore(t)
	dir := initTestRepo(t)
	writeConfig(t, dir, localSystemHookConfig)
	writeAndStage(t, dir, "a.txt", "hello\n")
	withCwd(t, dir)

	cmd := &HookImplCommand{}
	exitCode := cmd.Run([]string{"--hook-type", "pre-commit"})
	assert.Equal(t, 0, exitCode)
}

func TestStageForHookType(t *testing.T) {
	stage, err := stageForHookType("pre-commit")
	require.NoError(t, err)
	assert.Equal(t, "pre-commit", string(stage))

	_, err = stageForHookType("not-a-stage")
	assert.Error(t, err)
}

func TestParsePrePushArgs(t *testing.T) {
	from, to, ok := parsePrePushArgs([]string{"refs/heads/main", "abc123", "refs/heads/main", "def456"})
	assert.True(t, ok)
	assert.Equal(t, "def456", from)
	assert.Equal(t, "abc123", to)

	_, _, ok = parsePrePushArgs([]string{"refs/heads/main", "abc123", "refs/heads/main", "0000000000000000000000000000000000000000"})
	assert.False(t, ok, "a brand new branch has no sensible diff base")

	_, _, ok = parsePrePushArgs([]string{"only", "two"})
	assert.False(t, ok)
}
