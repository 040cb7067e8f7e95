package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstallHooksCommand_Help(t *testing.T) {
	cmd := &InstallHooksCommand{}
	help := cmd.Help()

	assert.NotEmpty(t, help)
	for _, expected := range []string{"install-hooks", "--verbose", "--help"} {
		assert.Contains(t, help, expected)
	}
}

func TestInstallHooksCommand_Synopsis(t *testing.T) {
	cmd := &InstallHooksCommand{}
	assert.Equal(t, "Install hook environments", cmd.Synopsis())
}

func TestInstallHooksCommand_Run_Help(t *testing.T) {
	cmd := &InstallHooksCommand{}
	assert.Equal(t, 0, cmd.Run([]string{"--help"}))
	assert.Equal(t, 0, cmd.Run([]string{"-h"}))
}

func TestInstallHooksCommand_Run_InvalidFlag(t *testing.T) {
	cmd := &InstallHooksCommand{}
	assert.NotEqual(t, 0, cmd.Run([]string{"--invalid-flag"}))
}

func TestInstallHooksCommand_Run_NotAGitRepository(t *testing.T) {
	withStore(t)
	withCwd(t, t.TempDir())

	cmd := &InstallHooksCommand{}
	assert.NotEqual(t, 0, cmd.Run([]string{}))
}

func TestInstallHooksCommand_Run_LocalSystemHookNeedsNoInstall(t *testing.T) {
	withStore(t)
	dir := initTestRepo(t)
	writeConfig(t, dir, localSystemHookConfig)
	withCwd(t, dir)

	cmd := &InstallHooksCommand{}
	exitCode := cmd.Run([]string{"--verbose"})
	assert.Equal(t, 0, exitCode)
}

func TestInstallHooksCommand_Run_NoReposIsNoop(t *testing.T) {
	withStore(t)
	dir := initTestRepo(t)
	writeConfig(t, dir, "repos: []\n")
	withCwd(t, dir)

	cmd := &InstallHooksCommand{}
	assert.Equal(t, 0, cmd.Run([]string{}))
}
