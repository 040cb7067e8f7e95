package commands

import (
	"os"
	"strings"
	"testing"
)

func TestGcCommand_Help(t *testing.T) {
	cmd := &GcCommand{}
	help := cmd.Help()

	expectedStrings := []string{
		"gc",
		"Clean unused cached",
		"--dry-run",
		"--verbose",
		"--help",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(help, expected) {
			t.Errorf("Help output should contain '%s', but got: %s", expected, help)
		}
	}
}

func TestGcCommand_Synopsis(t *testing.T) {
	cmd := &GcCommand{}
	synopsis := cmd.Synopsis()

	expected := "Clean unused cached data"
	if synopsis != expected {
		t.Errorf("Expected synopsis '%s', got '%s'", expected, synopsis)
	}
}

func TestGcCommand_Run_Help(t *testing.T) {
	cmd := &GcCommand{}

	if exitCode := cmd.Run([]string{"--help"}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for --help, got %d", exitCode)
	}
	if exitCode := cmd.Run([]string{"-h"}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for -h, got %d", exitCode)
	}
}

func TestGcCommand_Run_InvalidFlag(t *testing.T) {
	cmd := &GcCommand{}

	exitCode := cmd.Run([]string{"--invalid-flag"})
	if exitCode == 0 {
		t.Error("Expected non-zero exit code for invalid flag")
	}
}

func TestGcCommand_Run_EmptyStore(t *testing.T) {
	cmd := &GcCommand{}

	tempDir := t.TempDir()
	t.Setenv("PREK_HOME", tempDir)

	if exitCode := cmd.Run([]string{}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for gc against an empty store, got %d", exitCode)
	}
}

func TestGcCommand_Run_DryRunVerbose(t *testing.T) {
	cmd := &GcCommand{}

	tempDir := t.TempDir()
	t.Setenv("PREK_HOME", tempDir)

	if exitCode := cmd.Run([]string{"--dry-run", "--verbose"}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for --dry-run --verbose, got %d", exitCode)
	}
}

func TestGcCommand_Run_RemovesUntrackedRepo(t *testing.T) {
	cmd := &GcCommand{}

	tempDir := t.TempDir()
	t.Setenv("PREK_HOME", tempDir)

	// Seed a repo clone directory with no tracked config referencing it.
	reposDir := tempDir + "/repos/untracked-repo"
	if err := os.MkdirAll(reposDir, 0o755); err != nil {
		t.Fatalf("failed to seed repo dir: %v", err)
	}

	if exitCode := cmd.Run([]string{"--verbose"}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for gc, got %d", exitCode)
	}

	if _, err := os.Stat(reposDir); !os.IsNotExist(err) {
		t.Error("expected untracked repo directory to be removed, since no marker or tracked config references it")
	}
}
