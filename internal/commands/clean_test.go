package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanCommand_Help(t *testing.T) {
	cmd := &CleanCommand{}
	help := cmd.Help()

	expectedStrings := []string{
		"Clean cached repositories",
		"--verbose",
		"--help",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(help, expected) {
			t.Errorf("Help output should contain '%s', but got: %s", expected, help)
		}
	}
}

func TestCleanCommand_Synopsis(t *testing.T) {
	cmd := &CleanCommand{}
	synopsis := cmd.Synopsis()

	expected := "Clean cached repositories and environments"
	if synopsis != expected {
		t.Errorf("Expected synopsis '%s', got '%s'", expected, synopsis)
	}
}

func TestCleanCommand_Run_Help(t *testing.T) {
	cmd := &CleanCommand{}

	if exitCode := cmd.Run([]string{"--help"}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for --help, got %d", exitCode)
	}
	if exitCode := cmd.Run([]string{"-h"}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for -h, got %d", exitCode)
	}
}

func TestCleanCommand_Run_InvalidFlag(t *testing.T) {
	cmd := &CleanCommand{}

	exitCode := cmd.Run([]string{"--invalid-flag"})
	if exitCode == 0 {
		t.Error("Expected non-zero exit code for invalid flag")
	}
}

func TestCleanCommand_Run_RemovesStore(t *testing.T) {
	cmd := &CleanCommand{}

	tempDir := t.TempDir()
	t.Setenv("PREK_HOME", tempDir)

	reposDir := filepath.Join(tempDir, "repos")
	if err := os.MkdirAll(reposDir, 0o755); err != nil {
		t.Fatalf("failed to create repos dir: %v", err)
	}
	marker := filepath.Join(reposDir, "test-file")
	if err := os.WriteFile(marker, []byte("test"), 0o644); err != nil {
		t.Fatalf("failed to write marker file: %v", err)
	}

	if exitCode := cmd.Run([]string{}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for default clean, got %d", exitCode)
	}

	if _, err := os.Stat(tempDir); !os.IsNotExist(err) {
		t.Error("Expected the whole store directory to be removed")
	}
}

func TestCleanCommand_Run_Verbose(t *testing.T) {
	cmd := &CleanCommand{}

	tempDir := t.TempDir()
	t.Setenv("PREK_HOME", tempDir)

	reposDir := filepath.Join(tempDir, "repos")
	if err := os.MkdirAll(reposDir, 0o755); err != nil {
		t.Fatalf("failed to create repos dir: %v", err)
	}

	if exitCode := cmd.Run([]string{"--verbose"}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for --verbose, got %d", exitCode)
	}
}

func TestCleanCommand_Run_EmptyStore(t *testing.T) {
	cmd := &CleanCommand{}

	tempDir := t.TempDir()
	t.Setenv("PREK_HOME", filepath.Join(tempDir, "fresh"))

	// store.Open creates the bucket layout on first use, so clean always
	// finds a store root to remove, populated or not.
	if exitCode := cmd.Run([]string{}); exitCode != 0 {
		t.Errorf("Expected exit code 0 for clean against a freshly-opened store, got %d", exitCode)
	}
}
