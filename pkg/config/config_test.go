package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, ".pre-commit-config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_RemoteRepoRequiresRev(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: https://example.com/hooks
    hooks:
      - id: foo
`)
	_, _, err := Load(p)
	require.Error(t, err)
}

func TestLoad_LocalHookRequiresIDEntryLanguage(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: local
    hooks:
      - id: foo
        name: Foo
`)
	_, _, err := Load(p)
	require.Error(t, err)
}

func TestLoad_LocalHookValid(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: local
    hooks:
      - id: foo
        name: Foo
        entry: ./foo.sh
        language: script
`)
	cfg, _, err := Load(p)
	require.NoError(t, err)
	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, RepoLocal, cfg.Repos[0].Kind)
}

func TestLoad_MetaHookUnknownIDRejected(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: meta
    hooks:
      - id: not-a-real-meta-hook
`)
	_, _, err := Load(p)
	require.Error(t, err)
}

func TestLoad_MetaHookValid(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: meta
    hooks:
      - id: check-hooks-apply
`)
	cfg, _, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, RepoMeta, cfg.Repos[0].Kind)
}

func TestLoad_MutableRevWarns(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: https://example.com/hooks
    rev: main
    hooks:
      - id: foo
`)
	_, warnings, err := Load(p)
	require.NoError(t, err)
	require.NotEmpty(t, warnings.Messages)
}

func TestLoad_ImmutableRevNoWarning(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: https://example.com/hooks
    rev: v1.2.3
    hooks:
      - id: foo
`)
	_, warnings, err := Load(p)
	require.NoError(t, err)
	assert.Empty(t, warnings.Messages)
}

func TestLoad_UnrecognizedTopLevelKeyWarns(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: local
    hooks:
      - id: foo
        name: Foo
        entry: ./foo.sh
        language: script
some_unknown_key: true
`)
	_, warnings, err := Load(p)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings.Messages)
}

func TestLoad_AllowedUnusedKeyDoesNotWarn(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: local
    hooks:
      - id: foo
        name: Foo
        entry: ./foo.sh
        language: script
ci:
  autofix_commit_msg: "fix"
`)
	_, warnings, err := Load(p)
	require.NoError(t, err)
	assert.Empty(t, warnings.Messages)
}

func TestLoad_EmptyFileRejected(t *testing.T) {
	p := writeConfig(t, "   \n")
	_, _, err := Load(p)
	require.Error(t, err)
}

func TestValidate_ReconfirmsLoadedConfig(t *testing.T) {
	p := writeConfig(t, `
repos:
  - repo: local
    hooks:
      - id: foo
        name: Foo
        entry: ./foo.sh
        language: script
`)
	cfg, _, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
}
