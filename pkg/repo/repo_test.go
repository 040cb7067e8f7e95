package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/store"
)

func TestIsValidCommitHash(t *testing.T) {
	assert.True(t, isValidCommitHash("abcdef0"))
	assert.True(t, isValidCommitHash("0123456789abcdef0123456789abcdef01234567"))
	assert.False(t, isValidCommitHash("not-a-hash"))
	assert.False(t, isValidCommitHash("abcd"))
}

func TestMergeHookSpec_OverrideWinsWhenSet(t *testing.T) {
	base := ManifestHook{ID: "foo", Name: "Base Foo", Entry: "base-entry", Types: []string{"python"}}
	override := config.HookOptions{ID: "foo", Name: "Custom Foo"}

	merged := MergeHookSpec(base, override)
	assert.Equal(t, "Custom Foo", merged.Name)
	assert.Equal(t, "base-entry", merged.Entry)
	assert.Equal(t, []string{"python"}, merged.Types)
}

func TestMergeHookSpec_BoolFieldsOR(t *testing.T) {
	base := ManifestHook{ID: "foo", AlwaysRun: false}
	override := config.HookOptions{ID: "foo", AlwaysRun: true}

	merged := MergeHookSpec(base, override)
	assert.True(t, merged.AlwaysRun)
}

func TestResolve_LocalRepoPassesHooksThrough(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)

	r := config.Repo{Kind: config.RepoLocal, Hooks: []config.HookOptions{{ID: "foo", Entry: "./foo.sh", Language: "script"}}}
	resolved, err := Resolve(context.Background(), s, r)
	require.NoError(t, err)
	assert.Equal(t, config.RepoLocal, resolved.Kind)
	hook, ok := resolved.GetHook("foo")
	require.True(t, ok)
	assert.Equal(t, "./foo.sh", hook.Entry)
}

func TestResolve_MetaRepoPassesHooksThrough(t *testing.T) {
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)

	r := config.Repo{Kind: config.RepoMeta, Hooks: []config.HookOptions{{ID: "check-hooks-apply"}}}
	resolved, err := Resolve(context.Background(), s, r)
	require.NoError(t, err)
	_, ok := resolved.GetHook("check-hooks-apply")
	assert.True(t, ok)
}

func TestCloneEnv_StripsGitVarsExceptAllowList(t *testing.T) {
	t.Setenv("GIT_CUSTOM_THING", "1")
	t.Setenv("GIT_SSH_COMMAND", "ssh -i key")

	env := CloneEnv()
	var sawCustom, sawAllowed bool
	for _, kv := range env {
		if kv == "GIT_CUSTOM_THING=1" {
			sawCustom = true
		}
		if kv == "GIT_SSH_COMMAND=ssh -i key" {
			sawAllowed = true
		}
	}
	assert.False(t, sawCustom)
	assert.True(t, sawAllowed)
}
