package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/hookdef"
	"github.com/prek-go/prek/pkg/language"
	"github.com/prek-go/prek/pkg/workspace"
)

func buildHook(t *testing.T, spec config.HookOptions, idx int) hookdef.Hook {
	t.Helper()
	h, err := hookdef.Build(hookdef.BuildInput{Spec: spec, DeclIdx: idx})
	require.NoError(t, err)
	return h
}

func TestGroupByPriority_ChunksEqualPriorityInDeclOrder(t *testing.T) {
	high := func(id string, idx int) hookdef.Hook {
		p := 10
		return buildHook(t, config.HookOptions{ID: id, Language: "system", Entry: "true", Priority: &p}, idx)
	}
	low := func(id string, idx int) hookdef.Hook {
		p := 0
		return buildHook(t, config.HookOptions{ID: id, Language: "system", Entry: "true", Priority: &p}, idx)
	}

	hooks := []hookdef.Hook{high("a", 0), low("b", 1), low("c", 2), high("d", 3)}
	groups := groupByPriority(hooks)

	require.Len(t, groups, 2)
	assert.Equal(t, 0, groups[0][0].Priority)
	assert.ElementsMatch(t, []string{"b", "c"}, []string{groups[0][0].ID, groups[0][1].ID})
	assert.Equal(t, 10, groups[1][0].Priority)
	assert.ElementsMatch(t, []string{"a", "d"}, []string{groups[1][0].ID, groups[1][1].ID})
}

func TestShuffleDeterministic_StableAcrossCalls(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e", "f", "g"}
	first := shuffleDeterministic(files)
	second := shuffleDeterministic(files)
	assert.Equal(t, first, second)
	assert.ElementsMatch(t, files, first)
}

func TestRunHook_NoFilesSkipsWhenNotAlwaysRun(t *testing.T) {
	r := New(nil, language.NewRegistry(), nil, 1)
	h := buildHook(t, config.HookOptions{ID: "noop", Language: "system", Entry: "true", Files: `^nomatch$`}, 0)

	proj := &workspace.Project{Root: t.TempDir(), RelativePath: ".", Config: &config.Config{}}
	ph := ProjectHooks{Project: proj, Hooks: []hookdef.Hook{h}}

	summary, err := r.Run(context.Background(), []ProjectHooks{ph}, Options{Candidates: nil})
	require.NoError(t, err)
	require.Len(t, summary.Projects, 1)
	require.Len(t, summary.Projects[0].Groups, 1)
	assert.Equal(t, language.StatusNoFiles, summary.Projects[0].Groups[0].Results[0].Status)
	assert.True(t, summary.OK())
}

func TestRunHook_FailFastAbortsRemainingGroups(t *testing.T) {
	r := New(nil, language.NewRegistry(), nil, 1)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x\n"), 0o644))

	lowPriority := 0
	highPriority := 1
	failing := buildHook(t, config.HookOptions{
		ID: "fails", Language: "fail", Entry: "boom", AlwaysRun: true, FailFast: true, Priority: &lowPriority,
	}, 0)
	shouldNotRun := buildHook(t, config.HookOptions{
		ID: "later", Language: "system", Entry: "true", AlwaysRun: true, Priority: &highPriority,
	}, 1)

	proj := &workspace.Project{Root: root, RelativePath: ".", Config: &config.Config{}}
	ph := ProjectHooks{Project: proj, Hooks: []hookdef.Hook{failing, shouldNotRun}}

	summary, err := r.Run(context.Background(), []ProjectHooks{ph}, Options{Candidates: []string{"a.txt"}})
	require.NoError(t, err)
	require.Len(t, summary.Projects, 1)
	assert.True(t, summary.Projects[0].FailFastTriggered)
	assert.Len(t, summary.Projects[0].Groups, 1, "second priority group must not run after fail_fast")
	assert.False(t, summary.OK())
}
