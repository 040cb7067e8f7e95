package commands

import (
	"context"
	"fmt"

	"github.com/prek-go/prek/pkg/hookdef"
	"github.com/prek-go/prek/pkg/installer"
	"github.com/prek-go/prek/pkg/repo"
	"github.com/prek-go/prek/pkg/runner"
	"github.com/prek-go/prek/pkg/store"
	"github.com/prek-go/prek/pkg/workspace"
)

// builtWorkspace bundles a discovered workspace with its materialized
// hooks, ready for pkg/installer.InstallAll and pkg/runner.Run alike.
type builtWorkspace struct {
	GitRoot       string
	WorkspaceRoot string
	Workspace     *workspace.Workspace
	ProjectHooks  []runner.ProjectHooks
	FlatHooks     []hookdef.Hook
	CloneDirs     map[runner.InstallKey]string
}

// isExplicitConfig reports whether the user pointed --config at something
// other than this CLI's default, which pins workspace discovery to the git
// root instead of walking up from cwd.
func isExplicitConfig(configFlag string) bool {
	return configFlag != "" && configFlag != ".pre-commit-config.yaml"
}

// buildWorkspace resolves every project's repos and materializes their
// hooks, in deep-first project order.
func buildWorkspace(ctx context.Context, s *store.Store, explicitConfig bool, cwd string) (*builtWorkspace, error) {
	gitRoot, err := workspace.FindGitRoot(cwd)
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}
	root, err := workspace.ResolveRoot(cwd, explicitConfig)
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Discover(root)
	if err != nil {
		return nil, fmt.Errorf("discovering workspace: %w", err)
	}

	bw := &builtWorkspace{
		GitRoot:       gitRoot,
		WorkspaceRoot: root,
		Workspace:     ws,
		CloneDirs:     make(map[runner.InstallKey]string),
	}

	for _, proj := range ws.Projects {
		if proj.Config == nil {
			continue
		}
		hooks, err := buildProjectHooks(ctx, s, proj, bw.CloneDirs)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", proj.RelativePath, err)
		}
		bw.ProjectHooks = append(bw.ProjectHooks, runner.ProjectHooks{Project: proj, Hooks: hooks})
		bw.FlatHooks = append(bw.FlatHooks, hooks...)
	}

	return bw, nil
}

func buildProjectHooks(
	ctx context.Context,
	s *store.Store,
	proj *workspace.Project,
	cloneDirs map[runner.InstallKey]string,
) ([]hookdef.Hook, error) {
	var hooks []hookdef.Hook
	idx := 0
	for _, repoSpec := range proj.Config.Repos {
		resolved, err := repo.Resolve(ctx, s, repoSpec)
		if err != nil {
			return nil, fmt.Errorf("resolving repo %s: %w", repoSpec.URL, err)
		}
		for _, spec := range repoSpec.Hooks {
			merged, ok := resolved.GetHook(spec.ID)
			if !ok {
				return nil, fmt.Errorf("hook %q not found in repo %s", spec.ID, repoSpec.URL)
			}
			merged = repo.MergeHookSpec(merged, spec)

			h, err := hookdef.Build(hookdef.BuildInput{
				ProjectRoot:            proj.Root,
				DefaultLanguageVersion: proj.Config.DefaultLanguageVersion,
				DefaultStages:          proj.Config.DefaultStages,
				Resolved:               resolved,
				Spec:                   merged,
				DeclIdx:                idx,
			})
			if err != nil {
				return nil, err
			}
			idx++

			hooks = append(hooks, h)
			if resolved.CloneDir != "" {
				cloneDirs[runner.KeyFor(h)] = resolved.CloneDir
			}
		}
	}
	return hooks, nil
}

// installedHookMap converts install reports into the lookup pkg/runner
// needs to skip already-healthy environments.
func installedHookMap(reports []installer.Report) map[runner.InstallKey]store.InstallInfo {
	m := make(map[runner.InstallKey]store.InstallInfo, len(reports))
	for _, r := range reports {
		m[runner.KeyFor(r.Hook)] = r.Info
	}
	return m
}
