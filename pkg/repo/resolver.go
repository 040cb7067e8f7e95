package repo

import (
	"context"
	"fmt"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/store"
)

// ResolvedRepo is a RepoSpec with remote repos replaced by their clone
// directory and manifest-merged hooks.
type ResolvedRepo struct {
	Kind     config.RepoKind
	URL      string
	Rev      string
	CloneDir string
	Hooks    []ManifestHook
}

// GetHook returns the merged hook spec for id, or false if this repo
// doesn't expose it.
func (r *ResolvedRepo) GetHook(id string) (ManifestHook, bool) {
	for _, h := range r.Hooks {
		if h.ID == id {
			return h, true
		}
	}
	return ManifestHook{}, false
}

// Resolve turns a config.Repo into a ResolvedRepo, cloning remote repos
// into the store as needed.
func Resolve(ctx context.Context, s *store.Store, r config.Repo) (*ResolvedRepo, error) {
	switch r.Kind {
	case config.RepoLocal:
		return &ResolvedRepo{Kind: r.Kind, Hooks: r.Hooks}, nil
	case config.RepoMeta:
		return resolveStatic(r, metaBaseSpecs)
	case config.RepoBuiltin:
		return resolveStatic(r, builtinBaseSpecs)
	case config.RepoRemote:
		return resolveRemote(ctx, s, r)
	default:
		return nil, fmt.Errorf("unknown repo kind %v", r.Kind)
	}
}

// resolveStatic merges config-level overrides onto this module's built-in
// defaults for meta/builtin hook ids: unlike a Remote repo, Meta and Builtin
// repos have no cloned manifest to read, so the "base" hook definition is a
// small compiled-in table instead.
func resolveStatic(r config.Repo, base map[string]config.HookOptions) (*ResolvedRepo, error) {
	hooks := make([]ManifestHook, 0, len(r.Hooks))
	for _, override := range r.Hooks {
		b, ok := base[override.ID]
		if !ok {
			return nil, fmt.Errorf("unknown hook id %q for repo kind %v", override.ID, r.Kind)
		}
		hooks = append(hooks, MergeHookSpec(b, override))
	}
	return &ResolvedRepo{Kind: r.Kind, Hooks: hooks}, nil
}

func resolveRemote(ctx context.Context, s *store.Store, r config.Repo) (*ResolvedRepo, error) {
	dir, err := CloneRepo(ctx, s, r.URL, r.Rev)
	if err != nil {
		return nil, err
	}
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]ManifestHook, len(manifest))
	for _, h := range manifest {
		byID[h.ID] = h
	}

	hooks := make([]ManifestHook, 0, len(r.Hooks))
	for _, override := range r.Hooks {
		base, ok := byID[override.ID]
		if !ok {
			return nil, fmt.Errorf("repo %s: manifest does not expose hook %q", r.URL, override.ID)
		}
		hooks = append(hooks, MergeHookSpec(base, override))
	}

	return &ResolvedRepo{
		Kind:     config.RepoRemote,
		URL:      r.URL,
		Rev:      r.Rev,
		CloneDir: dir,
		Hooks:    hooks,
	}, nil
}

// EnvKeyDependencySuffix returns the repo-identity component that remote
// hooks add to env_key_dependencies.
func (r *ResolvedRepo) EnvKeyDependencySuffix() (string, bool) {
	if r.Kind != config.RepoRemote {
		return "", false
	}
	return fmt.Sprintf("%s@%s", r.URL, r.Rev), true
}
