// Package language implements the adapter contract every hook language
// satisfies. Only system, script, fail, pygrep, docker, and
// docker_image get concrete implementations here; every other named
// language resolves Unimplemented from Run.
//
// Each adapter composes install/check_health/run into one small interface
// rather than the larger manager/environment/health-checker/
// dependency-manager split a full language-ecosystem layer would need.
package language

import (
	"context"

	"github.com/prek-go/prek/pkg/store"
)

// Status is the outcome of running a hook.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
	StatusNoFiles
	StatusDryRun
	StatusUnimplemented
)

// RunResult is what Adapter.Run returns.
type RunResult struct {
	Status     Status
	ExitCode   int
	Output     []byte
	ModifiedFiles bool
}

// InstalledHook is the install-time view an adapter's Run/CheckHealth
// operate on: a built hook plus its resolved install marker.
type InstalledHook struct {
	HookID          string
	Entry           string
	Args            []string
	Env             map[string]string
	AdditionalDeps  []string
	RepoCloneDir    string // empty for local/meta/builtin
	Info            store.InstallInfo
}

// Adapter is the per-language contract: install,
// check_health, run.
type Adapter interface {
	Name() string

	// SupportsInstallEnv mirrors config.Language.SupportsInstallEnv(); a
	// language that returns false here never has Install called — the
	// installer emits NoNeedInstall instead.
	SupportsInstallEnv() bool

	// Install materializes an environment for hook under envPath (an
	// as-yet-unpersisted tempdir the installer renames into place only
	// after success) and returns the marker to write.
	Install(ctx context.Context, envPath string, hook InstallRequest, s *store.Store) (store.InstallInfo, error)

	// CheckHealth verifies a pre-existing installed environment still works.
	CheckHealth(ctx context.Context, info store.InstallInfo) error

	// Run executes the hook against filenames. Must not mutate store state
	// outside store.cache/<bucket>.
	Run(ctx context.Context, hook InstalledHook, filenames []string, s *store.Store) (RunResult, error)
}

// InstallRequest bundles what Adapter.Install needs from a built hook,
// without pkg/language importing pkg/hookdef (which would create an import
// cycle once hookdef needs language capability predicates).
type InstallRequest struct {
	Language               string
	LanguageVersion        string
	AdditionalDependencies []string
	RepoCloneDir           string
	RepoIdentity           string
}

// Registry resolves a language name to its Adapter.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds the registry with every concretely-implemented
// adapter plus an UnimplementedAdapter fallback for everything else.
func NewRegistry() *Registry {
	r := &Registry{adapters: map[string]Adapter{}}
	for _, a := range []Adapter{
		NewSystemAdapter(),
		NewScriptAdapter(),
		NewFailAdapter(),
		NewPygrepAdapter(),
		NewDockerAdapter(),
		NewDockerImageAdapter(),
	} {
		r.adapters[a.Name()] = a
	}
	return r
}

// Get returns the adapter for name, or an UnimplementedAdapter if name
// isn't one of the six concretely-implemented languages.
func (r *Registry) Get(name string) Adapter {
	if a, ok := r.adapters[name]; ok {
		return a
	}
	return NewUnimplementedAdapter(name)
}
