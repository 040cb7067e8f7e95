// Package installer implements environment installation and garbage
// collection against a pkg/store.Store: a parallel-goroutine-plus-semaphore
// install loop guarded by the store's cross-process Lock, dispatching each
// hook to its language.Adapter.
package installer

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/prek-go/prek/pkg/hookdef"
	"github.com/prek-go/prek/pkg/language"
	"github.com/prek-go/prek/pkg/store"
)

// Outcome is what the install loop reports per hook.
type Outcome int

const (
	OutcomeInstalled Outcome = iota
	OutcomeNoNeedInstall
)

// Report is one hook's install-loop result.
type Report struct {
	Hook    hookdef.Hook
	Outcome Outcome
	Info    store.InstallInfo
	Err     error
}

// Concurrency bounds how many installs run at once across all partitions.
const Concurrency = 4

// adapterRegistry is the seam Installer depends on instead of
// *language.Registry directly, so tests can substitute adapters without
// going through the registry's fixed language set.
type adapterRegistry interface {
	Get(name string) language.Adapter
}

// Installer runs the install loop for a batch of built hooks.
type Installer struct {
	store    *store.Store
	registry adapterRegistry
}

// New constructs an Installer.
func New(s *store.Store, registry *language.Registry) *Installer {
	return &Installer{store: s, registry: registry}
}

// InstallAll partitions hooks (by language bucket, then by equal
// env_key_dependencies), holds the store lock for the whole run, and
// installs each partition concurrently.
func (in *Installer) InstallAll(ctx context.Context, hooks []hookdef.Hook, onWaitingForLock store.OnWaiting) ([]Report, error) {
	var reports []Report
	err := in.store.Lock().WithLock(ctx, onWaitingForLock, func() error {
		partitions := partition(hooks)

		sem := make(chan struct{}, Concurrency)
		var wg sync.WaitGroup
		var mu sync.Mutex
		var errs *multierror.Error

		for _, part := range partitions {
			part := part
			wg.Add(1)
			go func() {
				defer wg.Done()
				rs, err := in.installPartition(ctx, part, sem)
				mu.Lock()
				reports = append(reports, rs...)
				if err != nil {
					errs = multierror.Append(errs, err)
				}
				mu.Unlock()
			}()
		}
		wg.Wait()
		return errs.ErrorOrNil()
	})
	return reports, err
}

// partition groups hooks by install bucket (pygrep treated as python), then
// by equal env_key_dependencies within each bucket.
func partition(hooks []hookdef.Hook) [][]hookdef.Hook {
	type groupKey struct {
		bucket string
		deps   string
	}
	groups := map[groupKey][]hookdef.Hook{}
	var order []groupKey
	for _, h := range hooks {
		gk := groupKey{bucket: string(h.Language.InstallBucket()), deps: h.EnvKey.DependencyFingerprint()}
		if _, ok := groups[gk]; !ok {
			order = append(order, gk)
		}
		groups[gk] = append(groups[gk], h)
	}
	out := make([][]hookdef.Hook, 0, len(order))
	for _, gk := range order {
		out = append(out, groups[gk])
	}
	return out
}

// installPartition runs one partition's install loop in declaration order,
// sharing the process-wide semaphore with every other partition.
func (in *Installer) installPartition(ctx context.Context, part []hookdef.Hook, sem chan struct{}) ([]Report, error) {
	var reports []Report
	var newlyInstalled []store.InstallInfo
	healthChecked := map[string]bool{}

	existing, err := in.store.InstalledHooks()
	if err != nil {
		existing = nil
	}

	for _, h := range part {
		if !h.Language.SupportsInstallEnv() {
			reports = append(reports, Report{Hook: h, Outcome: OutcomeNoNeedInstall})
			continue
		}

		adapter := in.registry.Get(string(h.Language))

		if match, ok := findMatch(h, newlyInstalled); ok {
			reports = append(reports, Report{Hook: h, Outcome: OutcomeInstalled, Info: match})
			continue
		}
		if match, ok := findMatch(h, existing); ok && healthyOnce(ctx, adapter, match, healthChecked) {
			reports = append(reports, Report{Hook: h, Outcome: OutcomeInstalled, Info: match})
			newlyInstalled = append(newlyInstalled, match)
			continue
		}

		sem <- struct{}{}
		info, err := in.installOne(ctx, adapter, h)
		<-sem
		if err != nil {
			reports = append(reports, Report{Hook: h, Err: err})
			continue
		}
		newlyInstalled = append(newlyInstalled, info)
		reports = append(reports, Report{Hook: h, Outcome: OutcomeInstalled, Info: info})
	}
	return reports, nil
}

// installOne allocates a tempdir sibling of the store's hooks directory,
// installs into it, and only renames it into place after success.
func (in *Installer) installOne(ctx context.Context, adapter language.Adapter, h hookdef.Hook) (store.InstallInfo, error) {
	finalDir := in.store.NewHookEnvDir()
	tmpDir := finalDir + ".installing"
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return store.InstallInfo{}, fmt.Errorf("failed to create env tempdir: %w", err)
	}

	info, err := adapter.Install(ctx, tmpDir, language.InstallRequest{
		Language:               string(h.Language),
		LanguageVersion:        h.LanguageRequest.String(),
		AdditionalDependencies: h.AdditionalDependencies,
		RepoCloneDir:           "",
	}, in.store)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return store.InstallInfo{}, fmt.Errorf("failed to install hook %s: %w", h.ID, err)
	}

	if err := os.Rename(tmpDir, finalDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return store.InstallInfo{}, fmt.Errorf("failed to persist installed env for hook %s: %w", h.ID, err)
	}
	info.EnvPath = finalDir
	info.LanguageVersion = h.LanguageRequest.String()
	info.Dependencies = h.EnvKey.Dependencies

	if err := store.WriteHookMarker(finalDir, info); err != nil {
		return store.InstallInfo{}, fmt.Errorf("failed to persist install marker for hook %s: %w", h.ID, err)
	}
	return info, nil
}

// healthyOnce memoizes CheckHealth per env path: a failing pre-existing
// env is not reused (a fresh install follows) and is never auto-deleted;
// the failure itself is not reported.
func healthyOnce(ctx context.Context, adapter language.Adapter, info store.InstallInfo, checked map[string]bool) bool {
	if healthy, ok := checked[info.EnvPath]; ok {
		return healthy
	}
	healthy := adapter.CheckHealth(ctx, info) == nil
	checked[info.EnvPath] = healthy
	return healthy
}

func findMatch(h hookdef.Hook, candidates []store.InstallInfo) (store.InstallInfo, bool) {
	for _, c := range candidates {
		if h.EnvKey.Matches(string(h.Language), c.Dependencies, c.LanguageVersion) {
			return c, true
		}
	}
	return store.InstallInfo{}, false
}

