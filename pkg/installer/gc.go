package installer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/store"
)

// GCReport summarizes what a GC pass removed (or would remove, in dry-run
// mode), with sorted per-entry labels for stable -v output.
type GCReport struct {
	DryRun        bool
	RemovedRepos  []string
	RemovedHooks  []string
	RemovedTools  []string
	RemovedCaches []string
	PrunedConfigs []string
}

// GC marks retained configs' hook env-keys, their toolchain/cache buckets,
// and the installed env markers matching them, then sweeps everything
// else across the store's repos/hooks/tools/cache layout.
func GC(s *store.Store, dryRun, verbose bool) (GCReport, error) {
	report := GCReport{DryRun: dryRun}
	var errs *multierror.Error

	tracked, err := s.TrackedConfigs()
	if err != nil {
		return report, err
	}

	retainedRepoKeys := map[string]bool{}
	usedToolBuckets := map[string]bool{}
	usedCacheBuckets := map[string]bool{"prek": true}
	var prunedConfigs []string

	for _, path := range tracked {
		cfg, _, loadErr := config.Load(path)
		if loadErr != nil {
			if errors.Is(loadErr, fs.ErrNotExist) {
				continue // dropped from the root set: config file no longer exists
			}
			prunedConfigs = append(prunedConfigs, path) // retain but skip marking: parse error
			continue
		}
		prunedConfigs = append(prunedConfigs, path)

		for _, r := range cfg.Repos {
			if r.Kind == config.RepoRemote {
				retainedRepoKeys[repoKey(r.URL, r.Rev)] = true
			}
			for _, h := range r.Hooks {
				if h.Language != "" {
					usedToolBuckets[h.Language] = true
					usedCacheBuckets[h.Language] = true
				}
			}
		}
	}

	installed, err := s.InstalledHooks()
	if err != nil {
		return report, err
	}
	markedHookDirs := map[string]bool{}
	markedToolVersions := map[string]bool{} // "<lang>/<version>"
	anyToolchainReferenced := false
	for _, info := range installed {
		if retainedDependsOn(info, retainedRepoKeys) {
			markedHookDirs[info.EnvPath] = true
		}
		if info.Toolchain != "" {
			if lang, version, ok := toolVersionFromPath(s, info.Toolchain); ok {
				markedToolVersions[lang+"/"+version] = true
				anyToolchainReferenced = true
			}
		}
	}

	// Sweep repos/.
	_, repoDirs, err := s.ClonedRepos()
	if err != nil {
		return report, err
	}
	for _, dir := range repoDirs {
		marker, markerErr := store.ReadRepoMarker(dir)
		if markerErr == nil && retainedRepoKeys[repoKey(marker.URL, marker.Rev)] {
			continue
		}
		label := filepath.Base(dir)
		if verbose && markerErr == nil {
			label = fmt.Sprintf("%s@%s", marker.URL, marker.Rev)
		}
		report.RemovedRepos = append(report.RemovedRepos, label)
		if !dryRun {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				errs = multierror.Append(errs, rmErr)
			}
		}
	}

	// Sweep hooks/.
	hookEntries, err := os.ReadDir(s.HooksDir())
	if err != nil && !os.IsNotExist(err) {
		return report, err
	}
	for _, e := range hookEntries {
		dir := filepath.Join(s.HooksDir(), e.Name())
		if markedHookDirs[dir] {
			continue
		}
		label := e.Name()
		if verbose {
			if info, markerErr := store.ReadHookMarker(dir); markerErr == nil {
				label = fmt.Sprintf("%s env (%s, deps=%s)", info.Language, info.LanguageVersion, strings.Join(info.Dependencies, ","))
			}
		}
		report.RemovedHooks = append(report.RemovedHooks, label)
		if !dryRun {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				errs = multierror.Append(errs, rmErr)
			}
		}
	}

	// Sweep tools/<bucket>/<version>.
	toolLangs, err := os.ReadDir(s.ToolsDir())
	if err != nil && !os.IsNotExist(err) {
		return report, err
	}
	for _, langEntry := range toolLangs {
		lang := langEntry.Name()
		langDir := filepath.Join(s.ToolsDir(), lang)
		if !usedToolBuckets[lang] {
			report.RemovedTools = append(report.RemovedTools, lang)
			if !dryRun {
				if rmErr := os.RemoveAll(langDir); rmErr != nil {
					errs = multierror.Append(errs, rmErr)
				}
			}
			continue
		}
		versions, verErr := os.ReadDir(langDir)
		if verErr != nil {
			continue
		}
		// anyToolchainReferenced guards the defensive all-versions-removed
		// rule: if no install marker under this
		// store ever recorded a toolchain path at all, a per-version mark
		// can't be trusted, so every version in a used bucket is swept.
		for _, v := range versions {
			key := lang + "/" + v.Name()
			if anyToolchainReferenced && markedToolVersions[key] {
				continue
			}
			report.RemovedTools = append(report.RemovedTools, key)
			if !dryRun {
				if rmErr := os.RemoveAll(filepath.Join(langDir, v.Name())); rmErr != nil {
					errs = multierror.Append(errs, rmErr)
				}
			}
		}
	}

	// Sweep cache/<bucket>, excepting the always-retained "prek" bucket.
	cacheLangs, err := os.ReadDir(s.CacheDir())
	if err != nil && !os.IsNotExist(err) {
		return report, err
	}
	for _, e := range cacheLangs {
		name := e.Name()
		if usedCacheBuckets[name] {
			continue
		}
		report.RemovedCaches = append(report.RemovedCaches, name)
		if !dryRun {
			if rmErr := os.RemoveAll(filepath.Join(s.CacheDir(), name)); rmErr != nil {
				errs = multierror.Append(errs, rmErr)
			}
		}
	}

	// scratch/ is always wiped; patches/ is never touched.
	if !dryRun {
		if rmErr := wipeDir(s.ScratchDir()); rmErr != nil {
			errs = multierror.Append(errs, rmErr)
		}
	}

	sort.Strings(report.RemovedRepos)
	sort.Strings(report.RemovedHooks)
	sort.Strings(report.RemovedTools)
	sort.Strings(report.RemovedCaches)
	sort.Strings(prunedConfigs)
	report.PrunedConfigs = prunedConfigs

	if !dryRun {
		if err := replaceTrackedConfigs(s, prunedConfigs); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return report, errs.ErrorOrNil()
}

func repoKey(url, rev string) string {
	return url + "@" + rev
}

// retainedDependsOn marks a hook env as retained if its dependency set
// carries no repo identity (local/meta/builtin hooks, kept as long as they
// exist) or carries one that's still in the retained set.
func retainedDependsOn(info store.InstallInfo, retainedRepoKeys map[string]bool) bool {
	hasRepoIdentity := false
	for _, d := range info.Dependencies {
		if strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") || strings.HasPrefix(d, "git@") {
			hasRepoIdentity = true
			if retainedRepoKeys[d] {
				return true
			}
		}
	}
	return !hasRepoIdentity
}

func toolVersionFromPath(s *store.Store, toolchainPath string) (lang, version string, ok bool) {
	rel, err := filepath.Rel(s.ToolsDir(), toolchainPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", "", false
	}
	parts := strings.SplitN(filepath.ToSlash(rel), "/", 3)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func wipeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var errs *multierror.Error
	for _, e := range entries {
		if rmErr := os.RemoveAll(filepath.Join(dir, e.Name())); rmErr != nil {
			errs = multierror.Append(errs, rmErr)
		}
	}
	return errs.ErrorOrNil()
}

// replaceTrackedConfigs overwrites the GC root set with the pruned list,
// unlike store.UpdateTrackedConfigs which only ever merges.
func replaceTrackedConfigs(s *store.Store, paths []string) error {
	data, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracked configs: %w", err)
	}
	tmp := s.TrackedConfigsPath() + ".gc-tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tracked configs: %w", err)
	}
	return os.Rename(tmp, s.TrackedConfigsPath())
}
