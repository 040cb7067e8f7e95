package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/prek-go/prek/pkg/config"
)

// ManifestFileName is the hook manifest file a remote/local repo exposes.
const ManifestFileName = ".pre-commit-hooks.yaml"

// ManifestHook is one entry in a .pre-commit-hooks.yaml manifest, the
// unmerged view of a hook before per-project overrides.
type ManifestHook = config.HookOptions

// ReadManifest parses dir/.pre-commit-hooks.yaml.
func ReadManifest(dir string) ([]ManifestHook, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path) // #nosec G304 -- dir is a store-managed clone directory
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var hooks []ManifestHook
	if err := yaml.Unmarshal(data, &hooks); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return hooks, nil
}

// MergeHookSpec overlays a config-level override onto its manifest hook,
// field by field: an override field set to its zero value leaves the
// manifest value untouched.
func MergeHookSpec(manifest ManifestHook, override config.HookOptions) ManifestHook {
	merged := manifest
	applyStringOverride(&merged.Alias, override.Alias)
	applyStringOverride(&merged.Name, override.Name)
	applyStringOverride(&merged.Entry, override.Entry)
	applyStringOverride(&merged.Language, override.Language)
	applyStringOverride(&merged.LanguageVersion, override.LanguageVersion)
	applyStringOverride(&merged.Description, override.Description)
	applyStringOverride(&merged.Files, override.Files)
	applyStringOverride(&merged.Exclude, override.Exclude)
	applyStringOverride(&merged.LogFile, override.LogFile)

	if override.Priority != nil {
		merged.Priority = override.Priority
	}
	if override.PassFilenames != nil {
		merged.PassFilenames = override.PassFilenames
	}

	applySliceOverride(&merged.Types, override.Types)
	applySliceOverride(&merged.TypesOr, override.TypesOr)
	applySliceOverride(&merged.ExcludeTypes, override.ExcludeTypes)
	applySliceOverride(&merged.Args, override.Args)
	applySliceOverride(&merged.AdditionalDependencies, override.AdditionalDependencies)
	applySliceOverride(&merged.Stages, override.Stages)

	if len(override.Env) > 0 {
		merged.Env = override.Env
	}

	merged.AlwaysRun = merged.AlwaysRun || override.AlwaysRun
	merged.RequireSerial = merged.RequireSerial || override.RequireSerial
	merged.Verbose = merged.Verbose || override.Verbose
	merged.FailFast = merged.FailFast || override.FailFast

	return merged
}

func applyStringOverride(dst *string, override string) {
	if override != "" {
		*dst = override
	}
}

func applySliceOverride(dst *[]string, override []string) {
	if override != nil {
		*dst = override
	}
}
