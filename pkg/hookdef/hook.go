// Package hookdef builds fully-materialized Hook values from a project, a
// resolved repo, and a manifest/override hook spec.
package hookdef

import (
	"fmt"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/envkey"
	"github.com/prek-go/prek/pkg/repo"
	"github.com/prek-go/prek/pkg/tags"
)

// Hook is the fully-materialized contract that drives execution.
type Hook struct {
	// identity
	ID          string
	Alias       string
	Name        string
	Description string
	Priority    int
	Idx         int
	ProjectRoot string
	RepoURL     string          // empty for local/meta/builtin
	RepoKind    config.RepoKind // dispatches fast-path meta/builtin execution

	// invocation
	Entry           string
	Args            []string
	Env             map[string]string
	Language        config.Language
	LanguageRequest envkey.LanguageRequest

	// selection
	Files           config.FilePattern
	Exclude         config.FilePattern
	Types           tags.TagSet
	TypesOr         tags.TagSet
	ExcludeTypes    tags.TagSet
	AlwaysRun       bool
	PassFilenames   bool
	Stages          []config.Stage

	// execution discipline
	RequireSerial bool
	FailFast      bool
	LogFile       string
	Verbose       bool

	// deps
	AdditionalDependencies []string
	EnvKey                 envkey.Key
}

// BuildInput bundles the Hook Builder's inputs.
type BuildInput struct {
	ProjectRoot            string
	DefaultLanguageVersion map[string]string
	DefaultStages          []string
	Resolved               *repo.ResolvedRepo
	Spec                   config.HookOptions
	DeclIdx                int
}

// Build merges defaults, the resolved repo's manifest, and per-project
// overrides into a materialized Hook. Entry-string metadata extraction
// (ExtractMetadataFromEntry) is a separate function; Build does not call
// it, and neither does any other package in this module.
func Build(in BuildInput) (Hook, error) {
	spec := in.Spec

	// Step 1: merge project-wide defaults.
	languageVersion := spec.LanguageVersion
	if languageVersion == "" {
		languageVersion = in.DefaultLanguageVersion[spec.Language]
	}
	stagesRaw := spec.Stages
	if len(stagesRaw) == 0 {
		stagesRaw = in.DefaultStages
	}

	lang := config.Language(spec.Language)

	// Step 2: validate capability constraints.
	if len(spec.AdditionalDependencies) > 0 && !(lang.SupportsInstallEnv() && lang.SupportsDependency()) {
		return Hook{}, fmt.Errorf("hook %s: language %q does not support additional_dependencies", spec.ID, lang)
	}
	if languageVersion != "" && languageVersion != "default" && !lang.SupportsLanguageVersion() {
		return Hook{}, fmt.Errorf("hook %s: language %q does not support language_version", spec.ID, lang)
	}

	// Step 3: fill remaining defaults.
	typeNames := spec.Types
	if len(typeNames) == 0 {
		typeNames = []string{"file"}
	}
	typeSet, err := tags.FromNames(typeNames)
	if err != nil {
		return Hook{}, fmt.Errorf("hook %s: %w", spec.ID, err)
	}
	typesOr, err := tags.FromNames(spec.TypesOr)
	if err != nil {
		return Hook{}, fmt.Errorf("hook %s: %w", spec.ID, err)
	}
	excludeTypes, err := tags.FromNames(spec.ExcludeTypes)
	if err != nil {
		return Hook{}, fmt.Errorf("hook %s: %w", spec.ID, err)
	}

	passFilenames := true
	if spec.PassFilenames != nil {
		passFilenames = *spec.PassFilenames
	}

	stages, err := config.NormalizeStages(stagesRaw)
	if err != nil {
		return Hook{}, fmt.Errorf("hook %s: %w", spec.ID, err)
	}

	filesPat, err := config.CompileRegex(spec.Files)
	if err != nil {
		return Hook{}, fmt.Errorf("hook %s: %w", spec.ID, err)
	}
	excludePat, err := config.CompileRegex(spec.Exclude)
	if err != nil {
		return Hook{}, fmt.Errorf("hook %s: %w", spec.ID, err)
	}

	// Step 4: parse language_version.
	req, err := envkey.ParseLanguageRequest(spec.Language, languageVersion)
	if err != nil {
		return Hook{}, fmt.Errorf("hook %s: %w", spec.ID, err)
	}

	// Step 5: priority defaults to declaration index.
	priority := in.DeclIdx
	if spec.Priority != nil {
		priority = *spec.Priority
	}

	repoIdentity, isRemote := "", false
	repoURL := ""
	var repoKind config.RepoKind
	if in.Resolved != nil {
		repoURL = in.Resolved.URL
		repoKind = in.Resolved.Kind
		if suffix, ok := in.Resolved.EnvKeyDependencySuffix(); ok {
			repoIdentity, isRemote = suffix, true
		}
	}
	envKey := envkey.Build(spec.Language, req, spec.AdditionalDependencies, repoIdentity, isRemote)

	return Hook{
		ID:                     spec.ID,
		Alias:                  spec.Alias,
		Name:                   spec.Name,
		Description:            spec.Description,
		Priority:               priority,
		Idx:                    in.DeclIdx,
		ProjectRoot:            in.ProjectRoot,
		RepoURL:                repoURL,
		RepoKind:               repoKind,
		Entry:                  spec.Entry,
		Args:                   spec.Args,
		Env:                    spec.Env,
		Language:               lang,
		LanguageRequest:        req,
		Files:                  filesPat,
		Exclude:                excludePat,
		Types:                  typeSet,
		TypesOr:                typesOr,
		ExcludeTypes:           excludeTypes,
		AlwaysRun:              spec.AlwaysRun,
		PassFilenames:          passFilenames,
		Stages:                 stages,
		RequireSerial:          spec.RequireSerial,
		FailFast:               spec.FailFast,
		LogFile:                spec.LogFile,
		Verbose:                spec.Verbose,
		AdditionalDependencies: spec.AdditionalDependencies,
		EnvKey:                 envKey,
	}, nil
}

// RunsOnStage reports whether the hook is selected for stage.
func (h Hook) RunsOnStage(stage config.Stage) bool {
	if h.Stages == nil {
		return true
	}
	for _, s := range h.Stages {
		if s == stage {
			return true
		}
	}
	return false
}
