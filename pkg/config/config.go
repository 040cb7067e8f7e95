// Package config provides the typed, validated representation of a
// project's .pre-commit-config.yaml.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileNames are the accepted config file names, main before alt.
var ConfigFileNames = []string{".pre-commit-config.yaml", ".pre-commit-config.yml"}

// RepoKind tags the RepoSpec variant.
type RepoKind int

const (
	RepoRemote RepoKind = iota
	RepoLocal
	RepoMeta
	RepoBuiltin
)

// MetaHookIDs is the closed set of meta hook ids.
var MetaHookIDs = map[string]bool{
	"check-hooks-apply":        true,
	"check-useless-excludes":   true,
	"identity":                 true,
}

// BuiltinHookIDs is the closed set of hook ids a builtin repo may name.
// pkg/fastpath runs trailing-whitespace-fixer and end-of-file-fixer
// natively; the other ids resolve Unimplemented.
var BuiltinHookIDs = map[string]bool{
	"trailing-whitespace-fixer": true,
	"end-of-file-fixer":         true,
	"check-added-large-files":   true,
	"check-yaml":                true,
	"check-json":                true,
	"mixed-line-ending":         true,
}

// HookOptions holds the shared per-hook fields, all optional at config
// level and defaulted by the hook builder (pkg/hookdef).
type HookOptions struct {
	ID                      string   `yaml:"id"`
	Alias                   string   `yaml:"alias,omitempty"`
	Name                    string   `yaml:"name,omitempty"`
	Entry                   string   `yaml:"entry,omitempty"`
	Language                string   `yaml:"language,omitempty"`
	LanguageVersion         string   `yaml:"language_version,omitempty"`
	Description             string   `yaml:"description,omitempty"`
	Priority                *int     `yaml:"priority,omitempty"`
	MinimumToolVersion      string   `yaml:"minimum_pre_commit_version,omitempty"`
	Files                   string   `yaml:"files,omitempty"`
	Exclude                 string   `yaml:"exclude,omitempty"`
	Types                   []string `yaml:"types,omitempty"`
	TypesOr                 []string `yaml:"types_or,omitempty"`
	ExcludeTypes            []string `yaml:"exclude_types,omitempty"`
	Args                    []string `yaml:"args,omitempty"`
	Env                     map[string]string `yaml:"env,omitempty"`
	AdditionalDependencies  []string `yaml:"additional_dependencies,omitempty"`
	AlwaysRun               bool     `yaml:"always_run,omitempty"`
	PassFilenames           *bool    `yaml:"pass_filenames,omitempty"`
	RequireSerial           bool     `yaml:"require_serial,omitempty"`
	LogFile                 string   `yaml:"log_file,omitempty"`
	Verbose                 bool     `yaml:"verbose,omitempty"`
	FailFast                bool     `yaml:"fail_fast,omitempty"`
	Stages                  []string `yaml:"stages,omitempty"`

	Unused map[string]any `yaml:"-"`
}

// RemoteHookSpec is a hook override attached to a Remote repo entry.
type RemoteHookSpec = HookOptions

// LocalHookSpec is a hook defined inline in the Local repo entry; id, name,
// entry, language are required.
type LocalHookSpec = HookOptions

// MetaHookSpec is a hook override attached to a Meta repo entry; id must be
// in MetaHookIDs, and entry/non-system language are disallowed.
type MetaHookSpec = HookOptions

// BuiltinHookSpec is a hook override attached to a Builtin repo entry.
type BuiltinHookSpec = HookOptions

// Repo is one repos[] entry. The Kind field selects which of the Hooks
// slices and URL/Rev fields are meaningful — a flat struct rather than a Go
// interface, to keep YAML decoding straightforward.
type Repo struct {
	Kind  RepoKind
	URL   string // absolute URL or local filesystem path (Remote only)
	Rev   string // immutable ref; Remote only
	Hooks []HookOptions
}

// rawRepo is the literal YAML shape of one repos[] entry.
type rawRepo struct {
	Repo  string        `yaml:"repo"`
	Rev   string        `yaml:"rev,omitempty"`
	Hooks []HookOptions `yaml:"hooks"`
}

// Config is the parsed, not-yet-validated .pre-commit-config.yaml.
type Config struct {
	Repos                  []Repo
	DefaultLanguageVersion map[string]string
	DefaultStages          []string
	Files                  string
	Exclude                string
	FailFast               bool
	MinimumToolVersion     string
	CI                     map[string]any
	Orphan                 bool

	Unused []string
}

// rawConfig is the literal top-level YAML shape.
type rawConfig struct {
	Repos                   []rawRepo      `yaml:"repos"`
	DefaultLanguageVersion  map[string]string `yaml:"default_language_version,omitempty"`
	DefaultStages           []string       `yaml:"default_stages,omitempty"`
	Files                   string         `yaml:"files,omitempty"`
	Exclude                 string         `yaml:"exclude,omitempty"`
	FailFast                bool           `yaml:"fail_fast,omitempty"`
	MinimumPreCommitVersion string         `yaml:"minimum_pre_commit_version,omitempty"`
	CI                      map[string]any `yaml:"ci,omitempty"`
	// Orphan is a prek-specific extension:
	// when true, this project's files are consumed and invisible to
	// ancestor projects.
	Orphan bool `yaml:"orphan,omitempty"`
}

// allowedUnusedKeys never surface as "unused" warnings.
var allowedUnusedKeys = map[string]bool{
	"minimum_pre_commit_version": true,
	"ci":                         true,
}

// Warnings accumulates non-fatal load-time diagnostics.
type Warnings struct {
	Messages []string
}

func (w *Warnings) add(format string, args ...any) {
	w.Messages = append(w.Messages, fmt.Sprintf(format, args...))
}

// Load reads and parses a config file, returning warnings rather than
// failing on recoverable issues (unused keys, mutable revs).
func Load(path string) (*Config, *Warnings, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- caller-controlled discovery path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil, fmt.Errorf("config file %s is empty", path)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	var rawMap map[string]any
	_ = yaml.Unmarshal(data, &rawMap) // best-effort, for unused-key detection

	cfg := &Config{
		DefaultLanguageVersion:  raw.DefaultLanguageVersion,
		DefaultStages:           raw.DefaultStages,
		Files:                   raw.Files,
		Exclude:                 raw.Exclude,
		FailFast:                raw.FailFast,
		MinimumToolVersion:      raw.MinimumPreCommitVersion,
		CI:                      raw.CI,
		Orphan:                  raw.Orphan,
	}

	warnings := &Warnings{}
	for _, rr := range raw.Repos {
		repo, err := repoFromRaw(rr, warnings)
		if err != nil {
			return nil, warnings, err
		}
		cfg.Repos = append(cfg.Repos, repo)
	}

	collectUnusedKeys(rawMap, "", warnings)

	return cfg, warnings, nil
}

func repoFromRaw(rr rawRepo, warnings *Warnings) (Repo, error) {
	switch rr.Repo {
	case "local":
		for i, h := range rr.Hooks {
			if h.ID == "" || h.Name == "" || h.Entry == "" || h.Language == "" {
				return Repo{}, fmt.Errorf("local hook %d: id, name, entry, and language are required", i)
			}
		}
		if rr.Rev != "" {
			return Repo{}, fmt.Errorf("local repo must not specify rev")
		}
		return Repo{Kind: RepoLocal, Hooks: rr.Hooks}, nil
	case "meta":
		for _, h := range rr.Hooks {
			if !MetaHookIDs[h.ID] {
				return Repo{}, fmt.Errorf("unknown meta hook id: %s", h.ID)
			}
			if h.Entry != "" || (h.Language != "" && h.Language != string(LangSystem)) {
				return Repo{}, fmt.Errorf("meta hook %s must not override entry/language", h.ID)
			}
		}
		if rr.Rev != "" {
			return Repo{}, fmt.Errorf("meta repo must not specify rev")
		}
		return Repo{Kind: RepoMeta, Hooks: rr.Hooks}, nil
	case "":
		return Repo{}, fmt.Errorf("repo: repository URL is required")
	default:
		if strings.HasPrefix(rr.Repo, "builtin:") {
			id := strings.TrimPrefix(rr.Repo, "builtin:")
			_ = id
			for _, h := range rr.Hooks {
				if !BuiltinHookIDs[h.ID] {
					return Repo{}, fmt.Errorf("unknown builtin hook id: %s", h.ID)
				}
			}
			return Repo{Kind: RepoBuiltin, URL: rr.Repo, Hooks: rr.Hooks}, nil
		}
		if rr.Rev == "" {
			return Repo{}, fmt.Errorf("repo %s: revision is required", rr.Repo)
		}
		if !looksLikeImmutableRev(rr.Rev) {
			warnings.add("repo %s: rev %q does not look like a tag or commit SHA; "+
				"branch names can move and make hook behavior non-reproducible", rr.Repo, rr.Rev)
		}
		if len(rr.Hooks) == 0 {
			return Repo{}, fmt.Errorf("repo %s: no hooks configured", rr.Repo)
		}
		for i, h := range rr.Hooks {
			if h.ID == "" {
				return Repo{}, fmt.Errorf("repo %s, hook %d: hook ID is required", rr.Repo, i)
			}
		}
		return Repo{Kind: RepoRemote, URL: rr.Repo, Rev: rr.Rev, Hooks: rr.Hooks}, nil
	}
}

var shaLikeRe = regexp.MustCompile(`^[0-9a-fA-F]{7,40}$`)

// looksLikeImmutableRev reports whether rev looks like a SHA or tag rather
// than a mutable branch name. A dotted
// version string ("v1.2.3") or a hex SHA both count as immutable-looking.
func looksLikeImmutableRev(rev string) bool {
	if shaLikeRe.MatchString(rev) {
		return true
	}
	return strings.Contains(rev, ".")
}

// knownTopLevelKeys are the top-level config keys the typed model covers.
var knownTopLevelKeys = map[string]bool{
	"repos": true, "default_language_version": true, "default_stages": true,
	"files": true, "exclude": true, "fail_fast": true,
	"minimum_pre_commit_version": true, "ci": true, "orphan": true,
}

// knownRepoKeys are the keys a repos[] entry may carry.
var knownRepoKeys = map[string]bool{
	"repo": true, "rev": true, "hooks": true,
}

// knownHookKeys are the keys a repos[].hooks[] entry may carry, mirroring
// HookOptions' yaml tags.
var knownHookKeys = map[string]bool{
	"id": true, "alias": true, "name": true, "entry": true, "language": true,
	"language_version": true, "description": true, "priority": true,
	"minimum_pre_commit_version": true, "files": true, "exclude": true,
	"types": true, "types_or": true, "exclude_types": true, "args": true,
	"env": true, "additional_dependencies": true, "always_run": true,
	"pass_filenames": true, "require_serial": true, "log_file": true,
	"verbose": true, "fail_fast": true, "stages": true,
}

// collectUnusedKeys walks the raw YAML map looking for keys the typed model
// doesn't know about, skipping the allow-list, and recurses into
// repos[].hooks[] so hook-level typos (e.g. "exlude:") surface too.
func collectUnusedKeys(m map[string]any, prefix string, warnings *Warnings) {
	reportUnknown(m, prefix, knownTopLevelKeys, warnings)

	reposRaw, _ := m["repos"].([]any)
	for i, r := range reposRaw {
		repoMap, ok := r.(map[string]any)
		if !ok {
			continue
		}
		repoPrefix := fmt.Sprintf("repos[%d]", i)
		if prefix != "" {
			repoPrefix = prefix + "." + repoPrefix
		}
		reportUnknown(repoMap, repoPrefix, knownRepoKeys, warnings)

		hooksRaw, _ := repoMap["hooks"].([]any)
		for j, h := range hooksRaw {
			hookMap, ok := h.(map[string]any)
			if !ok {
				continue
			}
			hookPrefix := fmt.Sprintf("%s.hooks[%d]", repoPrefix, j)
			reportUnknown(hookMap, hookPrefix, knownHookKeys, warnings)
		}
	}
}

// reportUnknown warns about every key in m not in known or the global
// allow-list.
func reportUnknown(m map[string]any, prefix string, known map[string]bool, warnings *Warnings) {
	for k := range m {
		if allowedUnusedKeys[k] || known[k] {
			continue
		}
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		warnings.add("unrecognized key %q in config", path)
	}
}

// Validate runs the structural checks; Load already enforces most of them
// per-repo, so Validate mainly re-checks invariants for programmatically
// constructed Configs.
func (c *Config) Validate() error {
	for i, repo := range c.Repos {
		switch repo.Kind {
		case RepoRemote:
			if repo.URL == "" {
				return fmt.Errorf("repo %d: repository URL is required", i)
			}
			if repo.Rev == "" {
				return fmt.Errorf("repo %d: revision is required", i)
			}
		case RepoLocal:
			for j, h := range repo.Hooks {
				if h.ID == "" || h.Name == "" || h.Entry == "" || h.Language == "" {
					return fmt.Errorf("repo %d, hook %d: local hooks require id, name, entry, language", i, j)
				}
			}
		case RepoMeta:
			for _, h := range repo.Hooks {
				if !MetaHookIDs[h.ID] {
					return fmt.Errorf("repo %d: unknown meta hook %s", i, h.ID)
				}
			}
		case RepoBuiltin:
			for _, h := range repo.Hooks {
				if !BuiltinHookIDs[h.ID] {
					return fmt.Errorf("repo %d: unknown builtin hook %s", i, h.ID)
				}
			}
		}
	}
	return nil
}
