// Package workspace discovers nested project configs under a git working
// tree, honoring .gitignore/.prekignore, skipping submodules and
// cookiecutter template directories, and caching the discovery. Ignore
// matching runs through go-git's gitignore package rather than hand-rolling
// the semantics.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/prek-go/prek/pkg/config"
)

// Project is a discovered, validated configuration file in the workspace.
type Project struct {
	ConfigPath   string
	Root         string
	RelativePath string
	Idx          int
	Config       *config.Config
	Warnings     *config.Warnings
	Orphan       bool
}

// Workspace is the ordered set of Projects discovered under a root.
type Workspace struct {
	Root         string
	Projects     []*Project
	AllProjects  []*Project
}

var cookiecutterDirRe = regexp.MustCompile(`\{\{.*cookiecutter.*\}\}`)

// Discover walks root, returning every directory that contains an accepted
// config file name as a Project, deepest first.
func Discover(root string) (*Workspace, error) {
	matcher, err := buildIgnoreMatcher(root)
	if err != nil {
		return nil, err
	}

	var found []*Project
	seenDirs := map[string]bool{}
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		segments := strings.Split(rel, string(os.PathSeparator))

		if info.IsDir() {
			name := info.Name()
			if name == ".git" || cookiecutterDirRe.MatchString(name) || isSubmodule(path) {
				return filepath.SkipDir
			}
			if matcher.Match(segments, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher.Match(segments, false) {
			return nil
		}
		if !isConfigFileName(info.Name()) {
			return nil
		}

		dir := filepath.Dir(path)
		if seenDirs[dir] {
			return nil
		}
		seenDirs[dir] = true
		proj, perr := loadProject(root, dir)
		if perr != nil {
			return fmt.Errorf("failed to load project at %s: %w", dir, perr)
		}
		found = append(found, proj)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortDeepestFirst(found)
	for i, p := range found {
		p.Idx = i
	}

	return &Workspace{Root: root, Projects: found, AllProjects: found}, nil
}

func isConfigFileName(name string) bool {
	for _, n := range config.ConfigFileNames {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}

// loadProject prefers .pre-commit-config.yaml over .yml.
func loadProject(root, dir string) (*Project, error) {
	var chosen string
	var alt string
	for _, name := range config.ConfigFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			if chosen == "" {
				chosen = p
			} else {
				alt = p
			}
		}
	}
	if chosen == "" {
		return nil, fmt.Errorf("no config file found in %s", dir)
	}

	cfg, warnings, err := config.Load(chosen)
	if err != nil {
		return nil, err
	}
	if warnings == nil {
		warnings = &config.Warnings{}
	}
	if alt != "" {
		warnings.Messages = append(warnings.Messages,
			fmt.Sprintf("both %s and its alternate exist in %s; using %s", filepath.Base(chosen), dir, filepath.Base(chosen)))
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return nil, err
	}

	return &Project{
		ConfigPath:   chosen,
		Root:         dir,
		RelativePath: rel,
		Config:       cfg,
		Warnings:     warnings,
		Orphan:       cfg.Orphan,
	}, nil
}

// sortDeepestFirst orders projects by descending path depth, ties broken by
// relative path.
func sortDeepestFirst(projects []*Project) {
	sort.Slice(projects, func(i, j int) bool {
		di := strings.Count(projects[i].RelativePath, string(os.PathSeparator))
		dj := strings.Count(projects[j].RelativePath, string(os.PathSeparator))
		if di != dj {
			return di > dj
		}
		return projects[i].RelativePath < projects[j].RelativePath
	})
}

func isSubmodule(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// buildIgnoreMatcher layers .prekignore excludes on top of .gitignore:
// .prekignore entries are additional excludes only, never overrides, so a
// path matched by .gitignore cannot be un-ignored by .prekignore.
func buildIgnoreMatcher(root string) (gitignore.Matcher, error) {
	var patterns []gitignore.Pattern

	gi, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore patterns: %w", err)
	}
	patterns = append(patterns, gi...)

	prekignorePath := filepath.Join(root, ".prekignore")
	if data, err := os.ReadFile(prekignorePath); err == nil { // #nosec G304 -- workspace root
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, nil))
		}
	}

	return gitignore.NewMatcher(patterns), nil
}
