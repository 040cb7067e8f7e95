// Package filter narrows a run's candidate file list, first to a project's
// scope (honoring orphan-project consumption), then to a single hook's
// scope (its own files/exclude plus tag filters).
//
// Built around pkg/config.FilePattern and pkg/tags.TagSet. Orphan-claim
// bookkeeping mirrors pkg/workspace's ConsumeOrphanFiles rule, but
// incrementally: that function partitions a whole batch at once, while the
// runner walks projects one at a time carrying a shared consumed-set.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/hookdef"
	"github.com/prek-go/prek/pkg/tags"
	"github.com/prek-go/prek/pkg/workspace"
)

// FilenameFilter is the include/exclude path predicate shared by projects
// and hooks.
type FilenameFilter struct {
	Files   config.FilePattern
	Exclude config.FilePattern
}

// Match reports whether path is kept by this filter.
func (f FilenameFilter) Match(path string) bool {
	if f.Files.IsSet() && !f.Files.Matches(path) {
		return false
	}
	if f.Exclude.IsSet() && f.Exclude.Matches(path) {
		return false
	}
	return true
}

// FileTagFilter is the tag-set predicate shared by projects and hooks.
type FileTagFilter struct {
	Types        tags.TagSet
	TypesOr      tags.TagSet
	ExcludeTypes tags.TagSet
}

// Match reports whether t satisfies this filter: all of Types ⊆ t, some tag
// of TypesOr ∈ t (when TypesOr is non-empty), and no tag of ExcludeTypes ∈ t.
func (f FileTagFilter) Match(t tags.TagSet) bool {
	if !f.Types.IsSubset(t) {
		return false
	}
	if !f.TypesOr.IsEmpty() && !f.TypesOr.Intersects(t) {
		return false
	}
	if f.ExcludeTypes.Intersects(t) {
		return false
	}
	return true
}

// ConsumedFiles is the shared claimed-file set the runner carries across
// projects in deep-first order.
type ConsumedFiles struct {
	set map[string]bool
}

// NewConsumedFiles returns an empty consumed-files tracker.
func NewConsumedFiles() *ConsumedFiles {
	return &ConsumedFiles{set: map[string]bool{}}
}

// FileFilter is a project's filtered scope, built once via ForProject and
// then narrowed per hook via ForHook.
type FileFilter struct {
	projectRelRoot string // project's RelativePath, workspace-root-relative, slash-separated ("" for the workspace root itself)
	absoluteRoot   string // project's filesystem root, for tag lookups
	scope          []string
}

// ForProject restricts candidates to paths under the project, applies
// orphan consumption, then the project's own files/exclude.
func ForProject(candidates []string, proj *workspace.Project, consumed *ConsumedFiles) FileFilter {
	root := filepath.ToSlash(proj.RelativePath)
	if root == "." {
		root = ""
	}

	var underProject []string
	for _, c := range candidates {
		if isUnderRoot(root, c) {
			underProject = append(underProject, c)
		}
	}

	var scoped []string
	for _, c := range underProject {
		if proj.Orphan {
			if consumed.set[c] {
				continue
			}
			consumed.set[c] = true
			scoped = append(scoped, c)
			continue
		}
		if consumed.set[c] {
			continue
		}
		scoped = append(scoped, c)
	}

	projFilter := FilenameFilter{}
	if proj.Config != nil {
		projFilter.Files, _ = config.CompileRegex(proj.Config.Files)
		projFilter.Exclude, _ = config.CompileRegex(proj.Config.Exclude)
	}

	filtered := scoped[:0:0]
	for _, c := range scoped {
		if projFilter.Match(c) {
			filtered = append(filtered, c)
		}
	}

	return FileFilter{projectRelRoot: root, absoluteRoot: proj.Root, scope: filtered}
}

// Scope returns the project-filtered candidate list (before any per-hook
// narrowing); meta hooks like check-hooks-apply need this view directly.
func (f FileFilter) Scope() []string {
	return f.scope
}

// ForHook narrows the project scope to a single hook's own files/exclude
// (applied to the path stripped of the project prefix) composed with
// FileTagFilter, tag lookup via tags.TagsFromPath.
func (f FileFilter) ForHook(h hookdef.Hook) []string {
	hookFilter := FilenameFilter{Files: h.Files, Exclude: h.Exclude}
	tagFilter := FileTagFilter{Types: h.Types, TypesOr: h.TypesOr, ExcludeTypes: h.ExcludeTypes}

	var out []string
	for _, rel := range f.scope {
		stripped := stripPrefix(f.projectRelRoot, rel)
		if !hookFilter.Match(stripped) {
			continue
		}
		abs := filepath.Join(f.absoluteRoot, stripped)
		t, err := tags.TagsFromPath(abs)
		if err != nil {
			continue // on an I/O error the file is dropped; the error is not reported
		}
		if !tagFilter.Match(t) {
			continue
		}
		out = append(out, rel)
	}
	return out
}

func isUnderRoot(root, path string) bool {
	if root == "" {
		return true
	}
	return path == root || strings.HasPrefix(path, root+"/")
}

func stripPrefix(root, path string) string {
	if root == "" {
		return path
	}
	return strings.TrimPrefix(strings.TrimPrefix(path, root), "/")
}
