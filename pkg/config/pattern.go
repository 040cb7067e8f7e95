package config

import (
	"fmt"
	"regexp"

	"github.com/dlclark/regexp2"
	"github.com/gobwas/glob"
)

// FilePattern is a tagged union: either a compiled regex or a compiled glob
// set, exposing a single Matches(path) operation. An RE2-incompatible
// pattern (lookaround, backreferences) falls back to regexp2 so
// lookaround-using community hook manifests still compile instead of
// erroring out at config load.
type FilePattern struct {
	re       *regexp.Regexp
	re2      *regexp2.Regexp
	globs    []glob.Glob
	source   string
	isGlob   bool
	isEmpty  bool
}

// CompileRegex compiles a single regex pattern, falling back to regexp2 (a
// backtracking engine with lookaround support) when Go's RE2 engine cannot
// parse it.
func CompileRegex(pattern string) (FilePattern, error) {
	if pattern == "" {
		return FilePattern{isEmpty: true}, nil
	}
	if re, err := regexp.Compile(pattern); err == nil {
		return FilePattern{re: re, source: pattern}, nil
	}
	re2, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return FilePattern{}, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}
	return FilePattern{re2: re2, source: pattern}, nil
}

// CompileGlobs compiles a list of glob patterns into one FilePattern; a path
// matches if it matches any of the globs (a "glob set").
func CompileGlobs(patterns []string) (FilePattern, error) {
	if len(patterns) == 0 {
		return FilePattern{isEmpty: true}, nil
	}
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return FilePattern{}, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return FilePattern{globs: globs, isGlob: true, source: fmt.Sprintf("%v", patterns)}, nil
}

// Matches reports whether path satisfies the pattern. An empty/unset
// pattern always matches.
func (p FilePattern) Matches(path string) bool {
	if p.isEmpty {
		return true
	}
	if p.isGlob {
		for _, g := range p.globs {
			if g.Match(path) {
				return true
			}
		}
		return false
	}
	if p.re != nil {
		return p.re.MatchString(path)
	}
	if p.re2 != nil {
		ok, _ := p.re2.MatchString(path)
		return ok
	}
	return true
}

// IsSet reports whether the pattern was actually configured (as opposed to
// defaulting to "match everything").
func (p FilePattern) IsSet() bool {
	return !p.isEmpty
}

// String returns the pattern's original source text, for reporting.
func (p FilePattern) String() string {
	return p.source
}
