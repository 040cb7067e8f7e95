// Package envkey implements the deterministic environment-sharing
// fingerprint that decides which hooks can share an installed environment.
package envkey

import (
	"sort"
	"strings"
)

// Key is the deterministic fingerprint used to decide whether two hooks may
// share an installed environment.
type Key struct {
	Language     string
	Request      LanguageRequest
	Dependencies []string // env_key_dependencies, see Build
}

// Build assembles a Key for a hook: additional_dependencies plus, for
// remote hooks, the owning repo's "<url>@<rev>" identity.
func Build(language string, request LanguageRequest, additionalDeps []string, repoIdentity string, isRemote bool) Key {
	deps := make([]string, 0, len(additionalDeps)+1)
	deps = append(deps, additionalDeps...)
	if isRemote && repoIdentity != "" {
		deps = append(deps, repoIdentity)
	}
	sort.Strings(deps)
	return Key{Language: language, Request: request, Dependencies: deps}
}

// Equal reports whether two keys are identical: equal language, equal
// language request text, and equal dependency sets (order-independent).
func (k Key) Equal(other Key) bool {
	if k.Language != other.Language {
		return false
	}
	if k.Request.String() != other.Request.String() {
		return false
	}
	return sameDependencySet(k.Dependencies, other.Dependencies)
}

func sameDependencySet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// DependencyFingerprint returns a stable, order-independent string for the
// dependency set; used to partition hooks into install groups.
func (k Key) DependencyFingerprint() string {
	deps := append([]string(nil), k.Dependencies...)
	sort.Strings(deps)
	return strings.Join(deps, "\x00")
}

// Matches reports whether InstallInfo (language, dependencies, recorded
// version) satisfies this key: languages must agree, the dependency sets
// must match exactly, and the recorded version must satisfy the language
// request.
func (k Key) Matches(infoLanguage string, infoDependencies []string, infoVersion string) bool {
	if k.Language != infoLanguage {
		return false
	}
	if !sameDependencySet(k.Dependencies, infoDependencies) {
		return false
	}
	return k.Request.SatisfiedBy(infoVersion)
}
