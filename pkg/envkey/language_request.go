package envkey

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// RequestKind tags the LanguageRequest variant.
type RequestKind int

const (
	RequestDefault RequestKind = iota
	RequestSystem
	RequestShorthand // e.g. "python3.12"
	RequestExact     // e.g. "3.12.1" or "3.12"
	RequestRange     // e.g. ">=3.10,<3.13"
	RequestPath      // absolute path to an interpreter/toolchain
)

// LanguageRequest is the parsed form of a hook's language_version field.
// Parsing is intentionally language-agnostic: the
// union (default/system/shorthand/exact/range/path) covers Python, Node,
// Go, Ruby, and Rust's request grammars, which differ only in the
// shorthand prefix (python3.12 vs node vs go vs ruby).
type LanguageRequest struct {
	Kind     RequestKind
	raw      string
	version  *goversion.Version
	rangeC   goversion.Constraints
}

var shorthandRe = regexp.MustCompile(`^[a-zA-Z]+(\d+(\.\d+)?)$`)

// ParseLanguageRequest parses a language_version string in the context of
// languageName (used only to recognize that language's shorthand prefix,
// e.g. "python" for "python3.12").
func ParseLanguageRequest(languageName, raw string) (LanguageRequest, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "default":
		return LanguageRequest{Kind: RequestDefault, raw: "default"}, nil
	case "system":
		return LanguageRequest{Kind: RequestSystem, raw: "system"}, nil
	}

	if filepath.IsAbs(raw) {
		return LanguageRequest{Kind: RequestPath, raw: raw}, nil
	}

	if m := shorthandRe.FindStringSubmatch(raw); m != nil && strings.HasPrefix(raw, languageName) {
		return LanguageRequest{Kind: RequestShorthand, raw: raw}, nil
	}

	if looksLikeRange(raw) {
		c, err := goversion.NewConstraint(raw)
		if err != nil {
			return LanguageRequest{}, fmt.Errorf("invalid language_version range %q: %w", raw, err)
		}
		return LanguageRequest{Kind: RequestRange, raw: raw, rangeC: c}, nil
	}

	v, err := goversion.NewVersion(raw)
	if err != nil {
		return LanguageRequest{}, fmt.Errorf("invalid language_version %q: %w", raw, err)
	}
	return LanguageRequest{Kind: RequestExact, raw: raw, version: v}, nil
}

func looksLikeRange(raw string) bool {
	return strings.ContainsAny(raw, "<>~^,") || strings.Contains(raw, "||")
}

// String returns the original request text, stable for use as a map key
// component (envkey.Key.Equal compares requests by this string).
func (r LanguageRequest) String() string {
	return r.raw
}

// SatisfiedBy reports whether an installed environment's recorded version
// (semver string, possibly empty for system/default) satisfies this
// request.
func (r LanguageRequest) SatisfiedBy(installedVersion string) bool {
	switch r.Kind {
	case RequestDefault, RequestSystem, RequestShorthand, RequestPath:
		// These requests don't pin an exact toolchain version; any
		// previously installed environment under the same key is reused.
		return true
	case RequestExact:
		iv, err := goversion.NewVersion(installedVersion)
		if err != nil {
			return false
		}
		return iv.Equal(r.version) || iv.Core().Equal(r.version.Core())
	case RequestRange:
		iv, err := goversion.NewVersion(installedVersion)
		if err != nil {
			return false
		}
		return r.rangeC.Check(iv)
	default:
		return false
	}
}
