package config

// wellKnownRepos holds a conservative fallback rev for well-known
// repos that ship a .pre-commit-hooks.yaml but whose manifest this module
// cannot fetch at config-resolution time (offline doctor/lint paths). It is
// deliberately small: the store's resolver always prefers the configured
// rev, this table only backs advisory tooling.
var wellKnownRepos = map[string]string{
	"https://github.com/pre-commit/pre-commit-hooks":    "v4.6.0",
	"https://github.com/pre-commit/pygrep-hooks":        "v1.10.0",
	"https://github.com/pre-commit/mirrors-mypy":        "v1.10.0",
}

// WellKnownRev returns the advisory default revision for a well-known repo
// URL, and whether one is known.
func WellKnownRev(url string) (string, bool) {
	rev, ok := wellKnownRepos[url]
	return rev, ok
}
