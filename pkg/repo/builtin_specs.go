package repo

import "github.com/prek-go/prek/pkg/config"

func boolPtr(b bool) *bool { return &b }

// metaBaseSpecs are this module's built-in defaults for the closed set of
// meta hook ids. A Meta repo
// has no cloned manifest; these mirror the properties the upstream tool
// wires in for the same three ids.
var metaBaseSpecs = map[string]config.HookOptions{
	"check-hooks-apply": {
		ID:            "check-hooks-apply",
		Name:          "check hooks apply to the repository",
		Entry:         "check-hooks-apply",
		Language:      "system",
		AlwaysRun:     true,
		PassFilenames: boolPtr(false),
	},
	"check-useless-excludes": {
		ID:            "check-useless-excludes",
		Name:          "check useless exclude",
		Entry:         "check-useless-excludes",
		Language:      "system",
		AlwaysRun:     true,
		PassFilenames: boolPtr(false),
	},
	"identity": {
		ID:       "identity",
		Name:     "identity",
		Entry:    "identity",
		Language: "system",
		Verbose:  true,
	},
}

// builtinBaseSpecs are this module's built-in defaults for the fast-path
// hook ids.
var builtinBaseSpecs = map[string]config.HookOptions{
	"trailing-whitespace-fixer": {
		ID: "trailing-whitespace-fixer", Name: "trim trailing whitespace",
		Entry: "trailing-whitespace-fixer", Language: "system", Types: []string{"text"},
	},
	"end-of-file-fixer": {
		ID: "end-of-file-fixer", Name: "fix end of files",
		Entry: "end-of-file-fixer", Language: "system", Types: []string{"text"},
	},
	"check-added-large-files": {
		ID: "check-added-large-files", Name: "check for added large files",
		Entry: "check-added-large-files", Language: "system",
	},
	"check-yaml": {
		ID: "check-yaml", Name: "check yaml",
		Entry: "check-yaml", Language: "system", Types: []string{"yaml"},
	},
	"check-json": {
		ID: "check-json", Name: "check json",
		Entry: "check-json", Language: "system", Types: []string{"json"},
	},
	"mixed-line-ending": {
		ID: "mixed-line-ending", Name: "mixed line ending",
		Entry: "mixed-line-ending", Language: "system", Types: []string{"text"},
	},
}
