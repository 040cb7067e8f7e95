package hookdef

import (
	"regexp"
	"strings"

	"github.com/prek-go/prek/pkg/config"
)

// ExtractMetadataFromEntry is a best-effort, non-fatal scan of a hook's
// entry string for inline language metadata.
// Failures are swallowed; the hook still runs on what was already built.
func ExtractMetadataFromEntry(h Hook) map[string]string {
	extra := map[string]string{}
	switch h.Language {
	case config.LangPython:
		if deps := pep723Dependencies(h.Entry); len(deps) > 0 {
			extra["pep723_dependencies"] = strings.Join(deps, ",")
		}
	case config.LangGo:
		if mod := goModReference(h.Entry); mod != "" {
			extra["go_mod"] = mod
		}
	}
	return extra
}

var pep723Re = regexp.MustCompile(`(?m)^#\s*dependencies\s*=\s*\[(.*)\]`)

// pep723Dependencies looks for a PEP 723 inline script metadata comment
// block's dependencies array embedded directly in the entry string (the
// common case for single-file local hooks).
func pep723Dependencies(entry string) []string {
	m := pep723Re.FindStringSubmatch(entry)
	if m == nil {
		return nil
	}
	var out []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// goModReference reports the directory an entry's "go run"/"go build"
// invocation targets, if any.
func goModReference(entry string) string {
	fields := strings.Fields(entry)
	for i, f := range fields {
		if (f == "run" || f == "build") && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}
