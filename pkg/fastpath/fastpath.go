// Package fastpath implements the "Fast-path hook" dispatch: the closed
// Meta and Builtin hook id sets bypass pkg/language's adapter registry
// entirely and run in-process.
//
// identity is a pass-through debugging hook. trailing-whitespace-fixer and
// end-of-file-fixer rewrite files directly rather than shelling out. Every
// other Builtin id resolves Unimplemented.
package fastpath

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/filter"
	"github.com/prek-go/prek/pkg/hookdef"
)

// Request bundles a fast-path hook invocation.
type Request struct {
	Hook          hookdef.Hook
	Filenames     []string // hook-filtered, project-relative
	ProjectFilter filter.FileFilter
	AllHooks      []hookdef.Hook
	WorkspaceRoot string
}

// Result mirrors the subset of pkg/language.RunResult a fast-path hook can
// produce: no stdin/stdout streaming, just a final status.
type Result struct {
	ExitCode      int
	Output        []byte
	ModifiedFiles []string
	Unimplemented bool
}

// Dispatchable reports whether hooks of the given repo kind are handled
// in-process rather than by pkg/language.
func Dispatchable(kind config.RepoKind) bool {
	return kind == config.RepoMeta || kind == config.RepoBuiltin
}

// Run executes a meta/builtin hook in-process.
func Run(req Request) (Result, error) {
	switch req.Hook.ID {
	case "check-hooks-apply":
		return checkHooksApply(req), nil
	case "check-useless-excludes":
		return checkUselessExcludes(req), nil
	case "identity":
		return identity(req), nil
	case "trailing-whitespace-fixer":
		return fixLines(req, stripTrailingWhitespace, "Fixing trailing whitespace in:")
	case "end-of-file-fixer":
		return fixLines(req, normalizeTrailingNewline, "Fixing end of files in:")
	default:
		return Result{Unimplemented: true}, nil
	}
}

// checkHooksApply flags hooks whose files/types predicate can never match
// any file in the project's scope, unless the hook is always_run.
func checkHooksApply(req Request) Result {
	var useless []string
	for _, h := range req.AllHooks {
		if Dispatchable(h.RepoKind) || h.AlwaysRun {
			continue
		}
		if len(req.ProjectFilter.ForHook(h)) == 0 {
			useless = append(useless, h.ID)
		}
	}
	if len(useless) == 0 {
		return Result{ExitCode: 0, Output: []byte("All hooks apply to the repository\n")}
	}
	msg := fmt.Sprintf("The following hooks do not apply to this repository: %s\n", strings.Join(useless, ", "))
	return Result{ExitCode: 1, Output: []byte(msg)}
}

// checkUselessExcludes flags an exclude pattern that, once applied, removes
// no file from what files/types alone would have matched.
func checkUselessExcludes(req Request) Result {
	emptyPattern, _ := config.CompileRegex("")

	var useless []string
	for _, h := range req.AllHooks {
		if Dispatchable(h.RepoKind) || !h.Exclude.IsSet() {
			continue
		}
		withExclude := req.ProjectFilter.ForHook(h)

		noExclude := h
		noExclude.Exclude = emptyPattern
		withoutExclude := req.ProjectFilter.ForHook(noExclude)

		if len(withExclude) == len(withoutExclude) {
			useless = append(useless, h.ID)
		}
	}
	if len(useless) == 0 {
		return Result{ExitCode: 0, Output: []byte("No useless excludes\n")}
	}
	msg := fmt.Sprintf("The following hooks have excludes that do not exclude anything: %s\n", strings.Join(useless, ", "))
	return Result{ExitCode: 1, Output: []byte(msg)}
}

// identity prints the filenames it would receive, for doctor-style debugging.
func identity(req Request) Result {
	var buf bytes.Buffer
	for _, f := range req.Filenames {
		buf.WriteString(f)
		buf.WriteByte('\n')
	}
	return Result{ExitCode: 0, Output: buf.Bytes()}
}

// fixLines applies fix to each file's bytes and reports the files it
// rewrote. Exit code follows the fixer convention: 1 whenever a file was
// modified, 0 otherwise.
func fixLines(req Request, fix func([]byte) []byte, header string) (Result, error) {
	var modified []string
	for _, rel := range req.Filenames {
		abs := filepath.Join(req.WorkspaceRoot, rel)
		data, err := os.ReadFile(abs)
		if err != nil {
			continue
		}
		fixed := fix(data)
		if bytes.Equal(fixed, data) {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			return Result{}, fmt.Errorf("fastpath: stat %s: %w", rel, err)
		}
		if err := os.WriteFile(abs, fixed, info.Mode().Perm()); err != nil {
			return Result{}, fmt.Errorf("fastpath: write %s: %w", rel, err)
		}
		modified = append(modified, rel)
	}
	if len(modified) == 0 {
		return Result{ExitCode: 0}, nil
	}
	out := header + "\n" + strings.Join(modified, "\n") + "\n"
	return Result{ExitCode: 1, Output: []byte(out), ModifiedFiles: modified}, nil
}

// stripTrailingWhitespace trims trailing spaces/tabs/CR from every physical
// line, leaving the file's newline count untouched.
func stripTrailingWhitespace(data []byte) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, " \t\r")
	}
	return bytes.Join(lines, []byte("\n"))
}

// normalizeTrailingNewline collapses any run of trailing newlines to exactly
// one, and adds one if the file doesn't end in a newline at all. Empty files
// are left untouched.
func normalizeTrailingNewline(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	trimmed := bytes.TrimRight(data, "\n")
	if len(trimmed) == 0 {
		return []byte("\n")
	}
	return append(trimmed, '\n')
}
