// Package filecollect decides the candidate file set for a run from the
// invocation stage and flags.
//
// Every listing shells out to the git binary: the diff-filter and
// NUL-delimited listing flags these paths need aren't expressible through
// go-git's plumbing (no `--diff-filter` or NUL-delimited `ls-files`).
// OpenRepo is the only go-git entry point here.
package filecollect

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/prek-go/prek/pkg/config"
)

// Request bundles the dispatch inputs for Collect.
type Request struct {
	WorkspaceRoot string
	GitRoot       string
	Stage         config.Stage
	FromRef       string
	ToRef         string
	Files         []string
	Directories   []string
	AllFiles      bool
	CommitMsgFile string
}

// Result is the collected candidate file set plus any non-fatal diagnostics
// (e.g. explicit paths that don't exist).
type Result struct {
	Files    []string // relative to WorkspaceRoot, paths outside it dropped
	Warnings []string
}

// Collect dispatches on the request's stage and flags to produce the
// candidate file list.
func Collect(ctx context.Context, req Request) (Result, error) {
	if !req.Stage.OperatesOnFiles() {
		return Result{}, nil
	}

	if req.Stage == config.StagePrepareCommitMsg || req.Stage == config.StageCommitMsg {
		rel, err := relativize(req.GitRoot, req.WorkspaceRoot, req.CommitMsgFile)
		if err != nil {
			return Result{}, nil
		}
		return Result{Files: []string{rel}}, nil
	}

	if req.FromRef != "" && req.ToRef != "" {
		return refRangeDiff(ctx, req)
	}

	if len(req.Files) > 0 || len(req.Directories) > 0 {
		return explicitFiles(ctx, req)
	}

	if req.AllFiles {
		return allFiles(ctx, req)
	}

	if unmerged, ok := unmergedFiles(req.GitRoot); ok {
		return finishResult(req, unmerged, nil), nil
	}

	return stagedFiles(ctx, req)
}

// refRangeDiff implements step 3: `<from>...<to>` (merge-base diff) first,
// falling back to `<from>..<to>` (direct diff) on failure.
func refRangeDiff(ctx context.Context, req Request) (Result, error) {
	out, err := runGitZ(ctx, req.GitRoot, "diff", "--name-only", "--diff-filter=ACMRT", "--no-ext-diff", "-z",
		fmt.Sprintf("%s...%s", req.FromRef, req.ToRef))
	if err != nil {
		out, err = runGitZ(ctx, req.GitRoot, "diff", "--name-only", "--diff-filter=ACMRT", "--no-ext-diff", "-z",
			fmt.Sprintf("%s..%s", req.FromRef, req.ToRef))
		if err != nil {
			return Result{}, fmt.Errorf("failed to diff %s against %s: %w", req.FromRef, req.ToRef, err)
		}
	}
	return finishResult(req, out, nil), nil
}

// explicitFiles implements step 4: partition explicit files/directories by
// existence, warn on missing ones, and union in each directory's tracked
// files via `git ls-files`.
func explicitFiles(ctx context.Context, req Request) (Result, error) {
	var candidates []string
	var warnings []string

	for _, f := range req.Files {
		abs := f
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(req.WorkspaceRoot, f)
		}
		if _, err := os.Stat(abs); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s does not exist", f))
			continue
		}
		rel, err := filepath.Rel(req.GitRoot, abs)
		if err != nil {
			rel = f
		}
		candidates = append(candidates, rel)
	}

	for _, d := range req.Directories {
		abs := d
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(req.WorkspaceRoot, d)
		}
		if _, err := os.Stat(abs); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s does not exist", d))
			continue
		}
		relDir, err := filepath.Rel(req.GitRoot, abs)
		if err != nil {
			relDir = d
		}
		out, err := runGitZ(ctx, req.GitRoot, "ls-files", "-z", "--", relDir)
		if err != nil {
			return Result{}, fmt.Errorf("failed to list files under %s: %w", d, err)
		}
		candidates = append(candidates, out...)
	}

	return finishResult(req, candidates, warnings), nil
}

// allFiles implements step 5: every tracked file under workspace_root.
func allFiles(ctx context.Context, req Request) (Result, error) {
	out, err := runGitZ(ctx, req.GitRoot, "ls-files", "-z", "--", relativeDirArg(req))
	if err != nil {
		return Result{}, fmt.Errorf("failed to list all files: %w", err)
	}
	return finishResult(req, out, nil), nil
}

func relativeDirArg(req Request) string {
	rel, err := filepath.Rel(req.GitRoot, req.WorkspaceRoot)
	if err != nil || rel == "." {
		return "."
	}
	return rel
}

// unmergedFiles implements step 6: when both MERGE_HEAD and MERGE_MSG exist,
// union `git diff -m <write-tree> HEAD MERGE_HEAD` with the `#?\t`-prefixed
// paths recorded in MERGE_MSG (pre-commit's "Conflicts:" section).
func unmergedFiles(gitRoot string) ([]string, bool) {
	mergeHead := filepath.Join(gitRoot, ".git", "MERGE_HEAD")
	mergeMsg := filepath.Join(gitRoot, ".git", "MERGE_MSG")
	if _, err := os.Stat(mergeHead); err != nil {
		return nil, false
	}
	msgData, err := os.ReadFile(mergeMsg) // #nosec G304 -- fixed git-internal path
	if err != nil {
		return nil, false
	}

	ctx := context.Background()
	treeOut, err := exec.CommandContext(ctx, "git", "-C", gitRoot, "write-tree").Output() //nolint:gosec // fixed argv, no user input
	if err != nil {
		return nil, false
	}
	tree := strings.TrimSpace(string(treeOut))

	diffOut, err := runGitZ(ctx, gitRoot, "diff", "-m", "--name-only", "-z", tree, "HEAD", "MERGE_HEAD")
	if err != nil {
		return nil, false
	}

	set := map[string]bool{}
	for _, f := range diffOut {
		set[f] = true
	}
	for _, line := range strings.Split(string(msgData), "\n") {
		if strings.HasPrefix(line, "#?\t") {
			set[strings.TrimPrefix(line, "#?\t")] = true
		}
	}
	var files []string
	for f := range set {
		files = append(files, f)
	}
	return files, true
}

// stagedFiles implements step 7: the default, staged-files path.
func stagedFiles(ctx context.Context, req Request) (Result, error) {
	out, err := runGitZ(ctx, req.GitRoot, "diff", "--cached", "--name-only", "--diff-filter=ACMRTUXB", "-z")
	if err != nil {
		return Result{}, fmt.Errorf("failed to list staged files: %w", err)
	}
	return finishResult(req, out, nil), nil
}

// finishResult relativizes every path to WorkspaceRoot and drops anything
// outside it.
func finishResult(req Request, gitRootRelativePaths []string, warnings []string) Result {
	res := Result{Warnings: warnings}
	rootRel, err := filepath.Rel(req.GitRoot, req.WorkspaceRoot)
	if err != nil {
		rootRel = "."
	}
	for _, p := range gitRootRelativePaths {
		p = filepath.ToSlash(p)
		if rootRel == "." {
			res.Files = append(res.Files, p)
			continue
		}
		prefix := filepath.ToSlash(rootRel) + "/"
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		res.Files = append(res.Files, strings.TrimPrefix(p, prefix))
	}
	return res
}

func relativize(gitRoot, workspaceRoot, path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(gitRoot, path)
	}
	rel, err := filepath.Rel(workspaceRoot, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// runGitZ runs a NUL-delimited git subcommand and splits the output.
func runGitZ(ctx context.Context, dir string, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...) //nolint:gosec // fixed subcommand, config-controlled refs
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %s", err, stderr.String())
	}
	trimmed := bytes.Trim(out.Bytes(), "\x00")
	if len(trimmed) == 0 {
		return nil, nil
	}
	parts := bytes.Split(trimmed, []byte{0})
	files := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) > 0 {
			files = append(files, string(p))
		}
	}
	return files, nil
}

// OpenRepo is a thin go-git wrapper kept for callers (pkg/runner's prev_diff
// snapshotting) that need a *git.Repository handle rather than a shelled-out
// git invocation.
func OpenRepo(gitRoot string) (*git.Repository, error) {
	return git.PlainOpen(gitRoot)
}
