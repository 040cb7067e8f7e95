package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindGitRoot walks up from start looking for a .git directory or worktree
// file.
func FindGitRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return dir, nil
			}
			if data, err := os.ReadFile(gitPath); err == nil && len(data) > 0 { // #nosec G304 -- fixed ".git" filename
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no git repository found above %s", start)
		}
		dir = parent
	}
}

// ResolveRoot returns the git root in --config mode, else the first
// ancestor of cwd (within the git root) containing a config file.
func ResolveRoot(cwd string, explicitConfig bool) (string, error) {
	gitRoot, err := FindGitRoot(cwd)
	if err != nil {
		return "", err
	}
	if explicitConfig {
		return gitRoot, nil
	}

	dir, err := filepath.Abs(cwd)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range []string{".pre-commit-config.yaml", ".pre-commit-config.yml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		if dir == gitRoot {
			return gitRoot, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return gitRoot, nil
		}
		dir = parent
	}
}

// ConsumeOrphanFiles partitions files among projects in deep-first order:
// an orphan project atomically claims every file under its root, making
// those files invisible to ancestor (shallower) projects.
func ConsumeOrphanFiles(projects []*Project, files []string) map[*Project][]string {
	remaining := make([]string, len(files))
	copy(remaining, files)

	claimed := make(map[*Project][]string, len(projects))
	for _, p := range projects {
		if !p.Orphan {
			continue
		}
		var kept []string
		for _, f := range remaining {
			if underRoot(p.Root, f) {
				claimed[p] = append(claimed[p], f)
			} else {
				kept = append(kept, f)
			}
		}
		remaining = kept
	}

	for _, p := range projects {
		if p.Orphan {
			continue
		}
		var mine []string
		for _, f := range remaining {
			if underRoot(p.Root, f) {
				mine = append(mine, f)
			}
		}
		claimed[p] = append(claimed[p], mine...)
	}

	return claimed
}

func underRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (len(rel) > 0 && rel[0] != '.' && !filepath.IsAbs(rel))
}
