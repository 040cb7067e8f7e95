package runner

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/fastpath"
	"github.com/prek-go/prek/pkg/filecollect"
	"github.com/prek-go/prek/pkg/filter"
	"github.com/prek-go/prek/pkg/hookdef"
	"github.com/prek-go/prek/pkg/language"
	"github.com/prek-go/prek/pkg/store"
	"github.com/prek-go/prek/pkg/workspace"
)

// shuffleSeed is fixed so pass_filenames batches load-balance across
// concurrent invocations without changing file order across runs.
const shuffleSeed = 0x70726b67 // "prkg"

// Reporter renders progress as the run proceeds; pkg/reporting implements
// this against lipgloss/fatih-color.
type Reporter interface {
	HookStart(projectRoot string, h hookdef.Hook)
	HookDone(projectRoot string, result HookResult)
	GroupModified(projectRoot string, group []hookdef.Hook)
	Unimplemented(h hookdef.Hook)
}

// HookResult is one hook's outcome within a priority group.
type HookResult struct {
	Hook     hookdef.Hook
	Status   language.Status
	ExitCode int
	Output   []byte
	Duration time.Duration
}

// OK reports whether this result counts toward aggregate success.
func (r HookResult) OK() bool {
	switch r.Status {
	case language.StatusSuccess, language.StatusNoFiles, language.StatusDryRun, language.StatusUnimplemented:
		return true
	default:
		return false
	}
}

// GroupResult is one priority group's outcome within a project.
type GroupResult struct {
	Priority      int
	Results       []HookResult // sorted by declaration index for display
	FilesModified bool
}

// ProjectResult is one project's outcome.
type ProjectResult struct {
	Project           *workspace.Project
	Groups            []GroupResult
	FailFastTriggered bool
}

// Summary is the whole run's outcome.
type Summary struct {
	Projects []ProjectResult
}

// OK reports whether every project's every group succeeded and no group
// modified files.
func (s Summary) OK() bool {
	for _, p := range s.Projects {
		for _, g := range p.Groups {
			if g.FilesModified {
				return false
			}
			for _, res := range g.Results {
				if !res.OK() {
					return false
				}
			}
		}
	}
	return true
}

// InstallKey identifies a built hook's installed environment, independent
// of pkg/installer.Report's slice ordering.
type InstallKey struct {
	ProjectRoot string
	RepoURL     string
	ID          string
	Idx         int
}

// KeyFor derives a hook's InstallKey.
func KeyFor(h hookdef.Hook) InstallKey {
	return InstallKey{ProjectRoot: h.ProjectRoot, RepoURL: h.RepoURL, ID: h.ID, Idx: h.Idx}
}

// ProjectHooks pairs a project with its already-built hooks, in the order
// pkg/workspace.Discover produced (deep-first).
type ProjectHooks struct {
	Project *workspace.Project
	Hooks   []hookdef.Hook
}

// Options configures a run.
type Options struct {
	Stage          config.Stage
	GitRoot        string // enclosing git working-tree root, for diff snapshots
	RelativeRoot   string // workspace root relative to GitRoot, slash-separated, "" if equal
	WorkspaceRoot  string
	Candidates     []string // project-relative? no: workspace-root-relative, slash-separated
	DryRun         bool
	GlobalFailFast bool // --fail-fast
	InstalledHooks map[InstallKey]store.InstallInfo
	CloneDirs      map[InstallKey]string // remote hooks' resolved clone dir, empty otherwise
}

// Runner executes priority groups across a workspace's projects.
type Runner struct {
	Store       *store.Store
	Registry    *language.Registry
	Reporter    Reporter
	Concurrency int
}

// New builds a Runner. concurrency below 1 is clamped to 1.
func New(s *store.Store, registry *language.Registry, reporter Reporter, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{Store: s, Registry: registry, Reporter: reporter, Concurrency: concurrency}
}

// Run executes every project's hooks in the given (already deep-first)
// order, stopping early on a fail_fast trigger.
func (r *Runner) Run(ctx context.Context, projects []ProjectHooks, opts Options) (Summary, error) {
	consumed := filter.NewConsumedFiles()

	var repo *git.Repository
	if opts.GitRoot != "" {
		if rp, err := filecollect.OpenRepo(opts.GitRoot); err == nil {
			repo = rp
		}
	}

	var summary Summary
	for _, ph := range projects {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		pr, err := r.runProject(ctx, ph, opts, consumed, repo)
		if err != nil {
			return summary, err
		}
		summary.Projects = append(summary.Projects, pr)
		if pr.FailFastTriggered {
			break
		}
	}
	return summary, nil
}

func (r *Runner) runProject(ctx context.Context, ph ProjectHooks, opts Options, consumed *filter.ConsumedFiles, repo *git.Repository) (ProjectResult, error) {
	ff := filter.ForProject(opts.Candidates, ph.Project, consumed)

	selected := make([]hookdef.Hook, 0, len(ph.Hooks))
	for _, h := range ph.Hooks {
		if h.RunsOnStage(opts.Stage) {
			selected = append(selected, h)
		}
	}

	pr := ProjectResult{Project: ph.Project}
	prefix := projectGitPrefix(opts, ph.Project)
	prevStatus := snapshotStatus(repo)

	for _, group := range groupByPriority(selected) {
		gr, err := r.runGroup(ctx, group, ff, selected, opts)
		if err != nil {
			return pr, err
		}

		curStatus := snapshotStatus(repo)
		gr.FilesModified = groupRan(gr.Results) && statusChanged(prevStatus, curStatus, prefix)
		prevStatus = curStatus

		if r.Reporter != nil {
			if gr.FilesModified {
				r.Reporter.GroupModified(ph.Project.Root, group)
			}
			for _, res := range gr.Results {
				r.Reporter.HookDone(ph.Project.Root, res)
			}
		}

		pr.Groups = append(pr.Groups, gr)

		hookFailFast := false
		anyFailed := gr.FilesModified && len(group) == 1
		for _, res := range gr.Results {
			if !res.OK() {
				anyFailed = true
				if res.Hook.FailFast {
					hookFailFast = true
				}
			}
		}
		projectFailFast := ph.Project.Config != nil && ph.Project.Config.FailFast && anyFailed
		if hookFailFast || projectFailFast || (opts.GlobalFailFast && anyFailed) {
			pr.FailFastTriggered = true
			break
		}
	}
	return pr, nil
}

// groupByPriority sorts hooks by (priority asc, idx asc) and chunks them
// into maximal runs of equal priority.
func groupByPriority(hooks []hookdef.Hook) [][]hookdef.Hook {
	sorted := make([]hookdef.Hook, len(hooks))
	copy(sorted, hooks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Idx < sorted[j].Idx
	})

	var groups [][]hookdef.Hook
	for _, h := range sorted {
		if n := len(groups); n > 0 && groups[n-1][0].Priority == h.Priority {
			groups[n-1] = append(groups[n-1], h)
		} else {
			groups = append(groups, []hookdef.Hook{h})
		}
	}
	return groups
}

// runGroup runs one priority group with a CONCURRENCY-sized bounded worker
// pool; execution order within the group is unspecified, but results are
// sorted by declaration index before returning.
func (r *Runner) runGroup(ctx context.Context, group []hookdef.Hook, ff filter.FileFilter, allHooks []hookdef.Hook, opts Options) (GroupResult, error) {
	results := make([]HookResult, len(group))
	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup

	for i, h := range group {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, h hookdef.Hook) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.runHook(ctx, h, ff, allHooks, opts)
		}(i, h)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Hook.Idx < results[j].Hook.Idx })

	priority := 0
	if len(group) > 0 {
		priority = group[0].Priority
	}
	return GroupResult{Priority: priority, Results: results}, nil
}

// runHook filters candidates to this hook's scope, skips when nothing
// applies and the hook isn't always_run, dispatches to the fast path or a
// language adapter, and reports the file-modification delta.
func (r *Runner) runHook(ctx context.Context, h hookdef.Hook, ff filter.FileFilter, allHooks []hookdef.Hook, opts Options) HookResult {
	start := time.Now()
	if r.Reporter != nil {
		r.Reporter.HookStart(h.ProjectRoot, h)
	}

	filtered := ff.ForHook(h)
	if len(filtered) == 0 && !h.AlwaysRun {
		return HookResult{Hook: h, Status: language.StatusNoFiles, Duration: time.Since(start)}
	}

	if fastpath.Dispatchable(h.RepoKind) {
		return r.runFastPath(h, filtered, ff, allHooks, opts, start)
	}

	if h.PassFilenames {
		filtered = shuffleDeterministic(filtered)
	}

	if opts.DryRun {
		out := fmt.Sprintf("would run on %d files\n", len(filtered))
		return HookResult{Hook: h, Status: language.StatusDryRun, Output: []byte(out), Duration: time.Since(start)}
	}

	adapter := r.Registry.Get(string(h.Language))

	var names []string
	if h.PassFilenames {
		names = filtered
	}
	batches, err := Partition(h.Entry, h.Args, names, r.Concurrency, isBatchLaunched(h))
	if err != nil {
		return HookResult{Hook: h, Status: language.StatusFailed, Output: []byte(err.Error()), Duration: time.Since(start)}
	}
	if len(batches) == 0 {
		batches = [][]string{nil}
	}

	key := KeyFor(h)
	installed := language.InstalledHook{
		HookID:         h.ID,
		Entry:          h.Entry,
		Args:           h.Args,
		Env:            h.Env,
		AdditionalDeps: h.AdditionalDependencies,
		RepoCloneDir:   opts.CloneDirs[key],
		Info:           opts.InstalledHooks[key],
	}

	var combined bytes.Buffer
	status := language.StatusSuccess
	exitCode := 0
	unimplemented := false
	for _, batch := range batches {
		res, runErr := adapter.Run(ctx, installed, batch, r.Store)
		if runErr != nil {
			combined.WriteString(runErr.Error())
			status = language.StatusFailed
			exitCode = 1
			continue
		}
		combined.Write(res.Output)
		if res.Status == language.StatusUnimplemented {
			unimplemented = true
			continue
		}
		if res.ExitCode != 0 {
			exitCode = res.ExitCode
			status = language.StatusFailed
		}
	}

	if unimplemented {
		if r.Reporter != nil {
			r.Reporter.Unimplemented(h)
		}
		return HookResult{Hook: h, Status: language.StatusUnimplemented, Duration: time.Since(start)}
	}

	return HookResult{Hook: h, Status: status, ExitCode: exitCode, Output: combined.Bytes(), Duration: time.Since(start)}
}

func (r *Runner) runFastPath(h hookdef.Hook, filtered []string, ff filter.FileFilter, allHooks []hookdef.Hook, opts Options, start time.Time) HookResult {
	res, err := fastpath.Run(fastpath.Request{
		Hook:          h,
		Filenames:     filtered,
		ProjectFilter: ff,
		AllHooks:      allHooks,
		WorkspaceRoot: opts.WorkspaceRoot,
	})
	if err != nil {
		return HookResult{Hook: h, Status: language.StatusFailed, Output: []byte(err.Error()), Duration: time.Since(start)}
	}
	if res.Unimplemented {
		if r.Reporter != nil {
			r.Reporter.Unimplemented(h)
		}
		return HookResult{Hook: h, Status: language.StatusUnimplemented, Duration: time.Since(start)}
	}
	status := language.StatusSuccess
	if res.ExitCode != 0 {
		status = language.StatusFailed
	}
	return HookResult{Hook: h, Status: status, ExitCode: res.ExitCode, Output: res.Output, Duration: time.Since(start)}
}

// shuffleDeterministic reorders files with a fixed seed so pass_filenames
// batches load-balance without changing order across runs.
func shuffleDeterministic(files []string) []string {
	out := make([]string, len(files))
	copy(out, files)
	rnd := rand.New(rand.NewSource(shuffleSeed))
	rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// isBatchLaunched reports whether entry is dispatched through a batch-file
// interpreter (cmd.exe /c), which gets the reduced Windows argv budget.
func isBatchLaunched(h hookdef.Hook) bool {
	e := strings.ToLower(h.Entry)
	return strings.HasSuffix(e, ".bat") || strings.HasSuffix(e, ".cmd")
}

// groupRan reports whether the group actually executed at least one hook
// (as opposed to every result being a skip): only Success/Failed hooks can
// have touched the worktree.
func groupRan(results []HookResult) bool {
	for _, res := range results {
		if res.Status == language.StatusSuccess || res.Status == language.StatusFailed {
			return true
		}
	}
	return false
}

// projectGitPrefix is the project's root expressed relative to GitRoot, for
// matching worktree-status paths (which go-git reports relative to the git
// root, not the workspace root).
func projectGitPrefix(opts Options, proj *workspace.Project) string {
	var parts []string
	if opts.RelativeRoot != "" {
		parts = append(parts, opts.RelativeRoot)
	}
	if rel := strings.TrimPrefix(proj.RelativePath, "./"); rel != "" && rel != "." {
		parts = append(parts, strings.ReplaceAll(rel, "\\", "/"))
	}
	return strings.Join(parts, "/")
}

// snapshotStatus captures the worktree status for every changed path, keyed
// by git-root-relative path. Returns nil if repo is nil or status fails
// (diff detection is then skipped rather than failing the run).
func snapshotStatus(repo *git.Repository) map[string]string {
	if repo == nil {
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil
	}
	st, err := wt.Status()
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(st))
	for path, s := range st {
		out[path] = fmt.Sprintf("%d:%d", s.Staging, s.Worktree)
	}
	return out
}

// statusChanged reports whether any path under prefix differs between the
// two snapshots.
func statusChanged(prev, cur map[string]string, prefix string) bool {
	under := func(path string) bool {
		if prefix == "" {
			return true
		}
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	for path, v := range prev {
		if under(path) && cur[path] != v {
			return true
		}
	}
	for path, v := range cur {
		if under(path) {
			if pv, ok := prev[path]; !ok || pv != v {
				return true
			}
		}
	}
	return false
}
