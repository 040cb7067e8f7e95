package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/filecollect"
	"github.com/prek-go/prek/pkg/language"
	"github.com/prek-go/prek/pkg/reporting"
	"github.com/prek-go/prek/pkg/runner"
	"github.com/prek-go/prek/pkg/store"
)

// RunCommand handles the run command functionality
type RunCommand struct{}

// RunOptions holds command-line options for the run command
type RunOptions struct {
	Config    string `short:"c" long:"config"    description:"Path to config file"                     default:".pre-commit-config.yaml"`
	HookStage string `long:"hook-stage"          description:"The stage to run hooks for"               default:"pre-commit"`
	FromRef   string `long:"from-ref"            description:"Diff base ref, paired with --to-ref"`
	ToRef     string `long:"to-ref"              description:"Diff head ref, paired with --from-ref"`

	CommitMsgFilename string `long:"commit-msg-filename" description:"Path to the commit message file (commit-msg/prepare-commit-msg stages)"`

	Files    []string `short:"f" long:"file"      description:"Specific filenames to run hooks on (repeatable)"`
	AllFiles bool     `short:"a" long:"all-files" description:"Run on every file in the workspace"`
	FailFast bool     `long:"fail-fast"           description:"Stop running hooks after the first failure"`
	DryRun   bool     `long:"dry-run"             description:"Show what would run, without executing it"`
	Parallel int      `short:"j" long:"jobs"      description:"Maximum number of hooks/batches to run concurrently" default:"4"`
	Color    string   `long:"color"               description:"Whether to use color in output" choice:"auto" choice:"always" choice:"never" default:"auto"`
	Verbose  bool     `short:"v" long:"verbose"   description:"Enable verbose output"`
	Help     bool     `short:"h" long:"help"      description:"Show this help message"`
}

// Help returns the help text for the run command
func (c *RunCommand) Help() string {
	var opts RunOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "run",
		Description: "Run hooks across the workspace.",
		Examples: []Example{
			{Command: "prek run", Description: "Run pre-commit stage hooks against staged files"},
			{Command: "prek run --all-files", Description: "Run against every tracked file"},
			{Command: "prek run --from-ref origin/main --to-ref HEAD", Description: "Run against a ref range diff"},
			{Command: "prek run --hook-stage pre-push", Description: "Run hooks scoped to another stage"},
		},
		Notes: []string{
			"Discovers every project in the workspace, resolves and installs",
			"any environment that isn't already healthy, then runs hooks",
			"priority-group by priority-group, deepest project first.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the run command
func (c *RunCommand) Synopsis() string {
	return "Run hooks against files"
}

// Run executes the run command
func (c *RunCommand) Run(args []string) int {
	var opts RunOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	_, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return 1
	}

	if err := validateRunOptions(opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	ctx := context.Background()

	os.Setenv("PRE_COMMIT", "1")
	os.Setenv("PRE_COMMIT_HOOK_STAGE", opts.HookStage)
	if opts.FromRef != "" {
		os.Setenv("PRE_COMMIT_FROM_REF", opts.FromRef)
	}
	if opts.ToRef != "" {
		os.Setenv("PRE_COMMIT_TO_REF", opts.ToRef)
	}

	s, err := store.Open("")
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Printf("Error: cannot determine working directory: %v\n", err)
		return 1
	}

	bw, err := buildWorkspace(ctx, s, isExplicitConfig(opts.Config), cwd)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	reports, err := installWorkspaceHooks(ctx, s, bw, opts.Verbose)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	for _, r := range reports {
		if r.Err != nil {
			fmt.Printf("Failed to install %s: %v\n", r.Hook.ID, r.Err)
			return 1
		}
	}
	installedHooks := installedHookMap(reports)

	stage := config.Stage(opts.HookStage)
	candidates, err := collectCandidateFiles(ctx, bw, stage, opts)
	if err != nil {
		fmt.Printf("Error collecting files: %v\n", err)
		return 1
	}

	useColor := shouldUseColor(opts.Color)
	printer := reporting.New(os.Stdout, opts.Verbose, useColor)
	runr := runner.New(s, language.NewRegistry(), printer, opts.Parallel)

	summary, err := runr.Run(ctx, bw.ProjectHooks, runner.Options{
		Stage:          stage,
		GitRoot:        bw.GitRoot,
		RelativeRoot:   relativeRoot(bw.GitRoot, bw.WorkspaceRoot),
		WorkspaceRoot:  bw.WorkspaceRoot,
		Candidates:     candidates,
		DryRun:         opts.DryRun,
		GlobalFailFast: opts.FailFast,
		InstalledHooks: installedHooks,
		CloneDirs:      bw.CloneDirs,
	})
	printer.Flush()
	if err != nil {
		fmt.Printf("Error running hooks: %v\n", err)
		return 1
	}

	if summary.OK() {
		return 0
	}
	return 1
}

// collectCandidateFiles implements the --all-files/--file/--from-ref+--to-ref/
// default-stage dispatch on top of pkg/filecollect.
func collectCandidateFiles(ctx context.Context, bw *builtWorkspace, stage config.Stage, opts RunOptions) ([]string, error) {
	req := filecollect.Request{
		WorkspaceRoot: bw.WorkspaceRoot,
		GitRoot:       bw.GitRoot,
		Stage:         stage,
		FromRef:       opts.FromRef,
		ToRef:         opts.ToRef,
		Files:         opts.Files,
		AllFiles:      opts.AllFiles,
		CommitMsgFile: opts.CommitMsgFilename,
	}
	res, err := filecollect.Collect(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return res.Files, nil
}

// validateRunOptions enforces mutual exclusivity between the file-selection
// flags.
func validateRunOptions(opts RunOptions) error {
	modes := 0
	if opts.AllFiles {
		modes++
	}
	if len(opts.Files) > 0 {
		modes++
	}
	if opts.FromRef != "" || opts.ToRef != "" {
		modes++
	}
	if modes > 1 {
		return errors.New("--all-files, --file, and --from-ref/--to-ref are mutually exclusive")
	}
	if (opts.FromRef == "") != (opts.ToRef == "") {
		return errors.New("--from-ref and --to-ref must be specified together")
	}
	if !config.Stage(opts.HookStage).IsValid() {
		return fmt.Errorf("unknown --hook-stage %q", opts.HookStage)
	}
	return nil
}

// shouldUseColor resolves the --color auto/always/never tri-state against
// whether stdout is a terminal.
func shouldUseColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		info, err := os.Stdout.Stat()
		if err != nil {
			return false
		}
		return (info.Mode() & os.ModeCharDevice) != 0
	}
}

func relativeRoot(gitRoot, workspaceRoot string) string {
	if gitRoot == workspaceRoot {
		return ""
	}
	rel, err := filepath.Rel(gitRoot, workspaceRoot)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

// RunCommandFactory creates a new run command instance
func RunCommandFactory() (cli.Command, error) {
	return &RunCommand{}, nil
}
