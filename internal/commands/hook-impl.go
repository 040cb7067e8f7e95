package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/prek-go/prek/pkg/config"
	"github.com/prek-go/prek/pkg/filecollect"
	"github.com/prek-go/prek/pkg/language"
	"github.com/prek-go/prek/pkg/reporting"
	"github.com/prek-go/prek/pkg/runner"
	"github.com/prek-go/prek/pkg/store"
)

// HookImplCommand handles the hook-impl command functionality
type HookImplCommand struct{}

// HookImplOptions holds command-line options for the hook-impl command
type HookImplOptions struct {
	Config              string `long:"config"                 description:"Path to config file"            default:".pre-commit-config.yaml"`
	HookType            string `long:"hook-type"              description:"Type of git hook being run"     required:"true"`
	HookDir             string `long:"hook-dir"               description:"Directory where hooks are stored"`
	Color               string `long:"color"                  description:"Whether to use color in output" default:"auto" choice:"auto" choice:"always" choice:"never"`
	SkipOnMissingConfig bool   `long:"skip-on-missing-config" description:"Skip execution if config file is missing"`
	Verbose             bool   `long:"verbose"                description:"Verbose output"                                                                               short:"v"`
	Help                bool   `long:"help"                   description:"Show this help message"                                                                      short:"h"`
}

// Help returns the help text for the hook-impl command
func (c *HookImplCommand) Help() string {
	var opts HookImplOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [HOOK_ARGS...]"

	formatter := &HelpFormatter{
		Command:     "hook-impl",
		Description: "Internal command invoked from .git/hooks scripts.",
		Examples: []Example{
			{Command: "prek hook-impl --hook-type pre-commit", Description: "Run pre-commit stage hooks (internal use)"},
		},
		Notes: []string{
			"positional arguments:",
			"  HOOK_ARGS             the argv git passes to the hook being implemented",
			"",
			"Not intended to be invoked directly. The installed .git/hooks/<type>",
			"scripts call this with --hook-type set to the git hook point and",
			"forward that hook's own positional arguments after it.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the hook-impl command
func (c *HookImplCommand) Synopsis() string {
	return "Internal hook implementation (not for direct use)"
}

// Run executes the hook-impl command
func (c *HookImplCommand) Run(args []string) int {
	var opts HookImplOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [HOOK_ARGS...]"

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return 1
	}

	if _, statErr := os.Stat(opts.Config); os.IsNotExist(statErr) {
		if opts.SkipOnMissingConfig {
			if opts.Verbose {
				fmt.Printf("Config file not found, skipping: %s\n", opts.Config)
			}
			return 0
		}
		fmt.Printf("Error: config file not found: %s\n", opts.Config)
		return 1
	}

	stage, err := stageForHookType(opts.HookType)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	setHookEnvVars(opts.HookType, remaining)

	ctx := context.Background()

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

	candidates, err := collectHookImplFiles(ctx, bw, stage, opts.HookType, remaining)
	if err != nil {
		fmt.Printf("Error collecting files: %v\n", err)
		return 1
	}

	useColor := shouldUseColor(opts.Color)
	printer := reporting.New(os.Stdout, opts.Verbose, useColor)
	r := runner.New(s, language.NewRegistry(), printer, 4)

	summary, err := r.Run(ctx, bw.ProjectHooks, runner.Options{
		Stage:          stage,
		GitRoot:        bw.GitRoot,
		RelativeRoot:   relativeRoot(bw.GitRoot, bw.WorkspaceRoot),
		WorkspaceRoot:  bw.WorkspaceRoot,
		Candidates:     candidates,
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

// stageForHookType maps a git hook name onto the Stage enum, rejecting
// names outside the closed set.
func stageForHookType(hookType string) (config.Stage, error) {
	s := config.Stage(hookType)
	if !s.IsValid() {
		return "", fmt.Errorf("unsupported hook type: %s", hookType)
	}
	return s, nil
}

// collectHookImplFiles dispatches a git hook's forwarded argv into the
// pkg/filecollect request appropriate for its stage. For commit-msg and
// prepare-commit-msg, argv[0] is the commit message file; pre-push's argv
// is translated into a from/to ref pair; every other stage's argv is
// irrelevant to file selection.
func collectHookImplFiles(ctx context.Context, bw *builtWorkspace, stage config.Stage, hookType string, args []string) ([]string, error) {
	req := filecollect.Request{
		WorkspaceRoot: bw.WorkspaceRoot,
		GitRoot:       bw.GitRoot,
		Stage:         stage,
	}

	switch hookType {
	case "commit-msg", "prepare-commit-msg":
		if len(args) > 0 {
			req.CommitMsgFile = args[0]
		}
	case "pre-push":
		if from, to, ok := parsePrePushArgs(args); ok {
			req.FromRef = from
			req.ToRef = to
		}
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

// parsePrePushArgs reads the "<local ref> <local sha1> <remote ref> <remote
// sha1>" line git's pre-push hook forwards, returning a from/to ref pair for
// filecollect's ref-range diff, or false for a brand new branch (all-zero
// remote sha, which has no sensible diff base).
func parsePrePushArgs(args []string) (from, to string, ok bool) {
	if len(args) < 4 {
		return "", "", false
	}
	localSHA, remoteSHA := args[1], args[3]
	if remoteSHA == "0000000000000000000000000000000000000000" {
		return "", "", false
	}
	return remoteSHA, localSHA, true
}

// setHookEnvVars sets the PRE_COMMIT_* environment variables real git hooks
// rely on, derived from the hook's own positional argv.
func setHookEnvVars(hookType string, args []string) {
	os.Setenv("PRE_COMMIT", "1")
	os.Setenv("PRE_COMMIT_HOOK_STAGE", hookType)

	switch hookType {
	case "pre-push":
		if len(args) >= 4 {
			os.Setenv("PRE_COMMIT_LOCAL_BRANCH", args[0])
			os.Setenv("PRE_COMMIT_REMOTE_BRANCH", args[2])
			os.Setenv("PRE_COMMIT_FROM_REF", args[3])
			os.Setenv("PRE_COMMIT_TO_REF", args[1])
		}
	case "commit-msg":
		if len(args) >= 1 {
			os.Setenv("PRE_COMMIT_COMMIT_MSG_FILENAME", args[0])
		}
	case "prepare-commit-msg":
		if len(args) >= 1 {
			os.Setenv("PRE_COMMIT_COMMIT_MSG_FILENAME", args[0])
			os.Setenv("PRE_COMMIT_COMMIT_MSG_SOURCE", "")
		}
		if len(args) >= 2 {
			os.Setenv("PRE_COMMIT_COMMIT_MSG_SOURCE", args[1])
		}
		if len(args) >= 3 {
			os.Setenv("PRE_COMMIT_COMMIT_OBJECT_NAME", args[2])
		}
	case "post-checkout":
		if len(args) >= 3 {
			os.Setenv("PRE_COMMIT_CHECKOUT_TYPE", args[2])
		}
	case "post-merge":
		if len(args) >= 1 {
			os.Setenv("PRE_COMMIT_IS_SQUASH_MERGE", args[0])
		}
	case "post-rewrite":
		if len(args) >= 1 {
			os.Setenv("PRE_COMMIT_REWRITE_COMMAND", args[0])
		}
	case "pre-rebase":
		if len(args) >= 1 {
			os.Setenv("PRE_COMMIT_PRE_REBASE_UPSTREAM", args[0])
		}
		if len(args) >= 2 {
			os.Setenv("PRE_COMMIT_PRE_REBASE_BRANCH", args[1])
		}
	}
}

// HookImplCommandFactory creates a new hook-impl command instance
func HookImplCommandFactory() (cli.Command, error) {
	return &HookImplCommand{}, nil
}
