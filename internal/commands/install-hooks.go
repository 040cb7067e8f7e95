package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/prek-go/prek/pkg/installer"
	"github.com/prek-go/prek/pkg/language"
	"github.com/prek-go/prek/pkg/store"
)

// InstallHooksCommand handles the install-hooks command functionality
type InstallHooksCommand struct{}

// InstallHooksOptions holds command-line options for the install-hooks command
type InstallHooksOptions struct {
	Config  string `short:"c" long:"config"  description:"Path to config file"    default:".pre-commit-config.yaml"`
	Verbose bool   `short:"v" long:"verbose" description:"Verbose output"`
	Help    bool   `short:"h" long:"help"    description:"Show this help message"`
}

// Help returns the help text for the install-hooks command
func (c *InstallHooksCommand) Help() string {
	var opts InstallHooksOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "install-hooks",
		Description: "Install hook environments for every project in the workspace.",
		Examples: []Example{
			{Command: "prek install-hooks", Description: "Install environments for all hooks"},
			{Command: "prek install-hooks --verbose", Description: "Show detailed environment installation output"},
		},
		Notes: []string{
			"Resolves every project's repos, materializes their hooks, and",
			"installs any environment that isn't already healthy. Reused by",
			"'prek run', which installs lazily before executing.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the install-hooks command
func (c *InstallHooksCommand) Synopsis() string {
	return "Install hook environments"
}

// Run executes the install-hooks command
func (c *InstallHooksCommand) Run(args []string) int {
	var opts InstallHooksOptions
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

	s, err := store.Open("")
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		return 1
	}

	reports, err := ensureHooksInstalled(context.Background(), s, isExplicitConfig(opts.Config), opts.Verbose)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	installed, failed := 0, 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
			fmt.Printf("Failed to install %s: %v\n", r.Hook.ID, r.Err)
			continue
		}
		if r.Outcome == installer.OutcomeInstalled {
			installed++
			if opts.Verbose {
				fmt.Printf("Installed environment for %s\n", r.Hook.ID)
			}
		}
	}
	if failed > 0 {
		return 1
	}
	fmt.Printf("Installed %d environment(s); %d already ready.\n", installed, len(reports)-installed)
	return 0
}

// ensureHooksInstalled discovers the workspace rooted at the current
// directory, resolves and builds every project's hooks, and installs
// whatever isn't already healthy.
func ensureHooksInstalled(ctx context.Context, s *store.Store, explicitConfig, verbose bool) ([]installer.Report, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}

	bw, err := buildWorkspace(ctx, s, explicitConfig, cwd)
	if err != nil {
		return nil, err
	}

	return installWorkspaceHooks(ctx, s, bw, verbose)
}

// installWorkspaceHooks records every project's config path as tracked and
// installs whatever hook environment in bw isn't already healthy. Shared by
// install-hooks and the lazy-install step of run/hook-impl, which have
// already paid for buildWorkspace and pass their own result in.
func installWorkspaceHooks(ctx context.Context, s *store.Store, bw *builtWorkspace, verbose bool) ([]installer.Report, error) {
	var configPaths []string
	for _, p := range bw.Workspace.AllProjects {
		configPaths = append(configPaths, p.ConfigPath)
	}
	if err := s.UpdateTrackedConfigs(configPaths); err != nil {
		return nil, fmt.Errorf("updating tracked configs: %w", err)
	}

	if len(bw.FlatHooks) == 0 {
		return nil, nil
	}

	inst := installer.New(s, language.NewRegistry())
	onWaiting := func() {
		if verbose {
			fmt.Println("Waiting for another prek process to release the store lock...")
		}
	}
	return inst.InstallAll(ctx, bw.FlatHooks, onWaiting)
}

// InstallHooksCommandFactory creates a new install-hooks command instance
func InstallHooksCommandFactory() (cli.Command, error) {
	return &InstallHooksCommand{}, nil
}
