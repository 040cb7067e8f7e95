package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/prek-go/prek/pkg/installer"
	"github.com/prek-go/prek/pkg/store"
)

// GcCommand handles the garbage collection command functionality
type GcCommand struct{}

// GcOptions holds command-line options for the gc command
type GcOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Verbose output showing what is being cleaned"`
	DryRun  bool `long:"dry-run"           description:"Report what would be removed without removing it"`
	Help    bool `short:"h" long:"help"    description:"Show this help message"`
}

// Help returns the help text for the gc command
func (c *GcCommand) Help() string {
	var opts GcOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "gc",
		Description: "Clean unused cached repositories and environments.",
		Examples: []Example{
			{Command: "prek gc", Description: "Remove repos/hooks/tools not referenced by any tracked config"},
			{Command: "prek gc --dry-run --verbose", Description: "Show what would be removed"},
		},
		Notes: []string{
			"Mark-and-sweep against the store's tracked-configs registry: every",
			"repo clone, hook env, and tool version still reachable from a",
			"tracked .pre-commit-config.yaml is retained; everything else is removed.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the gc command
func (c *GcCommand) Synopsis() string {
	return "Clean unused cached data"
}

// Run executes the gc command
func (c *GcCommand) Run(args []string) int {
	var opts GcOptions
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

	var report installer.GCReport
	lockErr := s.Lock().WithLock(context.Background(), func() {
		fmt.Println("Waiting for another prek process to release the store lock...")
	}, func() error {
		var gcErr error
		report, gcErr = installer.GC(s, opts.DryRun, opts.Verbose)
		return gcErr
	})
	if lockErr != nil {
		fmt.Printf("Error during garbage collection: %v\n", lockErr)
		return 1
	}

	printGCReport(report, opts.Verbose)

	total := len(report.RemovedRepos) + len(report.RemovedHooks) + len(report.RemovedTools) + len(report.RemovedCaches)
	verb := "removed"
	if report.DryRun {
		verb = "would be removed"
	}
	fmt.Printf("%d entr(y/ies) %s.\n", total, verb)
	return 0
}

func printGCReport(report installer.GCReport, verbose bool) {
	if !verbose {
		return
	}
	printSection := func(label string, entries []string) {
		for _, e := range entries {
			fmt.Printf("  %s: %s\n", label, e)
		}
	}
	printSection("repo", report.RemovedRepos)
	printSection("hook env", report.RemovedHooks)
	printSection("tool", report.RemovedTools)
	printSection("cache", report.RemovedCaches)
	printSection("stale config", report.PrunedConfigs)
}

// GcCommandFactory creates a new gc command instance
func GcCommandFactory() (cli.Command, error) {
	return &GcCommand{}, nil
}
