package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/prek-go/prek/pkg/store"
)

// CleanCommand handles the clean command functionality
type CleanCommand struct{}

// CleanOptions holds command-line options for the clean command
type CleanOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Verbose output showing what is being cleaned"`
	Help    bool `short:"h" long:"help"    description:"Show this help message"`
}

// Help returns the help text for the clean command
func (c *CleanCommand) Help() string {
	var opts CleanOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "clean",
		Description: "Clean cached repositories and hook environments.",
		Examples: []Example{
			{Command: "prek clean", Description: "Remove the entire store"},
			{Command: "prek clean --verbose", Description: "Show detailed output"},
		},
		Notes: []string{
			"Unlike gc, clean removes the whole store unconditionally: every",
			"cloned repo, hook environment, toolchain, and cache bucket. The",
			"next run re-clones and reinstalls everything it needs.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the clean command
func (c *CleanCommand) Synopsis() string {
	return "Clean cached repositories and environments"
}

// Run executes the clean command
func (c *CleanCommand) Run(args []string) int {
	var opts CleanOptions
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

	root := s.Root()
	if _, statErr := os.Stat(root); os.IsNotExist(statErr) {
		fmt.Printf("Nothing to clean: %s does not exist.\n", root)
		return 0
	}

	if opts.Verbose {
		fmt.Printf("Cleaning store: %s\n", root)
	}
	if err := os.RemoveAll(root); err != nil {
		fmt.Printf("Error: failed to clean store: %v\n", err)
		return 1
	}
	fmt.Printf("Cleaned %s.\n", root)
	return 0
}

// CleanCommandFactory creates a new clean command instance
func CleanCommandFactory() (cli.Command, error) {
	return &CleanCommand{}, nil
}
