// Package main provides the prek command-line tool: a git hook manager
// that discovers nested project configs, resolves and installs hook
// environments, and runs hooks concurrently across a workspace.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/prek-go/prek/internal/commands"
)

// Version information set by GoReleaser
var (
	version = "dev"
	commit  = "none"    //nolint:unused // Set by GoReleaser
	date    = "unknown" //nolint:unused // Set by GoReleaser
	builtBy = "unknown" //nolint:unused // Set by GoReleaser
)

func main() {
	c := cli.NewCLI("prek", version)
	c.Args = os.Args[1:]
	c.HelpFunc = customHelpFunc
	c.Commands = map[string]cli.CommandFactory{
		"run":           commands.RunCommandFactory,
		"install-hooks": commands.InstallHooksCommandFactory,
		"gc":            commands.GcCommandFactory,
		"clean":         commands.CleanCommandFactory,
		"hook-impl":     commands.HookImplCommandFactory,
		"help":          commands.HelpCommandFactory,
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitStatus)
}

// customHelpFunc renders the top-level usage line and command summary.
func customHelpFunc(cmdFactories map[string]cli.CommandFactory) string {
	var commandNames []string
	for name := range cmdFactories {
		if name != "hook-impl" && name != "help" {
			commandNames = append(commandNames, name)
		}
	}
	sort.Strings(commandNames)

	usageLine := "usage: prek [-h] [--version]\n"
	usageLine += "            {"
	usageLine += strings.Join(commandNames, ",")
	usageLine += "}\n            ...\n"

	helpText := usageLine + `
A git hook manager: discovers nested project configs, installs hook
environments on demand, and runs hooks concurrently across a workspace.

positional arguments:
  {` + strings.Join(commandNames, ",") + `}
    run                 Run hooks across the workspace
    install-hooks       Install hook environments for every project in the workspace
    gc                  Clean unused cached repos and environments
    clean               Remove the whole store unconditionally

optional arguments:
  -h, --help            show this help message and exit
  --version             show program's version number and exit
`

	return helpText
}
