package language

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/prek-go/prek/pkg/store"
)

// PygrepAdapter implements the regex-grep-over-files hook type normally
// shipped as a fixed embedded Python script; rebuilt natively in Go (this
// module carries no Python runtime) rather than shelling out, since the
// contract is "grep each file against entry's pattern" and Go's RE2 engine
// already covers the pygrep-hooks corpus. args reserialize to
// (ignore_case, multiline, negate) booleans.
type PygrepAdapter struct{}

func NewPygrepAdapter() *PygrepAdapter { return &PygrepAdapter{} }

func (a *PygrepAdapter) Name() string            { return "pygrep" }
func (a *PygrepAdapter) SupportsInstallEnv() bool { return true }

func (a *PygrepAdapter) Install(_ context.Context, envPath string, req InstallRequest, _ *store.Store) (store.InstallInfo, error) {
	return store.InstallInfo{Language: "pygrep", EnvPath: envPath, Dependencies: req.AdditionalDependencies}, nil
}

func (a *PygrepAdapter) CheckHealth(context.Context, store.InstallInfo) error { return nil }

// pygrepArgs is the boolean trio parsed from hook args.
type pygrepArgs struct {
	ignoreCase bool
	multiline  bool
	negate     bool
}

func parsePygrepArgs(args []string) pygrepArgs {
	var p pygrepArgs
	for _, a := range args {
		switch a {
		case "-i", "--ignore-case":
			p.ignoreCase = true
		case "--multiline":
			p.multiline = true
		case "--negate":
			p.negate = true
		}
	}
	return p
}

func (a *PygrepAdapter) Run(_ context.Context, hook InstalledHook, filenames []string, _ *store.Store) (RunResult, error) {
	opts := parsePygrepArgs(hook.Args)
	pattern := hook.Entry
	flags := ""
	if opts.ignoreCase {
		flags += "i"
	}
	if opts.multiline {
		flags += "s"
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return RunResult{}, fmt.Errorf("pygrep hook %s: invalid pattern: %w", hook.HookID, err)
	}

	var out bytes.Buffer
	matched := false
	for _, f := range filenames {
		data, err := os.ReadFile(f) // #nosec G304 -- candidate file list from the run's own file collector
		if err != nil {
			continue
		}
		if re.Match(data) {
			matched = true
			fmt.Fprintf(&out, "%s: matched\n", f)
		}
	}

	success := matched == opts.negate
	if success {
		return RunResult{Status: StatusSuccess, Output: out.Bytes()}, nil
	}
	if opts.negate {
		out.Reset()
		fmt.Fprintf(&out, "pattern unexpectedly not found in any file\n")
	}
	return RunResult{Status: StatusFailed, ExitCode: 1, Output: out.Bytes()}, nil
}
