package language

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/prek-go/prek/pkg/store"
)

// SystemAdapter resolves entry on PATH; no environment is installed.
type SystemAdapter struct{}

func NewSystemAdapter() *SystemAdapter { return &SystemAdapter{} }

func (a *SystemAdapter) Name() string            { return "system" }
func (a *SystemAdapter) SupportsInstallEnv() bool { return false }

func (a *SystemAdapter) Install(context.Context, string, InstallRequest, *store.Store) (store.InstallInfo, error) {
	return store.InstallInfo{Language: "system"}, nil
}

func (a *SystemAdapter) CheckHealth(context.Context, store.InstallInfo) error { return nil }

func (a *SystemAdapter) Run(ctx context.Context, hook InstalledHook, filenames []string, _ *store.Store) (RunResult, error) {
	return runEntryOnPath(ctx, hook, filenames)
}

// runEntryOnPath shells out to entry+args(+filenames), shared by system
// and script. entry is an unparsed string that routinely embeds its own
// arguments (e.g. "grep -n TODO"), so it's split on whitespace first (quotes
// are not interpreted): the first token is the program, the rest are
// prepended ahead of the hook's own args.
func runEntryOnPath(ctx context.Context, hook InstalledHook, filenames []string) (RunResult, error) {
	entryTokens := strings.Fields(hook.Entry)
	if len(entryTokens) == 0 {
		return RunResult{}, fmt.Errorf("hook %s: entry is empty", hook.HookID)
	}
	args := append(append([]string{}, entryTokens[1:]...), hook.Args...)
	args = append(args, filenames...)
	cmd := exec.CommandContext(ctx, entryTokens[0], args...) //nolint:gosec // entry is config-controlled, same trust level as any pre-commit hook
	for k, v := range hook.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		return RunResult{}, err
	}

	status := StatusSuccess
	if exitCode != 0 {
		status = StatusFailed
	}
	return RunResult{Status: status, ExitCode: exitCode, Output: out.Bytes()}, nil
}
