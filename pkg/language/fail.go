package language

import (
	"context"

	"github.com/prek-go/prek/pkg/store"
)

// FailAdapter unconditionally fails, printing its entry as the message.
// Used for hooks that want to always reject a commit, e.g. as a checklist
// reminder.
type FailAdapter struct{}

func NewFailAdapter() *FailAdapter { return &FailAdapter{} }

func (a *FailAdapter) Name() string            { return "fail" }
func (a *FailAdapter) SupportsInstallEnv() bool { return false }

func (a *FailAdapter) Install(context.Context, string, InstallRequest, *store.Store) (store.InstallInfo, error) {
	return store.InstallInfo{Language: "fail"}, nil
}

func (a *FailAdapter) CheckHealth(context.Context, store.InstallInfo) error { return nil }

func (a *FailAdapter) Run(_ context.Context, hook InstalledHook, filenames []string, _ *store.Store) (RunResult, error) {
	if len(filenames) == 0 {
		return RunResult{Status: StatusNoFiles}, nil
	}
	return RunResult{Status: StatusFailed, ExitCode: 1, Output: []byte(hook.Entry + "\n")}, nil
}
