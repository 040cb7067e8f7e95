package language

import (
	"context"

	"github.com/prek-go/prek/pkg/store"
)

// ScriptAdapter runs entry the same way SystemAdapter does (the program is
// looked up on PATH, or executed directly when it is a path, relative to
// the working directory); no environment is installed.
type ScriptAdapter struct{}

func NewScriptAdapter() *ScriptAdapter { return &ScriptAdapter{} }

func (a *ScriptAdapter) Name() string            { return "script" }
func (a *ScriptAdapter) SupportsInstallEnv() bool { return false }

func (a *ScriptAdapter) Install(context.Context, string, InstallRequest, *store.Store) (store.InstallInfo, error) {
	return store.InstallInfo{Language: "script"}, nil
}

func (a *ScriptAdapter) CheckHealth(context.Context, store.InstallInfo) error { return nil }

func (a *ScriptAdapter) Run(ctx context.Context, hook InstalledHook, filenames []string, _ *store.Store) (RunResult, error) {
	return runEntryOnPath(ctx, hook, filenames)
}
