package language

import (
	"context"

	"github.com/prek-go/prek/pkg/store"
)

// UnimplementedAdapter backs every named language beyond the six concrete
// adapters.
type UnimplementedAdapter struct{ name string }

func NewUnimplementedAdapter(name string) *UnimplementedAdapter {
	return &UnimplementedAdapter{name: name}
}

func (a *UnimplementedAdapter) Name() string            { return a.name }
func (a *UnimplementedAdapter) SupportsInstallEnv() bool { return false }

func (a *UnimplementedAdapter) Install(context.Context, string, InstallRequest, *store.Store) (store.InstallInfo, error) {
	return store.InstallInfo{Language: a.name}, nil
}

func (a *UnimplementedAdapter) CheckHealth(context.Context, store.InstallInfo) error {
	return nil
}

func (a *UnimplementedAdapter) Run(context.Context, InstalledHook, []string, *store.Store) (RunResult, error) {
	return RunResult{Status: StatusUnimplemented}, nil
}
