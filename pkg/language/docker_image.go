package language

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/prek-go/prek/pkg/store"
)

// DockerImageAdapter runs a pre-built image referenced directly by entry;
// unlike docker it never resolves anything against the host PATH, and
// never builds an image.
type DockerImageAdapter struct{}

func NewDockerImageAdapter() *DockerImageAdapter { return &DockerImageAdapter{} }

func (a *DockerImageAdapter) Name() string            { return "docker_image" }
func (a *DockerImageAdapter) SupportsInstallEnv() bool { return false }

func (a *DockerImageAdapter) Install(context.Context, string, InstallRequest, *store.Store) (store.InstallInfo, error) {
	return store.InstallInfo{Language: "docker_image"}, nil
}

func (a *DockerImageAdapter) CheckHealth(context.Context, store.InstallInfo) error { return nil }

func (a *DockerImageAdapter) Run(ctx context.Context, hook InstalledHook, filenames []string, _ *store.Store) (RunResult, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return RunResult{}, err
	}
	fields := strings.Fields(hook.Entry)
	args := []string{"run", "--rm", "-v", cwd + ":/src", "-w", "/src"}
	args = append(args, fields...)
	args = append(args, hook.Args...)
	args = append(args, filenames...)

	cmd := exec.CommandContext(ctx, "docker", args...) //nolint:gosec // docker invocation built from config-controlled fields
	var out bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &out
	err = cmd.Run()

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
