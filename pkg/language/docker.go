package language

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/prek-go/prek/pkg/store"
)

// DockerAdapter builds an image tagged with hash(language, dependencies)
// from the hook's repo Dockerfile, then runs it bind-mounting the workdir
// at /src.
type DockerAdapter struct{}

func NewDockerAdapter() *DockerAdapter { return &DockerAdapter{} }

func (a *DockerAdapter) Name() string            { return "docker" }
func (a *DockerAdapter) SupportsInstallEnv() bool { return true }

func imageTag(language string, deps []string) string {
	h := sha256.New()
	_, _ = h.Write([]byte(language))
	for _, d := range deps {
		_, _ = h.Write([]byte(d))
	}
	return "prek-hook-" + hex.EncodeToString(h.Sum(nil))[:16]
}

func (a *DockerAdapter) Install(ctx context.Context, envPath string, req InstallRequest, _ *store.Store) (store.InstallInfo, error) {
	tag := imageTag(req.Language, req.AdditionalDependencies)
	buildCtx := req.RepoCloneDir
	if buildCtx == "" {
		buildCtx = envPath
	}
	if err := os.MkdirAll(envPath, 0o755); err != nil {
		return store.InstallInfo{}, err
	}

	cmd := exec.CommandContext(ctx, "docker", "build", "-t", tag, buildCtx)
	var out bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &out
	if err := cmd.Run(); err != nil {
		return store.InstallInfo{}, fmt.Errorf("docker build failed: %w: %s", err, out.String())
	}

	return store.InstallInfo{
		Language:     "docker",
		Dependencies: req.AdditionalDependencies,
		EnvPath:      envPath,
		Toolchain:    tag,
	}, nil
}

func (a *DockerAdapter) CheckHealth(ctx context.Context, info store.InstallInfo) error {
	cmd := exec.CommandContext(ctx, "docker", "image", "inspect", info.Toolchain)
	cmd.Stdout, cmd.Stderr = nil, nil
	return cmd.Run()
}

func (a *DockerAdapter) Run(ctx context.Context, hook InstalledHook, filenames []string, _ *store.Store) (RunResult, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return RunResult{}, err
	}
	args := []string{"run", "--rm", "-v", cwd + ":/src", "-w", "/src", hook.Info.Toolchain}
	args = append(args, strings.Fields(hook.Entry)...)
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

