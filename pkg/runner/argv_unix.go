//go:build !windows

package runner

import (
	"os"

	"golang.org/x/sys/unix"
)

const (
	minArgMax = 4 * 1024
	maxArgMax = 1024 * 1024
	headroom  = 2 * 1024
)

// argvBudget derives the usable argv length from _SC_ARG_MAX, clamped to
// [4 KiB, 1 MiB] and reduced by an estimate of this process's environment
// size plus 2 KiB of headroom. entryIsBatchFile is unused on
// Unix — the reduced batch-file budget is a Windows-only concern.
func argvBudget(entryIsBatchFile bool) int {
	_ = entryIsBatchFile

	argMax, err := unix.Sysconf(unix.SC_ARG_MAX)
	if err != nil || argMax <= 0 {
		argMax = maxArgMax
	}
	if argMax < minArgMax {
		argMax = minArgMax
	}
	if argMax > maxArgMax {
		argMax = maxArgMax
	}

	envSize := 0
	for _, kv := range os.Environ() {
		envSize += len(kv) + 1
	}

	budget := int(argMax) - envSize - headroom
	if budget < minArgMax/2 {
		budget = minArgMax / 2
	}
	return budget
}
