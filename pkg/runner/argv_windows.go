//go:build windows

package runner

// Windows has no _SC_ARG_MAX equivalent, so these two budgets are fixed
// constants. Entries launched through a batch file (cmd.exe /c) get the
// smaller one since cmd.exe imposes its own stricter command-line cap.
const (
	windowsArgMax      = 32*1024 - 2*1024
	windowsBatchArgMax = 8*1024 - 1024
)

func argvBudget(entryIsBatchFile bool) int {
	if entryIsBatchFile {
		return windowsBatchArgMax
	}
	return windowsArgMax
}
