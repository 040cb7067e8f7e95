// Package runner implements priority-group execution across a workspace's
// projects, with bounded concurrency, fail_fast, file-modification
// detection, and platform-aware argv partitioning for hooks invoked over
// large file batches.
package runner

import "fmt"

// Partition splits filenames into batches whose argv length (entry + args +
// accumulated filenames + separators) stays under the platform budget, and
// whose size never exceeds max(4, ceil(N/concurrency)).
func Partition(entry string, args, filenames []string, concurrency int, entryIsBatchFile bool) ([][]string, error) {
	if len(filenames) == 0 {
		return nil, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	budget := argvBudget(entryIsBatchFile)

	base := len(entry) + 1
	for _, a := range args {
		base += len(a) + 1
	}

	maxPerBatch := len(filenames) / concurrency
	if len(filenames)%concurrency != 0 {
		maxPerBatch++
	}
	if maxPerBatch < 4 {
		maxPerBatch = 4
	}

	var batches [][]string
	var cur []string
	curLen := base

	for _, f := range filenames {
		tokLen := len(f) + 1
		if base+tokLen >= budget {
			return nil, fmt.Errorf("runner: filename %q alone exceeds the %d-byte argv budget", f, budget)
		}
		if len(cur) > 0 && (curLen+tokLen >= budget || len(cur) >= maxPerBatch) {
			batches = append(batches, cur)
			cur = nil
			curLen = base
		}
		cur = append(cur, f)
		curLen += tokLen
	}
	if len(cur) > 0 {
		batches = append(batches, cur)
	}
	return batches, nil
}
