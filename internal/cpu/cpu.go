// Package cpu binds pool workers to OS threads and detects how many threads
// the process can usefully run in parallel.
package cpu

import (
	"errors"
	"runtime"
	"sync"

	"go.uber.org/automaxprocs/maxprocs"
)

// ErrPinUnsupported is returned by LockThread when CPU pinning was requested
// on a platform that cannot pin threads.
var ErrPinUnsupported = errors.New("cpu: thread pinning is not supported on this platform")

var (
	parallelismOnce sync.Once
	parallelism     int
)

// Parallelism returns the number of threads the process can run in parallel,
// honouring container CPU quotas. It never returns less than 1. The value is
// probed once and cached; GOMAXPROCS is left as it was found.
func Parallelism() int {
	parallelismOnce.Do(func() {
		parallelism = probeParallelism()
	})
	return parallelism
}

func probeParallelism() int {
	undo, err := maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	n := runtime.GOMAXPROCS(0)
	if undo != nil {
		undo()
	}

	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	return max(n, 1)
}
