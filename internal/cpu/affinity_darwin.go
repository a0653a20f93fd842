//go:build darwin

package cpu

import (
	"runtime"
)

// ThreadID is not exposed by the darwin kernel interface; it returns -1.
func ThreadID() int {
	return -1
}

// LockThread wires the calling goroutine to its own OS thread.
// CPU pinning is not available on macOS, so pin yields ErrPinUnsupported.
func LockThread(workerID int, pin bool) (release func(), err error) {
	runtime.LockOSThread()

	if pin {
		err = ErrPinUnsupported
	}

	return runtime.UnlockOSThread, err
}
