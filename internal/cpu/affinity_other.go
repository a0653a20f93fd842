//go:build !linux && !darwin && !windows

package cpu

import "runtime"

// ThreadID is unknown on this platform; it returns -1.
func ThreadID() int {
	return -1
}

// LockThread wires the calling goroutine to its own OS thread. Pinning is not
// supported here.
func LockThread(workerID int, pin bool) (release func(), err error) {
	runtime.LockOSThread()

	if pin {
		err = ErrPinUnsupported
	}

	return runtime.UnlockOSThread, err
}
