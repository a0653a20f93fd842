//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore restricts the calling OS thread to a single CPU. The goroutine
// must already be locked to its thread.
//
// cpuID is folded into [0, runtime.NumCPU()-1].
func pinToCore(cpuID int) error {
	numCPU := runtime.NumCPU()
	if cpuID < 0 || cpuID >= numCPU {
		cpuID = ((cpuID % numCPU) + numCPU) % numCPU
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	return unix.SchedSetaffinity(0, &mask) // 0 = current thread
}

// ThreadID returns the kernel id of the calling OS thread.
func ThreadID() int {
	return unix.Gettid()
}

// LockThread wires the calling goroutine to its own OS thread for the
// lifetime of a worker, optionally pinning that thread to the CPU matching
// workerID. The returned function releases the thread and must be deferred.
func LockThread(workerID int, pin bool) (release func(), err error) {
	runtime.LockOSThread()

	if pin {
		err = pinToCore(workerID)
	}

	return runtime.UnlockOSThread, err
}
