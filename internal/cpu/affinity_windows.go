//go:build windows

package cpu

import (
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
	getCurrentThreadID    = kernel32.NewProc("GetCurrentThreadId")
)

// pinToCore restricts the calling OS thread to a single CPU. The goroutine
// must already be locked to its thread.
func pinToCore(cpuID int) error {
	numCPU := runtime.NumCPU()
	if cpuID < 0 || cpuID >= numCPU {
		cpuID = ((cpuID % numCPU) + numCPU) % numCPU
	}

	handle, _, _ := getCurrentThread.Call()

	// Bit N = CPU N
	mask := uintptr(1 << cpuID)

	prevMask, _, err := setThreadAffinityMask.Call(handle, mask)
	if prevMask == 0 {
		return err
	}
	return nil
}

// ThreadID returns the Windows id of the calling OS thread.
func ThreadID() int {
	id, _, _ := getCurrentThreadID.Call()
	return int(id)
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
