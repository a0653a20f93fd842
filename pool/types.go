package pool

import (
	"errors"

	"github.com/utkarsh5026/tpool/internal/scheduler"
	"github.com/utkarsh5026/tpool/internal/types"
)

var (
	// ErrThreadIndexOutOfRange is returned by GetThread for an index outside
	// [0, Size()).
	ErrThreadIndexOutOfRange = errors.New("thread index out of range")

	// ErrTaskDiscarded resolves the future of a task that was removed from
	// the queue without running, by ClearQueue or a forced Stop.
	ErrTaskDiscarded = errors.New("task discarded before execution")

	// ErrInvalidThreadCount is returned by New when asked for a negative
	// number of threads.
	ErrInvalidThreadCount = errors.New("invalid thread count")
)

// QueueKind selects how a pool orders queued tasks. It is chosen once in New.
type QueueKind = scheduler.Kind

const (
	// Normal queues tasks first-in first-out. Priorities passed to the
	// Priority submit variants are ignored.
	Normal QueueKind = scheduler.KindFIFO

	// Priority dequeues higher priorities first and keeps submission order
	// among tasks of equal priority.
	Priority QueueKind = scheduler.KindPriority
)

// TaskFunc is a unit of work that receives the id of the worker running it.
type TaskFunc = types.TaskFunc

// Future is the handle returned by the Submit family. Reading it blocks until
// the task has run or has been discarded.
type Future[R any] = types.Future[R]

// PanicError is the error a Future yields when its task panicked.
type PanicError = types.PanicError

// Stats is a consistent snapshot of the pool's counters.
type Stats struct {
	Threads   int    // worker slots owned by the pool
	Idle      int    // slots parked waiting for work
	Queued    int    // tasks waiting in the queue
	Submitted uint64 // tasks accepted by Submit/Execute
	Executed  uint64 // tasks that ran to completion, successfully or not
	Failed    uint64 // executed tasks that returned an error or panicked
	Discarded uint64 // tasks dropped from the queue without running
}
