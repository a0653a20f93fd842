package scheduler

import "github.com/utkarsh5026/tpool/internal/types"

// Kind selects the queueing discipline of a pool. It is fixed when the pool is
// built.
type Kind int

const (
	// KindFIFO dequeues tasks in the order they were pushed.
	KindFIFO Kind = iota

	// KindPriority dequeues the highest priority first, oldest first among
	// equal priorities.
	KindPriority
)

func (k Kind) String() string {
	switch k {
	case KindFIFO:
		return "fifo"
	case KindPriority:
		return "priority"
	default:
		return "unknown"
	}
}

// Queue is the task container shared by the workers of a pool. All methods are
// safe for concurrent use and none of them block beyond the queue's own lock.
type Queue interface {
	// Push enqueues a task at the default priority. It always succeeds.
	Push(task *types.Task) bool

	// Pop removes the next task according to the queue's discipline. It
	// returns false when the queue is empty.
	Pop() (*types.Task, bool)

	// Empty reports whether the queue held no tasks at the time of the call.
	// The answer may be stale by the time the caller acts on it.
	Empty() bool

	// Len reports the number of queued tasks at the time of the call.
	Len() int
}

// PriorityQueue is a Queue that also accepts an explicit priority per task.
type PriorityQueue interface {
	Queue

	// PushPriority enqueues a task with the given priority. Higher values are
	// dequeued first.
	PushPriority(task *types.Task, priority int) bool
}
