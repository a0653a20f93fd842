package scheduler

import (
	"container/heap"
	"sync"

	"github.com/utkarsh5026/tpool/internal/types"
)

// prioritizedTask is a heap entry: the task plus the keys it is ordered by.
type prioritizedTask struct {
	task     *types.Task
	priority int
	seq      uint32
}

// taskHeap is a max-heap of prioritizedTask implementing heap.Interface.
//
// Entries compare by priority descending; equal priorities fall back to the
// wrap-safe submission order so each priority class stays FIFO.
type taskHeap []prioritizedTask

// Len returns the current number of tasks in the heap.
func (h taskHeap) Len() int {
	return len(h)
}

// Less reports whether the entry at i must be dequeued before the one at j.
func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return seqBefore(h[i].seq, h[j].seq)
}

// Swap swaps the position of two entries in the heap.
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push appends an entry. This is intended to meet the heap.Interface contract.
func (h *taskHeap) Push(x any) {
	entry, ok := x.(prioritizedTask)
	if !ok {
		panic("taskHeap.Push: invalid type assertion")
	}
	*h = append(*h, entry)
}

// Pop removes the last entry. This is intended to meet the heap.Interface
// contract.
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = prioritizedTask{}
	*h = old[:n-1]
	return item
}

// priorityQueue is a mutex-guarded heap of tasks ordered by priority and then
// by submission stamp.
//
// Architecture:
//   - container/heap keeps the next task at index 0
//   - Higher priority values are dequeued first
//   - Stamps come from an atomic 32-bit counter that is allowed to wrap
//
// Performance characteristics:
//   - Push: O(log n)
//   - Pop: O(log n)
type priorityQueue struct {
	mu    sync.Mutex
	heap  taskHeap
	stamp sequence
}

// NewPriority creates an empty priority queue.
func NewPriority() PriorityQueue {
	return newPriorityQueue()
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{heap: make(taskHeap, 0, 64)}
}

// Push enqueues task at priority 0.
func (q *priorityQueue) Push(task *types.Task) bool {
	return q.PushPriority(task, 0)
}

func (q *priorityQueue) PushPriority(task *types.Task, priority int) bool {
	entry := prioritizedTask{
		task:     task,
		priority: priority,
		seq:      q.stamp.take(),
	}

	q.mu.Lock()
	heap.Push(&q.heap, entry)
	q.mu.Unlock()
	return true
}

func (q *priorityQueue) Pop() (*types.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.heap.Len() == 0 {
		return nil, false
	}

	entry, ok := heap.Pop(&q.heap).(prioritizedTask)
	if !ok {
		panic("priorityQueue.Pop: invalid type assertion")
	}
	return entry.task, true
}

func (q *priorityQueue) Empty() bool {
	return q.Len() == 0
}

func (q *priorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}
