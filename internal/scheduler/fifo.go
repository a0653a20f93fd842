package scheduler

import (
	"container/list"
	"sync"

	"github.com/utkarsh5026/tpool/internal/types"
)

// fifoQueue is a mutex-guarded first-in first-out task queue.
//
// Ordering is global across producers: tasks leave in the order their Push
// calls acquired the lock.
type fifoQueue struct {
	mu    sync.Mutex
	tasks *list.List
}

// NewFIFO creates an empty FIFO queue.
func NewFIFO() Queue {
	return &fifoQueue{tasks: list.New()}
}

func (q *fifoQueue) Push(task *types.Task) bool {
	q.mu.Lock()
	q.tasks.PushBack(task)
	q.mu.Unlock()
	return true
}

func (q *fifoQueue) Pop() (*types.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.tasks.Front()
	if front == nil {
		return nil, false
	}

	task, ok := q.tasks.Remove(front).(*types.Task)
	if !ok {
		panic("fifoQueue.Pop: invalid type assertion")
	}
	return task, true
}

func (q *fifoQueue) Empty() bool {
	return q.Len() == 0
}

func (q *fifoQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tasks.Len()
}
