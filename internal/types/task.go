package types

import (
	"fmt"
	"runtime"
	"time"
)

// TaskFunc is the type-erased shape every unit of work is reduced to before
// it is queued: a single call that receives the id of the worker running it.
type TaskFunc func(workerID int)

// Task is one queued unit of work. It is consumed exactly once, either by Run
// on a worker or by Discard when the queue is cleared.
type Task struct {
	run     func(workerID int) error
	discard func(err error)

	// Priority is the priority the task was submitted with. Only the priority
	// queue orders by it.
	Priority int

	// EnqueuedAt is set when the task is created and is used for queue-wait
	// accounting.
	EnqueuedAt time.Time
}

// NewTask wraps a raw TaskFunc. The function is invoked as-is: nothing
// recovers its panics and nothing observes its result, so any failure escapes
// to whoever calls Run.
func NewTask(fn TaskFunc, priority int) *Task {
	return &Task{
		run: func(workerID int) error {
			fn(workerID)
			return nil
		},
		Priority:   priority,
		EnqueuedAt: time.Now(),
	}
}

// Run invokes the task with the given worker id. The returned error is the
// task's own outcome, reported for instrumentation only; callers of wrapped
// tasks observe it through their Future.
func (t *Task) Run(workerID int) error {
	return t.run(workerID)
}

// Discard drops the task without invoking it. A wrapped task resolves its
// future with err so that readers do not block forever.
func (t *Task) Discard(err error) {
	if t.discard != nil {
		t.discard(err)
	}
}

// Func erases the task to its TaskFunc form.
func (t *Task) Func() TaskFunc {
	return func(workerID int) {
		_ = t.run(workerID)
	}
}

// Wrap binds fn into a Task and returns the Future that the task resolves.
// A panic inside fn is recovered and delivered to the future as a *PanicError.
func Wrap[R any](fn func(workerID int) (R, error), priority int) (*Task, *Future[R]) {
	promise, future := NewPromise[R]()

	task := &Task{
		run: func(workerID int) error {
			value, err := callWithRecovery(fn, workerID)
			promise.Resolve(value, err)
			return err
		},
		discard: func(err error) {
			promise.Fail(err)
		},
		Priority:   priority,
		EnqueuedAt: time.Now(),
	}

	return task, future
}

// PanicError carries a value recovered from a panicking task along with the
// stack of the goroutine at the time of the panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panic: %v\nstack trace:\n%s", e.Value, e.Stack)
}

// Unwrap exposes the recovered value when the task panicked with an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func callWithRecovery[R any](fn func(workerID int) (R, error), workerID int) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = &PanicError{Value: r, Stack: buf[:n]}
		}
	}()

	return fn(workerID)
}
