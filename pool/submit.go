package pool

import "github.com/utkarsh5026/tpool/internal/types"

// Submit queues fn at the default priority and returns a Future for its
// result. It never blocks on task execution.
//
// fn receives the id of the worker that runs it. An error returned by fn, or
// a panic inside it, is delivered through the Future and never affects the
// pool or other tasks.
//
// Example:
//
//	f := pool.Submit(p, func(workerID int) (int, error) {
//	    return 6 * 7, nil
//	})
//	v, err := f.Get()
func Submit[R any](p *ThreadPool, fn func(workerID int) (R, error)) *Future[R] {
	return SubmitPriority(p, 0, fn)
}

// SubmitPriority is Submit with an explicit priority. Higher values run first
// on a Priority pool; a Normal pool ignores the priority.
func SubmitPriority[R any](p *ThreadPool, priority int, fn func(workerID int) (R, error)) *Future[R] {
	task, future := types.Wrap(fn, priority)
	p.enqueue(task)
	return future
}

// Submit1 queues fn with one bound argument. arg is captured by value at
// submission time.
func Submit1[A, R any](p *ThreadPool, fn func(workerID int, a A) (R, error), a A) *Future[R] {
	return Submit1Priority(p, 0, fn, a)
}

// Submit1Priority is Submit1 with an explicit priority.
func Submit1Priority[A, R any](p *ThreadPool, priority int, fn func(workerID int, a A) (R, error), a A) *Future[R] {
	return SubmitPriority(p, priority, func(workerID int) (R, error) {
		return fn(workerID, a)
	})
}

// Submit2 queues fn with two bound arguments.
//
// Example:
//
//	f := pool.Submit2(p, func(workerID int, x, y float64) (float64, error) {
//	    return x * y, nil
//	}, 1.5, 2.0)
func Submit2[A, B, R any](p *ThreadPool, fn func(workerID int, a A, b B) (R, error), a A, b B) *Future[R] {
	return Submit2Priority(p, 0, fn, a, b)
}

// Submit2Priority is Submit2 with an explicit priority.
func Submit2Priority[A, B, R any](p *ThreadPool, priority int, fn func(workerID int, a A, b B) (R, error), a A, b B) *Future[R] {
	return SubmitPriority(p, priority, func(workerID int) (R, error) {
		return fn(workerID, a, b)
	})
}

// Submit3 queues fn with three bound arguments.
func Submit3[A, B, C, R any](p *ThreadPool, fn func(workerID int, a A, b B, c C) (R, error), a A, b B, c C) *Future[R] {
	return Submit3Priority(p, 0, fn, a, b, c)
}

// Submit3Priority is Submit3 with an explicit priority.
func Submit3Priority[A, B, C, R any](p *ThreadPool, priority int, fn func(workerID int, a A, b B, c C) (R, error), a A, b B, c C) *Future[R] {
	return SubmitPriority(p, priority, func(workerID int) (R, error) {
		return fn(workerID, a, b, c)
	})
}

// Execute queues fn without a Future. Nothing observes its outcome: a panic in
// fn is caught and logged by the worker that runs it.
func (p *ThreadPool) Execute(fn TaskFunc) {
	p.ExecutePriority(0, fn)
}

// ExecutePriority is Execute with an explicit priority.
func (p *ThreadPool) ExecutePriority(priority int, fn TaskFunc) {
	p.enqueue(types.NewTask(fn, priority))
}
