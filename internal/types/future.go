package types

import (
	"context"
	"sync"
	"time"
)

// Result is the outcome of a single task: either a value or the error that
// the task produced.
type Result[R any] struct {
	Value R
	Error error
}

// Future is the read side of a task's result channel. It is resolved exactly
// once by the paired Promise and can be read any number of times, from any
// number of goroutines.
//
// Type parameters:
//   - R: The type of the value produced by the task
type Future[R any] struct {
	done   chan struct{}
	result Result[R]
}

// Promise is the write side of a task's result channel. Only the first call to
// Resolve has any effect.
type Promise[R any] struct {
	future *Future[R]
	once   sync.Once
}

// NewPromise creates a connected promise/future pair.
func NewPromise[R any]() (*Promise[R], *Future[R]) {
	f := &Future[R]{done: make(chan struct{})}
	return &Promise[R]{future: f}, f
}

// Resolve publishes the task outcome to the future. It reports whether this
// call was the one that resolved it.
func (p *Promise[R]) Resolve(value R, err error) bool {
	resolved := false
	p.once.Do(func() {
		p.future.result = Result[R]{Value: value, Error: err}
		close(p.future.done)
		resolved = true
	})
	return resolved
}

// Fail resolves the future with err and the zero value.
func (p *Promise[R]) Fail(err error) bool {
	var zero R
	return p.Resolve(zero, err)
}

// Get blocks until the task has been resolved and returns its outcome.
// A task that failed or panicked yields its error here, never at submission.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.result.Value, f.result.Error
}

// GetWithContext blocks until the task is resolved or ctx is done, whichever
// comes first. When ctx wins, the context error is returned and the task is
// left untouched.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Error
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// GetWithTimeout is GetWithContext with a deadline relative to now.
func (f *Future[R]) GetWithTimeout(timeout time.Duration) (R, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.GetWithContext(ctx)
}

// TryGet returns the outcome without blocking. ready is false if the task
// has not been resolved yet.
func (f *Future[R]) TryGet() (value R, err error, ready bool) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Error, true
	default:
		var zero R
		return zero, nil, false
	}
}

// Done returns a channel that is closed once the future is resolved, for use
// in select statements.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the future has been resolved.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
