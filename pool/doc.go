// Package pool provides a resizable thread pool that runs submitted functions
// on background workers and hands back a Future for each result.
//
// Every worker is bound to its own OS thread for its whole life. Submitted
// tasks wait in one queue whose discipline is fixed when the pool is built:
//
//   - Normal: first-in first-out across all submitters
//   - Priority: higher priority first, submission order among equals
//
// # Basic Usage
//
//	p, err := pool.New(pool.WithThreadCount(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	f := pool.Submit(p, func(workerID int) (string, error) {
//	    return fmt.Sprintf("hello from worker %d", workerID), nil
//	})
//	msg, err := f.Get()
//
// # Priorities
//
//	p, _ := pool.New(pool.WithThreadCount(1), pool.WithQueueKind(pool.Priority))
//	pool.SubmitPriority(p, 5, urgent)
//	pool.SubmitPriority(p, 1, routine)
//
// # Bound Arguments
//
// Submit1, Submit2 and Submit3 bind arguments at submission time:
//
//	f := pool.Submit2(p, func(workerID int, x, y float64) (float64, error) {
//	    return x * y, nil
//	}, 1.5, 2.0)
//
// # Resizing and Stopping
//
//   - Resize(n): grow immediately, or flag the surplus workers to exit after
//     their current task without waiting for them
//   - Stop(true): run everything already queued, then join all workers
//   - Stop(false): discard queued tasks, then join all workers
//   - ClearQueue(): discard queued tasks but keep the workers
//
// A discarded task never runs; its Future fails with ErrTaskDiscarded.
//
// # Error Handling
//
// A task's error, or a panic converted to *PanicError, is delivered through
// its Future only. Workers never die because of a task. Functions queued with
// Execute have no Future; their panics are logged with the worker id.
//
// # Configuration Options
//
//   - WithThreadCount(n): number of workers, n >= 0 (default: detected parallelism)
//   - WithQueueKind(kind): Normal or Priority (default: Normal)
//   - WithLogger(l): logrus logger for lifecycle events and escaped panics
//   - WithMetrics(reg, namespace): Prometheus collectors
//   - WithTracerProvider(tp): one OpenTelemetry span per task
//   - WithRateLimit(tasksPerSecond, burst): throttle task starts
//   - WithCPUPinning(true): pin worker threads to CPUs
package pool
