package pool

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/tpool/internal/scheduler"
	"github.com/utkarsh5026/tpool/internal/types"
)

// ThreadPool runs submitted tasks on a resizable set of workers, each locked
// to its own OS thread.
//
// Tasks wait in a single queue chosen at construction (FIFO or priority).
// Workers that find the queue empty park on a condition variable and are
// woken one at a time by submissions. The pool can be grown or shrunk while
// tasks are in flight and stopped either gracefully (queued work runs first)
// or forcibly (queued work is discarded).
//
// A ThreadPool must not be submitted to once Stop has started; the caller is
// responsible for that ordering.
type ThreadPool struct {
	id     string
	kind   QueueKind
	queue  scheduler.Queue
	pqueue scheduler.PriorityQueue // non-nil only for Priority pools

	mu    wakeMutex
	cond  *sync.Cond
	slots []*slot

	idle     atomic.Int64
	forced   atomic.Bool
	graceful atomic.Bool

	submitted atomic.Uint64
	executed  atomic.Uint64
	failed    atomic.Uint64
	discarded atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc

	logger     logrus.FieldLogger
	metrics    *poolMetrics
	tracer     trace.Tracer
	limiter    *rate.Limiter
	pinThreads bool

	stopOnce sync.Once
}

// New creates a pool and starts its workers.
//
// Default configuration:
//   - threads: detected hardware parallelism (at least 1)
//   - queue: Normal (FIFO)
//   - logger: logrus at warn level on stderr
//   - no metrics, tracing, rate limit or CPU pinning
//
// Example:
//
//	p, err := pool.New(pool.WithThreadCount(4), pool.WithQueueKind(pool.Priority))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
func New(opts ...Option) (*ThreadPool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.threadCount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreadCount, cfg.threadCount)
	}

	p := &ThreadPool{
		id:         uuid.NewString(),
		kind:       cfg.queueKind,
		tracer:     newTracer(cfg.tracerProvider),
		limiter:    cfg.rateLimiter,
		pinThreads: cfg.pinThreads,
	}
	p.cond = sync.NewCond(&p.mu)
	p.ctx, p.cancel = context.WithCancel(context.Background())

	switch cfg.queueKind {
	case Normal:
		p.queue = scheduler.NewFIFO()
	case Priority:
		pq := scheduler.NewPriority()
		p.queue, p.pqueue = pq, pq
	default:
		p.cancel()
		return nil, fmt.Errorf("unknown queue kind %d", int(cfg.queueKind))
	}

	logger := cfg.logger
	if logger == nil {
		logger = newDefaultLogger()
	}
	p.logger = logger.WithField("pool", p.id)

	if cfg.registerer != nil {
		m, err := newPoolMetrics(cfg.registerer, cfg.namespace, p)
		if err != nil {
			p.cancel()
			return nil, err
		}
		p.metrics = m
	}

	p.mu.Lock()
	p.slots = make([]*slot, 0, cfg.threadCount)
	for i := range cfg.threadCount {
		p.slots = append(p.slots, p.spawn(i))
	}
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"threads": cfg.threadCount,
		"queue":   cfg.queueKind.String(),
	}).Debug("pool started")

	return p, nil
}

// ID returns the unique id of this pool, used to label its logs and metrics.
func (p *ThreadPool) ID() string { return p.id }

// QueueKind returns the queueing discipline the pool was built with.
func (p *ThreadPool) QueueKind() QueueKind { return p.kind }

// IsRunning reports whether no stop has begun.
func (p *ThreadPool) IsRunning() bool {
	return !p.forced.Load() && !p.graceful.Load()
}

// IsStopped reports whether a graceful or forced stop has begun.
func (p *ThreadPool) IsStopped() bool {
	return !p.IsRunning()
}

// Size returns the number of worker slots the pool currently owns. Workers cut
// off by a shrinking Resize are not counted even if they are still finishing
// their last task.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}

// NumIdle returns the number of workers parked waiting for work.
func (p *ThreadPool) NumIdle() int {
	return int(p.idle.Load())
}

// Stats returns a snapshot of the pool's counters. Threads and Idle are read
// under the same lock, so Idle never exceeds Threads within one snapshot.
func (p *ThreadPool) Stats() Stats {
	p.mu.Lock()
	threads := len(p.slots)
	idle := int(p.idle.Load())
	p.mu.Unlock()

	return Stats{
		Threads:   threads,
		Idle:      idle,
		Queued:    p.queue.Len(),
		Submitted: p.submitted.Load(),
		Executed:  p.executed.Load(),
		Failed:    p.failed.Load(),
		Discarded: p.discarded.Load(),
	}
}

// GetThread returns the diagnostic handle of the worker at index i.
func (p *ThreadPool) GetThread(i int) (*Thread, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= len(p.slots) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrThreadIndexOutOfRange, i, len(p.slots))
	}
	return p.slots[i].thread, nil
}

// Resize grows or shrinks the pool to count workers. It does nothing once a
// stop has begun.
//
// Growing starts the new workers immediately. Shrinking flags the workers
// with the highest indices to exit and returns without waiting for them:
// a worker that is mid-task finishes that task first and then exits.
func (p *ThreadPool) Resize(count int) {
	if count < 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.IsStopped() {
		return
	}

	old := len(p.slots)
	switch {
	case count > old:
		for i := old; i < count; i++ {
			p.slots = append(p.slots, p.spawn(i))
		}

	case count < old:
		for i := old - 1; i >= count; i-- {
			s := p.slots[i]
			s.stop.Store(true)
			if s.parked {
				s.parked = false
				p.idle.Add(-1)
			}
			p.slots[i] = nil
		}
		p.slots = p.slots[:count]
		p.cond.Broadcast()

	default:
		return
	}

	p.logger.WithFields(logrus.Fields{"from": old, "to": count}).Debug("pool resized")
	debugLog("resize %d -> %d, idle=%d", old, count, p.idle.Load())
}

// Stop shuts the pool down and blocks until every worker it owns has exited.
//
// With graceful set, every task already queued runs before the workers exit.
// Otherwise queued tasks are discarded (their futures fail with
// ErrTaskDiscarded) and workers exit as soon as their current task returns.
//
// Repeating a stop in the same mode is a no-op, as is a graceful stop after a
// forced one. A forced stop may follow a graceful one that is still draining.
// Stop must not be called from inside a task running on the same pool.
func (p *ThreadPool) Stop(graceful bool) {
	if graceful {
		if p.forced.Load() || !p.graceful.CompareAndSwap(false, true) {
			return
		}
	} else {
		if !p.forced.CompareAndSwap(false, true) {
			return
		}
		p.cancel()
	}

	p.mu.Lock()
	slots := slices.Clone(p.slots)
	if !graceful {
		for _, s := range slots {
			s.stop.Store(true)
		}
	}
	p.mu.Unlock()

	if !graceful {
		p.ClearQueue()
	}

	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, s := range slots {
		<-s.thread.done
	}

	p.ClearQueue()

	p.mu.Lock()
	p.slots = nil
	p.mu.Unlock()

	p.stopOnce.Do(func() {
		p.cancel()
		p.metrics.unregister()
	})

	p.logger.WithField("graceful", graceful).Debug("pool stopped")
}

// Close stops the pool gracefully.
func (p *ThreadPool) Close() error {
	p.Stop(true)
	return nil
}

// ClearQueue discards every queued task without running it and returns how
// many were dropped. Futures of dropped tasks fail with ErrTaskDiscarded.
// Tasks already running are not affected.
func (p *ThreadPool) ClearQueue() int {
	n := 0
	for {
		task, ok := p.queue.Pop()
		if !ok {
			break
		}
		p.discard(task, ErrTaskDiscarded)
		n++
	}

	if n > 0 {
		p.logger.WithField("tasks", n).Debug("queue cleared")
	}
	return n
}

// Pop removes the next queued task and hands it to the caller instead of a
// worker. Calling the returned function runs the task and resolves its future.
// It returns false if the queue was empty.
func (p *ThreadPool) Pop() (TaskFunc, bool) {
	task, ok := p.queue.Pop()
	if !ok {
		return nil, false
	}
	return task.Func(), true
}

// enqueue pushes task and wakes one parked worker.
func (p *ThreadPool) enqueue(task *types.Task) {
	if p.pqueue != nil {
		p.pqueue.PushPriority(task, task.Priority)
	} else {
		p.queue.Push(task)
	}

	p.submitted.Add(1)
	p.metrics.taskSubmitted()

	p.mu.Lock()
	p.cond.Signal()
	p.mu.Unlock()
}

func (p *ThreadPool) discard(task *types.Task, err error) {
	task.Discard(err)
	p.discarded.Add(1)
	p.metrics.taskDiscarded()
}
