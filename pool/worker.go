package pool

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/utkarsh5026/tpool/internal/cpu"
	"github.com/utkarsh5026/tpool/internal/types"
)

// ThreadState is the position of a worker in its run loop.
type ThreadState int32

const (
	// ThreadStarting: the worker goroutine has been spawned but has not yet
	// bound itself to an OS thread.
	ThreadStarting ThreadState = iota

	// ThreadDraining: the worker is popping and executing tasks without
	// waiting.
	ThreadDraining

	// ThreadParked: the worker found the queue empty and is waiting to be
	// woken.
	ThreadParked

	// ThreadExited: the worker loop has returned.
	ThreadExited
)

func (s ThreadState) String() string {
	switch s {
	case ThreadStarting:
		return "starting"
	case ThreadDraining:
		return "draining"
	case ThreadParked:
		return "parked"
	case ThreadExited:
		return "exited"
	default:
		return fmt.Sprintf("ThreadState(%d)", int32(s))
	}
}

// Thread is a read-only diagnostic handle to one worker. It stays valid after
// the worker has been removed from the pool. There is deliberately no way to
// join or detach a worker through it; the pool owns that.
type Thread struct {
	id        int
	startedAt time.Time
	osThread  atomic.Int64
	state     atomic.Int32
	executed  atomic.Uint64
	done      chan struct{}
}

func newThread(id int) *Thread {
	th := &Thread{
		id:        id,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
	th.osThread.Store(-1)
	return th
}

// ID returns the worker id passed to every task this worker runs.
func (t *Thread) ID() int { return t.id }

// OSThreadID returns the kernel id of the OS thread the worker is locked to,
// or -1 if it is not known yet or not available on this platform.
func (t *Thread) OSThreadID() int { return int(t.osThread.Load()) }

// State returns the current run-loop state of the worker.
func (t *Thread) State() ThreadState { return ThreadState(t.state.Load()) }

// Executed returns how many tasks this worker has run.
func (t *Thread) Executed() uint64 { return t.executed.Load() }

// StartedAt returns when the worker was spawned.
func (t *Thread) StartedAt() time.Time { return t.startedAt }

// Done is closed once the worker loop has exited.
func (t *Thread) Done() <-chan struct{} { return t.done }

func (t *Thread) setState(s ThreadState) { t.state.Store(int32(s)) }

// slot is one worker owned by the pool. stop is shared with the running loop
// so a slot cut off by Resize can still be told to exit after it has left
// the pool's collection.
type slot struct {
	stop   *atomic.Bool
	thread *Thread

	// parked is true while the worker is counted in idle. Guarded by the
	// pool's wake mutex.
	parked bool
}

// spawn starts a worker with the given id. Callers hold p.mu.
func (p *ThreadPool) spawn(id int) *slot {
	s := &slot{
		stop:   new(atomic.Bool),
		thread: newThread(id),
	}
	go p.run(s)
	return s
}

// run is the worker loop. It drains the queue, parks when there is nothing to
// do and returns once its own stop flag is raised, or once a graceful stop
// finds the queue empty.
func (p *ThreadPool) run(s *slot) {
	th := s.thread
	log := p.logger.WithField("worker", th.id)

	defer close(th.done)
	defer th.setState(ThreadExited)

	release, err := cpu.LockThread(th.id, p.pinThreads)
	defer release()
	if err != nil {
		log.WithError(err).Warn("could not pin worker thread")
	}
	th.osThread.Store(int64(cpu.ThreadID()))

	log.Debug("worker started")
	debugLog("worker %d started on os thread %d", th.id, th.OSThreadID())

	task, ok := p.queue.Pop()
	for {
		th.setState(ThreadDraining)
		for ok {
			p.execute(th, task, log)
			if s.stop.Load() {
				log.Debug("worker stopped")
				return
			}
			task, ok = p.queue.Pop()
		}

		if task, ok = p.park(s); !ok {
			log.Debug("worker exited")
			return
		}
	}
}

// park registers the worker as idle and waits until a task can be popped or
// the worker is told to exit. It returns false in the latter case.
func (p *ThreadPool) park(s *slot) (*types.Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s.thread.setState(ThreadParked)
	s.parked = true
	p.idle.Add(1)
	debugLog("worker %d parked, idle=%d", s.thread.id, p.idle.Load())

	var task *types.Task
	ok := false
	for {
		if s.stop.Load() {
			break
		}
		if task, ok = p.queue.Pop(); ok {
			break
		}
		if p.graceful.Load() {
			break
		}
		p.cond.Wait()
	}

	// Resize may already have uncounted a slot it cut off.
	if s.parked {
		s.parked = false
		p.idle.Add(-1)
	}

	return task, ok
}

// execute runs one task on th. Failures of wrapped tasks travel through their
// futures; anything that still escapes is logged here and swallowed so the
// worker keeps going.
func (p *ThreadPool) execute(th *Thread, task *types.Task, log logrus.FieldLogger) {
	if p.limiter != nil {
		if err := p.limiter.Wait(p.ctx); err != nil {
			p.discard(task, fmt.Errorf("%w: %w", ErrTaskDiscarded, err))
			return
		}
	}

	p.metrics.taskStarted(task.EnqueuedAt)
	span := p.startTaskSpan(p.ctx, th.id, task.Priority)
	start := time.Now()

	var err error
	defer func() {
		th.executed.Add(1)
		p.executed.Add(1)

		if r := recover(); r != nil {
			p.failed.Add(1)
			p.metrics.taskEscaped()
			err = fmt.Errorf("escaped panic: %v", r)
			log.WithField("panic", r).Error("task failure escaped to the worker loop")
			endTaskSpan(span, err)
			return
		}

		if err != nil {
			p.failed.Add(1)
		}
		p.metrics.taskFinished(time.Since(start), err)
		endTaskSpan(span, err)
	}()

	err = task.Run(th.id)
}
