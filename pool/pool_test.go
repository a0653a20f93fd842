package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadPool_GetThread(t *testing.T) {
	p := newTestPool(t, WithThreadCount(3))
	waitIdle(t, p, 3)

	for i := range 3 {
		th, err := p.GetThread(i)
		require.NoError(t, err)
		assert.Equal(t, i, th.ID())
		assert.Equal(t, ThreadParked, th.State())
		assert.False(t, th.StartedAt().IsZero())
	}

	for _, i := range []int{-1, 3, 100} {
		th, err := p.GetThread(i)
		assert.ErrorIs(t, err, ErrThreadIndexOutOfRange, "index %d", i)
		assert.Nil(t, th)
	}

	p.Resize(1)
	_, err := p.GetThread(1)
	assert.ErrorIs(t, err, ErrThreadIndexOutOfRange)
}

func TestThreadPool_ThreadHandle(t *testing.T) {
	p := newTestPool(t, WithThreadCount(1))

	var futures []*Future[int]
	for range 5 {
		futures = append(futures, Submit(p, func(id int) (int, error) { return id, nil }))
	}
	_, err := WaitAll(t.Context(), futures...)
	require.NoError(t, err)

	th, err := p.GetThread(0)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return th.Executed() == 5 }, waitFor, tick)
	assert.Equal(t, "parked", ThreadParked.String())
	assert.Equal(t, "ThreadState(9)", ThreadState(9).String())
}

func TestThreadPool_NumIdle(t *testing.T) {
	p := newTestPool(t, WithThreadCount(4))
	waitIdle(t, p, 4)

	g := newGate()
	defer g.open()
	for range 3 {
		p.Execute(func(int) { g.wait() })
	}
	g.waitBlocked(t, 3)
	waitIdle(t, p, 1)

	g.open()
	waitIdle(t, p, 4)
}

func TestThreadPool_ClearQueue(t *testing.T) {
	runQueueKindTest(t, func(t *testing.T, kind QueueKind) {
		p := newTestPool(t, WithThreadCount(0), WithQueueKind(kind))

		var invoked atomic.Int32
		futures := make([]*Future[int], 0, 8)
		for i := range 8 {
			futures = append(futures, SubmitPriority(p, i, func(int) (int, error) {
				invoked.Add(1)
				return i, nil
			}))
		}

		assert.Equal(t, 8, p.ClearQueue())
		assert.Equal(t, 0, p.ClearQueue())

		_, ok := p.Pop()
		assert.False(t, ok)

		for _, f := range futures {
			_, err := f.GetWithTimeout(waitFor)
			assert.ErrorIs(t, err, ErrTaskDiscarded)
		}

		// The pool stays usable.
		p.Resize(1)
		v, err := Submit(p, func(int) (int, error) { return 11, nil }).GetWithTimeout(waitFor)
		require.NoError(t, err)
		assert.Equal(t, 11, v)
		assert.Zero(t, invoked.Load())
		assert.True(t, p.IsRunning())
	})
}

func TestThreadPool_Pop(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		p := newTestPool(t, WithThreadCount(0))
		fn, ok := p.Pop()
		assert.False(t, ok)
		assert.Nil(t, fn)
	})

	t.Run("caller runs the task", func(t *testing.T) {
		p := newTestPool(t, WithThreadCount(0), WithQueueKind(Priority))

		low := SubmitPriority(p, 1, func(id int) (string, error) { return "low", nil })
		high := SubmitPriority(p, 9, func(id int) (int, error) { return id, nil })

		fn, ok := p.Pop()
		require.True(t, ok)
		assert.False(t, high.IsReady())

		fn(-7)
		v, err := high.Get()
		require.NoError(t, err)
		assert.Equal(t, -7, v)

		assert.False(t, low.IsReady())
		assert.Equal(t, 1, p.Stats().Queued)
	})
}

func TestThreadPool_Execute(t *testing.T) {
	t.Run("runs without a future", func(t *testing.T) {
		runQueueKindTest(t, func(t *testing.T, kind QueueKind) {
			p := newTestPool(t, WithThreadCount(2), WithQueueKind(kind))

			var wg sync.WaitGroup
			var sum atomic.Int64
			for i := range 100 {
				wg.Add(1)
				p.ExecutePriority(i%4, func(int) {
					defer wg.Done()
					sum.Add(int64(i))
				})
			}
			wg.Wait()
			assert.Equal(t, int64(4950), sum.Load())
		})
	})

	t.Run("panic is logged and the worker survives", func(t *testing.T) {
		logger, hook := logtest.NewNullLogger()
		p := newTestPool(t, WithThreadCount(1), WithLogger(logger))

		p.Execute(func(int) { panic("boom") })

		v, err := Submit(p, func(id int) (int, error) { return id, nil }).GetWithTimeout(waitFor)
		require.NoError(t, err)
		assert.Equal(t, 0, v)

		require.Eventually(t, func() bool {
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.ErrorLevel {
					return true
				}
			}
			return false
		}, waitFor, tick)

		var entry *logrus.Entry
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.ErrorLevel {
				entry = e
			}
		}
		assert.Equal(t, 0, entry.Data["worker"])
		assert.Equal(t, "boom", entry.Data["panic"])
		assert.Equal(t, p.ID(), entry.Data["pool"])

		require.Eventually(t, func() bool { return p.Stats().Failed == 1 }, waitFor, tick)
	})
}

func TestThreadPool_Stats(t *testing.T) {
	p := newTestPool(t, WithThreadCount(2))

	ok := Submit(p, func(int) (int, error) { return 1, nil })
	bad := Submit(p, func(int) (int, error) { return 0, assert.AnError })
	_, _ = ok.Get()
	_, _ = bad.Get()

	require.Eventually(t, func() bool { return p.Stats().Executed == 2 }, waitFor, tick)
	waitIdle(t, p, 2)

	p.Resize(0)
	Submit(p, func(int) (int, error) { return 0, nil })
	p.ClearQueue()

	s := p.Stats()
	assert.Equal(t, uint64(3), s.Submitted)
	assert.Equal(t, uint64(2), s.Executed)
	assert.Equal(t, uint64(1), s.Failed)
	assert.Equal(t, uint64(1), s.Discarded)
	assert.Equal(t, 0, s.Threads)
	assert.Equal(t, 0, s.Queued)
}

func TestThreadPool_MultiplePools(t *testing.T) {
	a := newTestPool(t, WithThreadCount(2))
	b := newTestPool(t, WithThreadCount(3), WithQueueKind(Priority))
	assert.NotEqual(t, a.ID(), b.ID())

	var futures []*Future[int]
	for i := range 20 {
		target := a
		if i%2 == 1 {
			target = b
		}
		futures = append(futures, Submit1(target, func(_ int, n int) (int, error) {
			return n * n, nil
		}, i))
	}

	results, err := WaitAll(t.Context(), futures...)
	require.NoError(t, err)
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}

	a.Stop(false)
	assert.True(t, b.IsRunning())
	v, err := Submit(b, func(int) (int, error) { return 5, nil }).GetWithTimeout(waitFor)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestThreadPool_ManyProducers(t *testing.T) {
	runQueueKindTest(t, func(t *testing.T, kind QueueKind) {
		p := newTestPool(t, WithThreadCount(4), WithQueueKind(kind))

		const producers, perProducer = 8, 250
		var wg sync.WaitGroup
		var ran atomic.Int64

		for w := range producers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range perProducer {
					p.ExecutePriority((w+i)%5, func(int) { ran.Add(1) })
				}
			}()
		}
		wg.Wait()

		p.Stop(true)
		assert.Equal(t, int64(producers*perProducer), ran.Load())
		assert.Equal(t, uint64(producers*perProducer), p.Stats().Executed)
	})
}

func TestThreadPool_WorkerIDsStayInRange(t *testing.T) {
	p := newTestPool(t, WithThreadCount(3))

	seen := sync.Map{}
	var futures []*Future[int]
	for range 60 {
		futures = append(futures, Submit(p, func(id int) (int, error) {
			seen.Store(id, true)
			time.Sleep(100 * time.Microsecond)
			return id, nil
		}))
	}
	ids, err := WaitAll(t.Context(), futures...)
	require.NoError(t, err)

	for _, id := range ids {
		assert.True(t, id >= 0 && id < 3, "worker id %d out of range", id)
	}
}
