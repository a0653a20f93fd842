package pool

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// queueKindConfig names a queue kind for table-driven tests.
type queueKindConfig struct {
	name string
	kind QueueKind
}

// allQueueKinds returns every queueing discipline a pool can be built with.
func allQueueKinds() []queueKindConfig {
	return []queueKindConfig{
		{name: "Normal", kind: Normal},
		{name: "Priority", kind: Priority},
	}
}

// runQueueKindTest runs fn once per queue kind as a subtest.
func runQueueKindTest(t *testing.T, fn func(t *testing.T, kind QueueKind)) {
	t.Helper()
	for _, q := range allQueueKinds() {
		t.Run(q.name, func(t *testing.T) {
			fn(t, q.kind)
		})
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestPool builds a pool with a silent logger and force-stops it when the
// test ends.
func newTestPool(t *testing.T, opts ...Option) *ThreadPool {
	t.Helper()

	p, err := New(append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { p.Stop(false) })
	return p
}

// waitIdle waits until n workers are parked.
func waitIdle(t *testing.T, p *ThreadPool, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return p.NumIdle() == n }, waitFor, tick,
		"expected %d idle workers, have %d", n, p.NumIdle())
}

// gate blocks tasks until it is opened and counts how many are blocked on it.
type gate struct {
	ch      chan struct{}
	once    sync.Once
	waiting atomic.Int32
}

func newGate() *gate {
	return &gate{ch: make(chan struct{})}
}

// wait blocks the calling task until open is called.
func (g *gate) wait() {
	g.waiting.Add(1)
	<-g.ch
}

func (g *gate) open() {
	g.once.Do(func() { close(g.ch) })
}

// waitBlocked waits until n tasks are blocked on the gate.
func (g *gate) waitBlocked(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return int(g.waiting.Load()) >= n }, waitFor, tick)
}
