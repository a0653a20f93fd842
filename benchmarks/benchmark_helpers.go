// Package benchmarks measures ThreadPool throughput and latency under
// synthetic workloads for both queue kinds.
package benchmarks

import (
	"io"
	"slices"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/utkarsh5026/tpool/pool"
)

// queueKindConfig names a queue kind for benchmark sub-runs.
type queueKindConfig struct {
	name string
	kind pool.QueueKind
}

func allQueueKinds() []queueKindConfig {
	return []queueKindConfig{
		{name: "Normal", kind: pool.Normal},
		{name: "Priority", kind: pool.Priority},
	}
}

// runQueueKindBenchmark runs benchFunc once per queue kind.
func runQueueKindBenchmark(b *testing.B, benchFunc func(b *testing.B, kind pool.QueueKind)) {
	b.Helper()
	for _, q := range allQueueKinds() {
		b.Run(q.name, func(b *testing.B) {
			benchFunc(b, q.kind)
		})
	}
}

// newBenchPool builds a silent pool that is force-stopped when b ends.
func newBenchPool(b *testing.B, opts ...pool.Option) *pool.ThreadPool {
	b.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	p, err := pool.New(append([]pool.Option{pool.WithLogger(logger)}, opts...)...)
	if err != nil {
		b.Fatalf("create pool: %v", err)
	}
	b.Cleanup(func() { p.Stop(false) })
	return p
}

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations int) func(workerID, task int) (int, error) {
	return func(_, task int) (int, error) {
		result := 0
		for i := range iterations {
			result += i * task
		}
		return result, nil
	}
}

// ioBoundWork simulates an I/O operation with a delay
func ioBoundWork(delay time.Duration) func(workerID, task int) (int, error) {
	return func(_, task int) (int, error) {
		time.Sleep(delay)
		return task * 2, nil
	}
}

// mixedWork simulates a realistic workload with variable processing time
func mixedWork() func(workerID, task int) (int, error) {
	return func(_, task int) (int, error) {
		time.Sleep(time.Duration(task%10) * 100 * time.Microsecond)

		result := 0
		for i := range 1000 {
			result += i
		}
		return result + task, nil
	}
}

// submitBatch submits tasks 0..n-1 and waits for all of them.
func submitBatch(b *testing.B, p *pool.ThreadPool, n int, fn func(workerID, task int) (int, error)) {
	b.Helper()

	futures := make([]*pool.Future[int], n)
	for i := range n {
		futures[i] = pool.Submit1Priority(p, i%8, fn, i)
	}
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			b.Fatalf("task failed: %v", err)
		}
	}
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
