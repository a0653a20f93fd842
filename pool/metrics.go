package pool

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// poolMetrics holds the Prometheus collectors of one pool. A nil
// *poolMetrics is valid and records nothing.
type poolMetrics struct {
	registerer prometheus.Registerer
	collectors []prometheus.Collector

	submitted prometheus.Counter
	completed prometheus.Counter
	failed    prometheus.Counter
	discarded prometheus.Counter
	escaped   prometheus.Counter
	duration  prometheus.Histogram
	queueWait prometheus.Histogram
}

func newPoolMetrics(reg prometheus.Registerer, namespace string, p *ThreadPool) (*poolMetrics, error) {
	labels := prometheus.Labels{"pool": p.id}

	m := &poolMetrics{
		registerer: reg,
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tasks_submitted_total",
			Help:        "Total number of tasks pushed into the pool queue",
			ConstLabels: labels,
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tasks_completed_total",
			Help:        "Total number of tasks that finished without error",
			ConstLabels: labels,
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tasks_failed_total",
			Help:        "Total number of tasks that returned an error or panicked",
			ConstLabels: labels,
		}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tasks_discarded_total",
			Help:        "Total number of queued tasks dropped without running",
			ConstLabels: labels,
		}),
		escaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tasks_escaped_panics_total",
			Help:        "Total number of panics caught by the worker loop instead of a future",
			ConstLabels: labels,
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "task_duration_seconds",
			Help:        "Histogram of task execution time",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
		queueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "task_queue_wait_seconds",
			Help:        "Histogram of time tasks spent queued before a worker picked them up",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
	}

	threads := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "threads",
		Help:        "Current number of worker threads owned by the pool",
		ConstLabels: labels,
	}, func() float64 { return float64(p.Size()) })

	idle := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "idle_threads",
		Help:        "Current number of worker threads parked waiting for work",
		ConstLabels: labels,
	}, func() float64 { return float64(p.NumIdle()) })

	queued := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "queued_tasks",
		Help:        "Current number of tasks waiting in the queue",
		ConstLabels: labels,
	}, func() float64 { return float64(p.queue.Len()) })

	m.collectors = []prometheus.Collector{
		m.submitted,
		m.completed,
		m.failed,
		m.discarded,
		m.escaped,
		m.duration,
		m.queueWait,
		threads,
		idle,
		queued,
	}

	for i, c := range m.collectors {
		if err := reg.Register(c); err != nil {
			for _, registered := range m.collectors[:i] {
				reg.Unregister(registered)
			}
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
	}

	return m, nil
}

func (m *poolMetrics) taskSubmitted() {
	if m != nil {
		m.submitted.Inc()
	}
}

func (m *poolMetrics) taskDiscarded() {
	if m != nil {
		m.discarded.Inc()
	}
}

func (m *poolMetrics) taskEscaped() {
	if m != nil {
		m.escaped.Inc()
		m.failed.Inc()
	}
}

func (m *poolMetrics) taskStarted(enqueuedAt time.Time) {
	if m != nil && !enqueuedAt.IsZero() {
		m.queueWait.Observe(time.Since(enqueuedAt).Seconds())
	}
}

func (m *poolMetrics) taskFinished(elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	m.duration.Observe(elapsed.Seconds())
	if err != nil {
		m.failed.Inc()
		return
	}
	m.completed.Inc()
}

// unregister removes every collector of the pool from its registry.
func (m *poolMetrics) unregister() {
	if m == nil {
		return
	}
	for _, c := range m.collectors {
		m.registerer.Unregister(c)
	}
}
