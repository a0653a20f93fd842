package pool

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/tpool/internal/cpu"
)

// Option is a functional option for configuring a ThreadPool.
type Option func(*poolConfig)

type poolConfig struct {
	threadCount    int
	queueKind      QueueKind
	logger         logrus.FieldLogger
	registerer     prometheus.Registerer
	namespace      string
	tracerProvider trace.TracerProvider
	rateLimiter    *rate.Limiter
	pinThreads     bool
}

func defaultConfig() *poolConfig {
	return &poolConfig{
		threadCount: cpu.Parallelism(),
		queueKind:   Normal,
		namespace:   "tpool",
	}
}

func newDefaultLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// WithThreadCount sets the number of worker threads started by New.
// Zero is allowed and yields a pool that only queues until it is resized;
// a negative count makes New fail with ErrInvalidThreadCount.
// If not specified, defaults to the detected hardware parallelism.
func WithThreadCount(count int) Option {
	return func(cfg *poolConfig) {
		cfg.threadCount = count
	}
}

// WithQueueKind selects the queueing discipline. Defaults to Normal.
func WithQueueKind(kind QueueKind) Option {
	return func(cfg *poolConfig) {
		cfg.queueKind = kind
	}
}

// WithLogger sets the logger used for worker lifecycle events and for task
// failures that escape the normal result path.
// If not specified, a logrus logger writing warnings to stderr is used.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *poolConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMetrics registers Prometheus collectors for the pool on reg under the
// given namespace. Every pool adds a constant "pool" label holding its id, so
// several pools can share one registry.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(cfg *poolConfig) {
		cfg.registerer = reg
		if namespace != "" {
			cfg.namespace = namespace
		}
	}
}

// WithTracerProvider enables one span per executed task.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *poolConfig) {
		cfg.tracerProvider = tp
	}
}

// WithRateLimit caps how fast the pool as a whole starts tasks.
// tasksPerSecond is the sustained rate and burst the number of tasks that may
// start back to back. Workers wait for a token after dequeuing a task.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *poolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithCPUPinning pins each worker's OS thread to the CPU matching its worker
// id, modulo the number of CPUs. Platforms without affinity support log a
// warning and run unpinned.
func WithCPUPinning(enabled bool) Option {
	return func(cfg *poolConfig) {
		cfg.pinThreads = enabled
	}
}
