// Package config loads pool and demo settings from a YAML or JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/utkarsh5026/tpool/pool"
)

// FileConfig is the layout of a config file.
type FileConfig struct {
	Pool PoolConfig `yaml:"pool" json:"pool"`
	Demo DemoConfig `yaml:"demo" json:"demo"`
}

// PoolConfig mirrors the pool options. Zero values keep the pool defaults.
type PoolConfig struct {
	// Threads is a pointer so that an explicit 0 can be told apart from an
	// absent key.
	Threads    *int            `yaml:"threads" json:"threads"`
	Queue      string          `yaml:"queue" json:"queue"`
	PinThreads bool            `yaml:"pin_threads" json:"pin_threads"`
	LogLevel   string          `yaml:"log_level" json:"log_level"`
	RateLimit  RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig configures task start throttling.
type RateLimitConfig struct {
	TasksPerSecond float64 `yaml:"tasks_per_second" json:"tasks_per_second"`
	Burst          int     `yaml:"burst" json:"burst"`
}

// DemoConfig sizes the scenarios run by the demo driver.
type DemoConfig struct {
	Calculations    int    `yaml:"calculations" json:"calculations"`
	SimpleTasks     int    `yaml:"simple_tasks" json:"simple_tasks"`
	TaskDelay       string `yaml:"task_delay" json:"task_delay"`
	GrowTo          int    `yaml:"grow_to" json:"grow_to"`
	ShrinkTo        int    `yaml:"shrink_to" json:"shrink_to"`
	PriorityThreads int    `yaml:"priority_threads" json:"priority_threads"`
}

// Demo holds the parsed demo settings.
type Demo struct {
	Calculations    int
	SimpleTasks     int
	TaskDelay       time.Duration
	GrowTo          int
	ShrinkTo        int
	PriorityThreads int
}

// DefaultDemo returns the demo settings used when no file overrides them.
func DefaultDemo() Demo {
	return Demo{
		Calculations:    5,
		SimpleTasks:     3,
		TaskDelay:       50 * time.Millisecond,
		GrowTo:          5,
		ShrinkTo:        2,
		PriorityThreads: 2,
	}
}

// LoadFile reads a config file. The format is picked from the extension.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// ParseQueueKind maps "fifo"/"normal" and "priority" to a queue kind. An
// empty string selects Normal.
func ParseQueueKind(s string) (pool.QueueKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fifo", "normal":
		return pool.Normal, nil
	case "priority":
		return pool.Priority, nil
	default:
		return 0, fmt.Errorf("unknown queue kind: %q", s)
	}
}

// Logger builds a logrus logger writing to w at the configured level.
// Warn is used when no level is set.
func (f *FileConfig) Logger(w io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.WarnLevel)

	if f.Pool.LogLevel != "" {
		level, err := logrus.ParseLevel(f.Pool.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		logger.SetLevel(level)
	}
	return logger, nil
}

// ToOptions converts the pool section into pool options. The logger is not
// included; pass Logger's result through pool.WithLogger.
func (f *FileConfig) ToOptions() ([]pool.Option, error) {
	pc := f.Pool
	var opts []pool.Option

	if pc.Threads != nil {
		if *pc.Threads < 0 {
			return nil, fmt.Errorf("%w: %d", pool.ErrInvalidThreadCount, *pc.Threads)
		}
		opts = append(opts, pool.WithThreadCount(*pc.Threads))
	}

	kind, err := ParseQueueKind(pc.Queue)
	if err != nil {
		return nil, err
	}
	opts = append(opts, pool.WithQueueKind(kind))

	if pc.RateLimit.TasksPerSecond != 0 || pc.RateLimit.Burst != 0 {
		if pc.RateLimit.TasksPerSecond <= 0 || pc.RateLimit.Burst <= 0 {
			return nil, fmt.Errorf("invalid rate limit: %v tasks/s, burst %d",
				pc.RateLimit.TasksPerSecond, pc.RateLimit.Burst)
		}
		opts = append(opts, pool.WithRateLimit(pc.RateLimit.TasksPerSecond, pc.RateLimit.Burst))
	}

	if pc.PinThreads {
		opts = append(opts, pool.WithCPUPinning(true))
	}

	return opts, nil
}

// ToDemo applies the demo section over DefaultDemo.
func (f *FileConfig) ToDemo() (Demo, error) {
	dc := f.Demo
	demo := DefaultDemo()

	if dc.Calculations > 0 {
		demo.Calculations = dc.Calculations
	}
	if dc.SimpleTasks > 0 {
		demo.SimpleTasks = dc.SimpleTasks
	}
	if dc.TaskDelay != "" {
		d, err := time.ParseDuration(dc.TaskDelay)
		if err != nil {
			return demo, fmt.Errorf("invalid task delay: %w", err)
		}
		demo.TaskDelay = d
	}
	if dc.GrowTo > 0 {
		demo.GrowTo = dc.GrowTo
	}
	if dc.ShrinkTo > 0 {
		demo.ShrinkTo = dc.ShrinkTo
	}
	if dc.PriorityThreads > 0 {
		demo.PriorityThreads = dc.PriorityThreads
	}

	return demo, nil
}
