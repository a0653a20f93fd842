// Command tpdemo walks through the ThreadPool API: futures, bound
// arguments, panics, resizing, idle counting, priorities, Pop, GetThread and
// graceful shutdown.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/utkarsh5026/tpool/internal/config"
	"github.com/utkarsh5026/tpool/pool"
)

var (
	configPath = flag.String("config", "", "YAML or JSON config file")
	threads    = flag.Int("threads", 3, "initial thread count (overridden by the config file)")
	ciMode     = flag.Bool("ci", false, "plain output without a progress bar")
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

// step is one demo scenario. It runs against the shared pool.
type step struct {
	name string
	run  func(d *demo) error
}

type demo struct {
	pool     *pool.ThreadPool
	settings config.Demo
	logger   *logrus.Logger
	opts     []pool.Option
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		_, _ = red.Fprintf(os.Stderr, "tpdemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := &config.FileConfig{}
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return err
	}
	settings, err := cfg.ToDemo()
	if err != nil {
		return err
	}
	opts, err := cfg.ToOptions()
	if err != nil {
		return err
	}

	// The config file comes last so that it wins over the flag.
	opts = append([]pool.Option{pool.WithThreadCount(*threads), pool.WithLogger(logger)}, opts...)

	p, err := pool.New(opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	d := &demo{pool: p, settings: settings, logger: logger, opts: opts}
	steps := []step{
		{"pool size", (*demo).size},
		{"futures with arguments", (*demo).futures},
		{"tasks without futures", (*demo).simpleTasks},
		{"panic propagation", (*demo).panics},
		{"resizing", (*demo).resize},
		{"idle threads", (*demo).idle},
		{"priority queue", (*demo).priorities},
		{"pop", (*demo).pop},
		{"thread access", (*demo).threadAccess},
		{"graceful shutdown", (*demo).shutdown},
	}

	_, _ = bold.Println("=== THREADPOOL WALKTHROUGH ===")
	fmt.Println()

	var bar *progressbar.ProgressBar
	if !*ciMode {
		bar = progressbar.NewOptions(len(steps),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Running scenarios"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionClearOnFinish(),
		)
	}

	results := make([]stepResult, 0, len(steps))
	for i, s := range steps {
		_, _ = bold.Printf("%d. %s\n", i+1, s.name)

		start := time.Now()
		err := s.run(d)
		results = append(results, stepResult{name: s.name, elapsed: time.Since(start), err: err})

		if err != nil {
			_, _ = red.Printf("   failed: %v\n", err)
		}
		fmt.Println()
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	renderSummary(results, d.pool.Stats())

	for _, r := range results {
		if r.err != nil {
			return errors.New("some scenarios failed")
		}
	}
	_, _ = green.Println("=== ALL SCENARIOS COMPLETED ===")
	return nil
}

type stepResult struct {
	name    string
	elapsed time.Duration
	err     error
}

func renderSummary(results []stepResult, stats pool.Stats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Scenario", "Time", "Result")
	for i, r := range results {
		status := green.Sprint("ok")
		if r.err != nil {
			status = red.Sprint("failed")
		}
		_ = table.Append(fmt.Sprint(i+1), r.name, r.elapsed.Round(time.Millisecond).String(), status)
	}
	if err := table.Render(); err != nil {
		_, _ = red.Println("could not render summary table")
	}

	counters := tablewriter.NewWriter(os.Stdout)
	counters.Header("Submitted", "Executed", "Failed", "Discarded")
	_ = counters.Append(
		fmt.Sprint(stats.Submitted),
		fmt.Sprint(stats.Executed),
		fmt.Sprint(stats.Failed),
		fmt.Sprint(stats.Discarded),
	)
	_ = counters.Render()
}

func (d *demo) size() error {
	fmt.Printf("   pool %s has %d threads\n", d.pool.ID()[:8], d.pool.Size())
	return nil
}

func (d *demo) futures() error {
	delay := d.settings.TaskDelay

	futures := make([]*pool.Future[float64], 0, d.settings.Calculations)
	for i := range d.settings.Calculations {
		futures = append(futures, pool.Submit2(d.pool, func(workerID int, x, y float64) (float64, error) {
			fmt.Printf("   thread %d calculating %.1f * %.1f\n", workerID, x, y)
			time.Sleep(delay)
			return x * y, nil
		}, float64(i)*1.5, float64(i)*2.0))
	}

	for i, f := range futures {
		v, err := f.Get()
		if err != nil {
			return fmt.Errorf("future %d: %w", i, err)
		}
		fmt.Printf("   future %d result: %.2f\n", i, v)
	}
	return nil
}

func (d *demo) simpleTask(workerID int) {
	fmt.Printf("   thread %d executing simple task\n", workerID)
	time.Sleep(d.settings.TaskDelay)
}

func (d *demo) simpleTasks() error {
	for range d.settings.SimpleTasks {
		d.pool.Execute(d.simpleTask)
	}
	return nil
}

func (d *demo) panics() error {
	_, err := pool.Submit(d.pool, func(workerID int) (struct{}, error) {
		panic(fmt.Sprintf("test panic from thread %d", workerID))
	}).Get()

	var pe *pool.PanicError
	if !errors.As(err, &pe) {
		return fmt.Errorf("expected a panic error, got %v", err)
	}
	_, _ = yellow.Printf("   caught as expected: %v\n", pe.Value)
	return nil
}

func (d *demo) resize() error {
	fmt.Printf("   current size: %d\n", d.pool.Size())

	d.pool.Resize(d.settings.GrowTo)
	fmt.Printf("   after resize to %d: %d\n", d.settings.GrowTo, d.pool.Size())

	for range d.settings.SimpleTasks {
		d.pool.Execute(d.simpleTask)
	}
	time.Sleep(6 * d.settings.TaskDelay)

	d.pool.Resize(d.settings.ShrinkTo)
	fmt.Printf("   after resize to %d: %d\n", d.settings.ShrinkTo, d.pool.Size())

	if d.pool.Size() != d.settings.ShrinkTo {
		return fmt.Errorf("expected %d threads after shrink", d.settings.ShrinkTo)
	}
	return nil
}

func (d *demo) idle() error {
	fmt.Printf("   idle threads: %d\n", d.pool.NumIdle())
	for range d.settings.SimpleTasks {
		d.pool.Execute(d.simpleTask)
	}
	fmt.Printf("   idle threads after adding tasks: %d\n", d.pool.NumIdle())
	time.Sleep(4 * d.settings.TaskDelay)
	fmt.Printf("   idle threads once drained: %d\n", d.pool.NumIdle())
	return nil
}

func (d *demo) priorities() error {
	opts := append(slices.Clone(d.opts),
		pool.WithThreadCount(0),
		pool.WithQueueKind(pool.Priority),
	)
	pp, err := pool.New(opts...)
	if err != nil {
		return err
	}

	task := func(workerID int, message string, priority int) (string, error) {
		fmt.Printf("   thread %d [priority %d]: %s\n", workerID, priority, message)
		return message, nil
	}

	pool.Submit2Priority(pp, 10, task, "high priority task", 10)
	pool.Submit2Priority(pp, 1, task, "low priority task", 1)
	pool.Submit2Priority(pp, 5, task, "medium priority task", 5)
	pool.Submit2Priority(pp, 10, task, "another high priority", 10)

	// Start the workers only now so that the whole batch is ordered.
	pp.Resize(d.settings.PriorityThreads)
	pp.Stop(true)
	return nil
}

func (d *demo) pop() error {
	saved := d.pool.Size()
	d.pool.Resize(0)
	defer d.pool.Resize(saved)

	d.pool.Execute(d.simpleTask)

	task, ok := d.pool.Pop()
	if !ok {
		_, _ = yellow.Println("   no tasks to pop")
		return nil
	}
	fmt.Println("   popped a task, running it here")
	task(999)
	return nil
}

func (d *demo) threadAccess() error {
	th, err := d.pool.GetThread(0)
	if err != nil {
		return err
	}
	fmt.Printf("   thread 0: os thread %d, state %s, %d tasks run\n", th.OSThreadID(), th.State(), th.Executed())

	if _, err := d.pool.GetThread(d.pool.Size()); !errors.Is(err, pool.ErrThreadIndexOutOfRange) {
		return fmt.Errorf("expected out of range error, got %v", err)
	}
	return nil
}

func (d *demo) shutdown() error {
	for range 2 {
		d.pool.Execute(d.simpleTask)
	}
	fmt.Println("   stopping pool gracefully")
	d.pool.Stop(true)

	if s := d.pool.Stats(); s.Queued != 0 || s.Threads != 0 {
		return fmt.Errorf("pool not drained: %+v", s)
	}
	return nil
}
