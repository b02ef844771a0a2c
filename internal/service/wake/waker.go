package wake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oshokin/work-alarm/internal/logger"
)

const (
	// MinInterval is the shortest wake period.
	MinInterval = 15 * time.Minute
	// DefaultBudget bounds one wake run.
	DefaultBudget = 30 * time.Second

	midnightSchedule = "@midnight"
)

// Job is one background run. Its context expires after the wake budget.
type Job func(ctx context.Context)

// Options configures a Waker.
type Options struct {
	// Interval is the period of the registered wake job.
	Interval time.Duration
	// Budget bounds each job run.
	Budget time.Duration
	// Location is the time zone of the midnight job.
	Location *time.Location
}

// Waker owns the cron scheduler and its entries.
type Waker struct {
	// ctx is the base context of job runs.
	ctx context.Context
	// cron schedules the jobs.
	cron *cron.Cron
	// interval is the wake period.
	interval time.Duration
	// budget bounds each run.
	budget time.Duration

	// mu protects the entry ids.
	mu sync.Mutex
	// wakeID is the periodic entry; zero when not registered.
	wakeID cron.EntryID
	// midnightID is the midnight entry; zero when not registered.
	midnightID cron.EntryID
}

// New creates a stopped waker.
func New(ctx context.Context, opts Options) *Waker {
	if opts.Interval < MinInterval {
		opts.Interval = MinInterval
	}

	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}

	if opts.Location == nil {
		opts.Location = time.Local
	}

	ctx = logger.WithName(ctx, "wake")
	log := cronLogger{ctx: ctx}

	return &Waker{
		ctx: ctx,
		cron: cron.New(
			cron.WithLocation(opts.Location),
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		interval: opts.Interval,
		budget:   opts.Budget,
	}
}

// Register adds the periodic wake job. Only the first registration takes
// effect until Unregister is called.
func (w *Waker) Register(job Job) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.wakeID != 0 {
		return nil
	}

	id, err := w.cron.AddFunc("@every "+w.interval.String(), w.wrap("catch-up", job))
	if err != nil {
		return fmt.Errorf("register wake: %w", err)
	}

	w.wakeID = id

	logger.InfoKV(w.ctx, "Background wake registered", "interval", w.interval)

	return nil
}

// Unregister removes the periodic wake job.
func (w *Waker) Unregister() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.wakeID == 0 {
		return
	}

	w.cron.Remove(w.wakeID)
	w.wakeID = 0

	logger.Info(w.ctx, "Background wake unregistered")
}

// Registered reports whether the periodic wake job is registered.
func (w *Waker) Registered() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.wakeID != 0
}

// OnMidnight adds a job that runs at every local midnight. Only the first
// call takes effect.
func (w *Waker) OnMidnight(job Job) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.midnightID != 0 {
		return nil
	}

	id, err := w.cron.AddFunc(midnightSchedule, w.wrap("midnight", job))
	if err != nil {
		return fmt.Errorf("register midnight job: %w", err)
	}

	w.midnightID = id

	return nil
}

// NextWake returns the next run of the periodic wake job, or the zero time.
func (w *Waker) NextWake() time.Time {
	w.mu.Lock()
	id := w.wakeID
	w.mu.Unlock()

	if id == 0 {
		return time.Time{}
	}

	return w.cron.Entry(id).Next
}

// Start runs the scheduler in its own goroutine.
func (w *Waker) Start() {
	w.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to return.
func (w *Waker) Stop() {
	<-w.cron.Stop().Done()
}

func (w *Waker) wrap(name string, job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(w.ctx, w.budget)
		defer cancel()

		ctx = logger.WithKV(ctx, "job", name)
		started := time.Now()

		job(ctx)

		logger.DebugKV(ctx, "Background job finished", "elapsed", time.Since(started))
	}
}

// cronLogger adapts the context logger to cron.Logger.
type cronLogger struct {
	// ctx carries the logger.
	ctx context.Context
}

// Info implements cron.Logger. Routine scheduler chatter goes to debug.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	logger.DebugKV(l.ctx, msg, keysAndValues...)
}

// Error implements cron.Logger.
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.ErrorKV(l.ctx, msg, append(keysAndValues, "error", err)...)
}
