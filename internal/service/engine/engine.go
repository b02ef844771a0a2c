package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/logger"
	"github.com/oshokin/work-alarm/internal/service/catchup"
	"github.com/oshokin/work-alarm/internal/service/notify"
	"github.com/oshokin/work-alarm/internal/service/store"
	"github.com/oshokin/work-alarm/internal/service/wake"
)

const (
	// DefaultHorizonDays arms today and tomorrow.
	DefaultHorizonDays = 2
	// DefaultLookback is how far back catch-up looks when no lookback is given.
	DefaultLookback = 20 * time.Minute
)

// Scheduler arms and disarms alarm triggers.
type Scheduler interface {
	Arm(ctx context.Context, rule *alarm.Rule, horizonDays int) int
	Disarm(ctx context.Context)
	Pending() []time.Time
	Armed() bool
}

// Presenter shows alarms and reports whether it may do so.
type Presenter interface {
	catchup.Notifier
	Permission(ctx context.Context) notify.Permission
	Background() bool
}

// Waker runs the periodic background catch-up.
type Waker interface {
	Register(job wake.Job) error
	Unregister()
	NextWake() time.Time
}

// Options configures an Engine.
type Options struct {
	// HorizonDays is how many calendar days are armed at once.
	HorizonDays int
	// Lookback is the default catch-up window.
	Lookback time.Duration
	// Wake registers the background catch-up when alarms are enabled.
	Wake bool
	// Location is the calendar alarms are previewed in.
	Location *time.Location
	// Now overrides the wall clock.
	Now func() time.Time
}

// Engine is the alarm state of one process.
type Engine struct {
	// store persists the settings.
	store *store.Store
	// scheduler owns the armed triggers.
	scheduler Scheduler
	// presenter shows missed alarms and reports permission.
	presenter Presenter
	// catchUp surfaces missed alarms.
	catchUp *catchup.Engine
	// waker runs background catch-up; nil disables it.
	waker Waker
	// opts holds the effective options.
	opts Options

	// mu serialises state transitions.
	mu sync.Mutex
	// observers are notified with the armed flag after every transition.
	observers []func(armed bool)
}

// New wires the engine. The waker may be nil.
func New(st *store.Store, scheduler Scheduler, presenter Presenter, waker Waker, opts Options) *Engine {
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = DefaultHorizonDays
	}

	opts.HorizonDays = min(opts.HorizonDays, alarm.MaxHorizonDays)

	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}

	if opts.Location == nil {
		opts.Location = time.Local
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		store:     st,
		scheduler: scheduler,
		presenter: presenter,
		catchUp:   catchup.New(presenter),
		waker:     waker,
		opts:      opts,
	}
}

// OnStateChange registers an observer of the armed flag.
func (e *Engine) OnStateChange(fn func(armed bool)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observers = append(e.observers, fn)
}

// Restore loads the persisted settings and arms them when enabled.
func (e *Engine) Restore(ctx context.Context) *alarm.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings := e.store.Load(ctx)
	if settings.Enabled {
		e.armLocked(ctx, settings.Rule)
	}

	logger.InfoKV(ctx, "Settings restored", "enabled", settings.Enabled, "rule", settings.Rule.String())
	e.notifyLocked()

	return settings
}

// Enable turns alarms on. It fails with alarm.ErrPermissionDenied, leaving
// everything unchanged, when notifications are not permitted.
func (e *Engine) Enable(ctx context.Context, actor *alarm.Actor) (*alarm.Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if permission := e.presenter.Permission(ctx); permission != notify.PermissionGranted {
		return nil, fmt.Errorf("%w: notification permission is %s", alarm.ErrPermissionDenied, permission)
	}

	next := e.store.Current()
	next.Enabled = true

	if err := e.saveLocked(ctx, next, actor); err != nil {
		return nil, err
	}

	e.armLocked(ctx, next.Rule)
	e.notifyLocked()

	return e.store.Current(), nil
}

// Disable turns alarms off, cancels every armed trigger and removes the
// background wake.
func (e *Engine) Disable(ctx context.Context, actor *alarm.Actor) (*alarm.Settings, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.store.Current()
	next.Enabled = false

	if err := e.saveLocked(ctx, next, actor); err != nil {
		return nil, err
	}

	e.scheduler.Disarm(ctx)

	if e.waker != nil {
		e.waker.Unregister()
	}

	e.notifyLocked()

	return e.store.Current(), nil
}

// UpdateRule replaces the rule and re-arms when alarms are enabled.
func (e *Engine) UpdateRule(ctx context.Context, actor *alarm.Actor, rule *alarm.Rule) (*alarm.Settings, error) {
	rule = rule.Clone()
	if rule != nil {
		rule.Normalize()
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.store.Current()
	next.Rule = rule

	if err := e.saveLocked(ctx, next, actor); err != nil {
		return nil, err
	}

	if next.Enabled {
		e.armLocked(ctx, rule)
		e.notifyLocked()
	}

	return e.store.Current(), nil
}

// Refresh re-arms the rolling horizon when alarms are enabled.
func (e *Engine) Refresh(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	settings := e.store.Current()
	if !settings.Enabled {
		return
	}

	e.scheduler.Arm(ctx, settings.Rule, e.opts.HorizonDays)
}

// CatchUp presents alarms of the last lookback window when alarms are
// enabled. A non-positive lookback takes the configured default; longer
// windows are cut to alarm.MaxLookback.
func (e *Engine) CatchUp(ctx context.Context, lookback time.Duration) []time.Time {
	if lookback <= 0 {
		lookback = e.opts.Lookback
	}

	lookback = min(lookback, alarm.MaxLookback)

	var rule *alarm.Rule
	if settings := e.store.Current(); settings.Enabled {
		rule = settings.Rule
	}

	return e.catchUp.Run(ctx, rule, e.now(), lookback)
}

// Settings returns a copy of the current settings.
func (e *Engine) Settings() *alarm.Settings {
	return e.store.Current()
}

// Armed reports whether triggers are armed.
func (e *Engine) Armed() bool {
	return e.scheduler.Armed()
}

// Pending returns the armed alarm instants.
func (e *Engine) Pending() []time.Time {
	return e.scheduler.Pending()
}

// NextWake returns the next background catch-up run, or the zero time when
// none is registered.
func (e *Engine) NextWake() time.Time {
	if e.waker == nil {
		return time.Time{}
	}

	return e.waker.NextWake()
}

// Preview expands the current rule over days calendar days, whether or not
// alarms are enabled.
func (e *Engine) Preview(days int) []time.Time {
	return alarm.Expand(e.store.Current().Rule, e.now(), days)
}

func (e *Engine) now() time.Time {
	return e.opts.Now().In(e.opts.Location)
}

func (e *Engine) saveLocked(ctx context.Context, next *alarm.Settings, actor *alarm.Actor) error {
	next.UpdatedAt = e.now()
	next.UpdatedBy = actor.Clone()

	if err := e.store.Save(ctx, next); err != nil {
		logger.ErrorKV(ctx, "Failed to save settings, keeping the previous ones", "error", err)

		return err
	}

	logger.InfoKV(ctx, "Settings saved",
		"enabled", next.Enabled,
		"rule", next.Rule.String(),
		"actor", next.UpdatedBy.String())

	return nil
}

func (e *Engine) armLocked(ctx context.Context, rule *alarm.Rule) {
	e.scheduler.Arm(ctx, rule, e.opts.HorizonDays)

	if e.waker == nil || !e.opts.Wake {
		return
	}

	if !e.presenter.Background() {
		logger.WarnKV(ctx, "Background wake is not available",
			"error", fmt.Errorf("%w: presenter cannot notify in the background", alarm.ErrUnsupportedCapability))

		return
	}

	err := e.waker.Register(func(ctx context.Context) {
		e.CatchUp(ctx, e.opts.Lookback)
	})
	if err != nil {
		logger.WarnKV(ctx, "Failed to register background wake", "error", err)
	}
}

func (e *Engine) notifyLocked() {
	armed := e.scheduler.Armed()

	for _, fn := range e.observers {
		fn(armed)
	}
}
