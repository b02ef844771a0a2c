package scheduler

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/logger"
)

// FireFunc receives the instant of a trigger that came due.
type FireFunc func(ctx context.Context, at time.Time)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation sets the location whose calendar the rule is expanded in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithNow overrides the wall clock.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// Scheduler keeps the set of armed triggers derived from one rule.
type Scheduler struct {
	// ctx is the base context of deliveries and trigger tokens.
	ctx context.Context
	// fire is called once per trigger that comes due.
	fire FireFunc
	// loc is the location alarms are computed in.
	loc *time.Location
	// now returns the current wall-clock time.
	now func() time.Time

	// deliveries is read-held across claiming and delivering a trigger.
	// Arm and Disarm take it exclusively, so once they return no trigger of
	// the previous rule is being delivered or will be.
	deliveries sync.RWMutex
	// mu protects triggers and rule.
	mu sync.Mutex
	// triggers maps Unix milliseconds of the instant to its trigger.
	triggers map[int64]*trigger
	// rule is the rule the triggers were built from; nil while disarmed.
	rule *alarm.Rule
}

// trigger is one armed alarm instant.
type trigger struct {
	// at is the instant the trigger fires at.
	at time.Time
	// timer is the pending runtime timer.
	timer *time.Timer
	// token is cancelled when the trigger is discarded.
	token context.Context
	// cancel cancels token.
	cancel context.CancelFunc
}

// deliveryKey marks the context of a delivery with its scheduler.
type deliveryKey struct{}

// New creates a disarmed scheduler that reports due instants to fire.
func New(ctx context.Context, fire FireFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:      logger.WithName(ctx, "scheduler"),
		fire:     fire,
		loc:      time.Local,
		now:      time.Now,
		triggers: make(map[int64]*trigger),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Arm replaces every pending trigger with triggers for the rule's instants
// within horizonDays calendar days, and returns how many were armed.
// Instants that are not strictly in the future are skipped. Arm waits for
// in-flight deliveries unless it is called from one with its context.
func (s *Scheduler) Arm(ctx context.Context, rule *alarm.Rule, horizonDays int) int {
	now := s.now().In(s.loc)
	instants := alarm.Expand(rule, now, horizonDays)

	defer s.exclude(ctx)()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllLocked()
	s.rule = rule.Clone()

	for _, at := range instants {
		delay := at.Sub(now)
		if delay <= 0 {
			continue
		}

		s.addLocked(at, delay)
	}

	kvs := []any{"rule", rule.String(), "horizon_days", horizonDays, "count", len(s.triggers)}
	if len(instants) > 0 {
		kvs = append(kvs, "next", instants[0].Format(time.RFC3339))
	}

	logger.InfoKV(ctx, "Alarms armed", kvs...)

	return len(s.triggers)
}

// Disarm cancels every pending trigger and waits for in-flight deliveries,
// unless it is called from one with its context. Nothing fires after Disarm
// returns. It is safe to call repeatedly.
func (s *Scheduler) Disarm(ctx context.Context) {
	defer s.exclude(ctx)()

	s.mu.Lock()
	defer s.mu.Unlock()

	cancelled := len(s.triggers)
	s.cancelAllLocked()
	s.rule = nil

	logger.InfoKV(ctx, "Alarms disarmed", "cancelled", cancelled)
}

// Pending returns the due times of the armed triggers in ascending order.
func (s *Scheduler) Pending() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]time.Time, 0, len(s.triggers))
	for _, tr := range s.triggers {
		result = append(result, tr.at)
	}

	slices.SortFunc(result, func(a, b time.Time) int {
		return a.Compare(b)
	})

	return result
}

// Rule returns the rule the scheduler is armed with, or nil.
func (s *Scheduler) Rule() *alarm.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rule.Clone()
}

// Armed reports whether the scheduler is armed.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rule != nil
}

// addLocked arms a trigger for at. The timer callback takes s.mu, so it
// cannot observe the map before the trigger is stored.
func (s *Scheduler) addLocked(at time.Time, delay time.Duration) {
	token, cancel := context.WithCancel(s.ctx)
	key := at.UnixMilli()

	tr := &trigger{
		at:     at,
		token:  token,
		cancel: cancel,
	}

	tr.timer = time.AfterFunc(delay, func() {
		s.fireTrigger(key, tr)
	})

	s.triggers[key] = tr
}

// exclude blocks deliveries and returns the release func. Inside a delivery
// of this scheduler it is a no-op.
func (s *Scheduler) exclude(ctx context.Context) func() {
	if owner, _ := ctx.Value(deliveryKey{}).(*Scheduler); owner == s {
		return func() {}
	}

	s.deliveries.Lock()

	return s.deliveries.Unlock
}

// fireTrigger claims the trigger and delivers it. A trigger that was
// cancelled or replaced before the claim is dropped.
func (s *Scheduler) fireTrigger(key int64, tr *trigger) {
	s.deliveries.RLock()
	defer s.deliveries.RUnlock()

	s.mu.Lock()

	current, ok := s.triggers[key]
	if !ok || current != tr || tr.token.Err() != nil {
		s.mu.Unlock()
		return
	}

	delete(s.triggers, key)
	s.mu.Unlock()

	tr.cancel()

	ctx := logger.WithKV(s.ctx, "alarm_at", tr.at.Format(time.RFC3339))
	ctx = context.WithValue(ctx, deliveryKey{}, s)
	logger.Info(ctx, "Alarm due")

	s.fire(ctx, tr.at)
}

func (s *Scheduler) cancelAllLocked() {
	for key, tr := range s.triggers {
		tr.timer.Stop()
		tr.cancel()
		delete(s.triggers, key)
	}
}
