package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/logger"
	"github.com/oshokin/work-alarm/internal/service/common"
)

// ErrInvalidLookback is returned for a catch-up window outside [0, alarm.MaxLookback].
var ErrInvalidLookback = errors.New("invalid lookback")

// RuleChange holds the rule fields set on the command line. Nil fields keep
// the current value.
type RuleChange struct {
	// Days replaces the weekdays when non-nil.
	Days []time.Weekday
	// StartHour replaces the start hour when non-nil.
	StartHour *int
	// EndHour replaces the end hour when non-nil.
	EndHour *int
	// IntervalMinutes replaces the interval when non-nil.
	IntervalMinutes *int
}

// Empty reports whether nothing would change.
func (c *RuleChange) Empty() bool {
	return c.Days == nil && c.StartHour == nil && c.EndHour == nil && c.IntervalMinutes == nil
}

// Apply returns a copy of rule with the change applied.
func (c *RuleChange) Apply(rule *alarm.Rule) *alarm.Rule {
	next := rule.Clone()
	if next == nil {
		next = alarm.DefaultRule()
	}

	if c.Days != nil {
		next.Days = append([]time.Weekday(nil), c.Days...)
	}

	if c.StartHour != nil {
		next.StartHour = *c.StartHour
	}

	if c.EndHour != nil {
		next.EndHour = *c.EndHour
	}

	if c.IntervalMinutes != nil {
		next.IntervalMinutes = *c.IntervalMinutes
	}

	next.Normalize()

	return next
}

// Status prints the settings, armed state and daemon process state. When
// the daemon is not reachable the stored settings are printed instead.
func Status(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "status")

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}

	defer s.Close()

	pids, err := common.FindProcesses(common.ExecutableName(common.ServerExecutable))
	if err != nil {
		logger.WarnKV(ctx, "Unable to list processes", "error", err)
	}

	st, err := s.client.Status(ctx)
	if err != nil {
		if !unavailable(err) {
			return err
		}

		logger.DebugKV(ctx, "Daemon is not reachable, reading the store", "error", err)

		settings, err := loadOffline(ctx, s.cfg)
		if err != nil {
			return err
		}

		s.printer.settings(settings, false, nil, daemonState{address: s.address, pids: pids})

		return nil
	}

	s.printer.settings(st.Settings, st.Armed, st.Pending, daemonState{
		address:   s.address,
		pids:      pids,
		reachable: true,
		nextWake:  st.NextWake,
	})

	return nil
}

// Enable asks the daemon to turn alarms on.
func Enable(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "enable")

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}

	defer s.Close()

	st, err := s.client.Enable(ctx)
	if err != nil {
		return err
	}

	s.printer.changed("Alarms enabled", st.Settings, st.Pending)

	return nil
}

// Disable asks the daemon to turn alarms off.
func Disable(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "disable")

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}

	defer s.Close()

	st, err := s.client.Disable(ctx)
	if err != nil {
		return err
	}

	s.printer.changed("Alarms disabled", st.Settings, nil)

	return nil
}

// UpdateRule reads the current rule, applies the change and stores the result.
func UpdateRule(ctx context.Context, opts *Options, change *RuleChange) error {
	ctx = logger.WithName(ctx, "rule")

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}

	defer s.Close()

	current, err := s.client.Status(ctx)
	if err != nil {
		return err
	}

	if change.Empty() {
		s.printer.changed("Rule unchanged", current.Settings, current.Pending)

		return nil
	}

	st, err := s.client.UpdateRule(ctx, change.Apply(current.Settings.Rule))
	if err != nil {
		return err
	}

	s.printer.changed("Rule updated", st.Settings, st.Pending)

	return nil
}

// Preview prints the alarm instants of the next days.
func Preview(ctx context.Context, opts *Options, days int) error {
	ctx = logger.WithName(ctx, "preview")

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}

	defer s.Close()

	instants, err := s.client.Preview(ctx, days)
	if err != nil {
		return err
	}

	s.printer.instants("Upcoming alarms", instants, 0)

	return nil
}

// CatchUp presents missed alarms through the daemon, or directly from the
// store when the daemon is not reachable.
func CatchUp(ctx context.Context, opts *Options, lookback time.Duration) error {
	ctx = logger.WithName(ctx, "catch-up")

	if lookback < 0 || lookback > alarm.MaxLookback {
		return fmt.Errorf("%w: %s is outside 0 to %s", ErrInvalidLookback, lookback, alarm.MaxLookback)
	}

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}

	defer s.Close()

	instants, err := s.client.CatchUp(ctx, lookback)
	if err != nil {
		if !unavailable(err) {
			return err
		}

		logger.InfoKV(ctx, "Daemon is not reachable, catching up offline", "server_address", s.address)

		instants, err = catchUpOffline(ctx, s.cfg, s.now(), lookback)
		if err != nil {
			return err
		}
	}

	s.printer.instants("Missed alarms", instants, 0)

	return nil
}
