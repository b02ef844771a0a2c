package alarm

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultStartHour is the first hour of the default alarm window.
	DefaultStartHour = 10
	// DefaultEndHour is the exclusive end hour of the default alarm window.
	DefaultEndHour = 18
	// DefaultIntervalMinutes is the default step between alarms within an hour.
	DefaultIntervalMinutes = 20

	// maxHour is the largest hour value accepted by a rule.
	maxHour = 23
)

// Rule is a weekly recurrence: on each of Days, alarms fire every
// IntervalMinutes starting at the top of each hour in [StartHour, EndHour).
type Rule struct {
	// Days is the set of weekdays the rule applies to (0 is Sunday).
	Days []time.Weekday
	// StartHour is the first hour (local time) when alarms fire.
	StartHour int
	// EndHour is the exclusive upper bound hour (local time).
	EndHour int
	// IntervalMinutes is the minute step; the cursor restarts at 0 every hour.
	IntervalMinutes int
}

// DefaultRule returns the rule used on first run: Sunday to Thursday,
// 10:00 to 18:00, every 20 minutes.
func DefaultRule() *Rule {
	return &Rule{
		Days: []time.Weekday{
			time.Sunday,
			time.Monday,
			time.Tuesday,
			time.Wednesday,
			time.Thursday,
		},
		StartHour:       DefaultStartHour,
		EndHour:         DefaultEndHour,
		IntervalMinutes: DefaultIntervalMinutes,
	}
}

// Validate checks the rule invariants.
func (r *Rule) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: rule is not set", ErrInvalidRule)
	}

	if len(r.Days) == 0 {
		return fmt.Errorf("%w: at least one day is required", ErrInvalidRule)
	}

	for _, day := range r.Days {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("%w: day %d is out of range 0-6", ErrInvalidRule, day)
		}
	}

	if r.StartHour < 0 || r.StartHour > maxHour {
		return fmt.Errorf("%w: start hour %d is out of range 0-23", ErrInvalidRule, r.StartHour)
	}

	if r.EndHour < 0 || r.EndHour > maxHour {
		return fmt.Errorf("%w: end hour %d is out of range 0-23", ErrInvalidRule, r.EndHour)
	}

	if r.StartHour >= r.EndHour {
		return fmt.Errorf("%w: start hour %d must be before end hour %d", ErrInvalidRule, r.StartHour, r.EndHour)
	}

	if r.IntervalMinutes <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidRule, r.IntervalMinutes)
	}

	return nil
}

// Normalize sorts the days and drops duplicates in place.
func (r *Rule) Normalize() {
	slices.Sort(r.Days)
	r.Days = slices.Compact(r.Days)
}

// HasDay reports whether the rule applies to the given weekday.
func (r *Rule) HasDay(day time.Weekday) bool {
	return slices.Contains(r.Days, day)
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Days = slices.Clone(r.Days)

	return &cloned
}

// Equal reports whether two rules describe the same recurrence.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}

	return r.StartHour == other.StartHour &&
		r.EndHour == other.EndHour &&
		r.IntervalMinutes == other.IntervalMinutes &&
		slices.Equal(r.Days, other.Days)
}

// String renders the rule for logs, e.g. "Sun,Mon 10:00-18:00 every 20m".
func (r *Rule) String() string {
	if r == nil {
		return "<no rule>"
	}

	days := make([]byte, 0, len(r.Days)*4)
	for i, day := range r.Days {
		if i > 0 {
			days = append(days, ',')
		}

		days = append(days, day.String()[:3]...)
	}

	return fmt.Sprintf("%s %02d:00-%02d:00 every %dm", days, r.StartHour, r.EndHour, r.IntervalMinutes)
}

// ParseWeekday accepts a day number (0 is Sunday), a full English day name or
// its three-letter abbreviation, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if n, err := strconv.Atoi(s); err == nil {
		if n < int(time.Sunday) || n > int(time.Saturday) {
			return 0, fmt.Errorf("%w: day %d is out of range 0-6", ErrInvalidRule, n)
		}

		return time.Weekday(n), nil
	}

	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if s == name || s == name[:3] {
			return day, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown day %q", ErrInvalidRule, s)
}
