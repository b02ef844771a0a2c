package alarm

import (
	"slices"
	"time"
)

const (
	// MaxHorizonDays bounds how many calendar days are armed at once.
	MaxHorizonDays = 14
	// MaxLookback bounds a catch-up window.
	MaxLookback = 24 * time.Hour

	minutesPerHour = 60
)

// Expand returns the alarm instants of the rule for horizonDays calendar days
// starting at local midnight of now, in now's location. Instants before now
// are dropped. The result is sorted ascending without duplicates.
func Expand(rule *Rule, now time.Time, horizonDays int) []time.Time {
	if rule == nil || horizonDays <= 0 {
		return nil
	}

	var (
		result = make([]time.Time, 0, estimateCapacity(rule, horizonDays))
		today  = midnight(now)
	)

	for d := range horizonDays {
		day := today.AddDate(0, 0, d)

		result = appendDay(result, rule, day, func(t time.Time) bool {
			return !t.Before(now)
		})
	}

	return sortUnique(result)
}

// Between returns the alarm instants of the rule that fall in the closed
// window [start, end], iterating days from local midnight of start.
func Between(rule *Rule, start, end time.Time) []time.Time {
	if rule == nil || end.Before(start) {
		return nil
	}

	result := make([]time.Time, 0)

	for day := midnight(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		result = appendDay(result, rule, day, func(t time.Time) bool {
			return !t.Before(start) && !t.After(end)
		})
	}

	return sortUnique(result)
}

// appendDay appends the instants of one calendar day accepted by keep.
// The minute cursor restarts at 0 for every hour, so an interval that does
// not divide 60 leaves a short last step (25 gives :00, :25, :50).
func appendDay(result []time.Time, rule *Rule, day time.Time, keep func(time.Time) bool) []time.Time {
	if rule.IntervalMinutes <= 0 || !rule.HasDay(day.Weekday()) {
		return result
	}

	year, month, date := day.Date()

	for h := rule.StartHour; h < rule.EndHour; h++ {
		for m := 0; m < minutesPerHour; m += rule.IntervalMinutes {
			t := time.Date(year, month, date, h, m, 0, 0, day.Location())

			// Wall times inside a DST gap normalise to another hour.
			if t.Hour() < rule.StartHour || t.Hour() >= rule.EndHour {
				continue
			}

			if keep(t) {
				result = append(result, t)
			}
		}
	}

	return result
}

// midnight returns local midnight of t's calendar day.
func midnight(t time.Time) time.Time {
	year, month, day := t.Date()

	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func sortUnique(times []time.Time) []time.Time {
	slices.SortFunc(times, func(a, b time.Time) int {
		return a.Compare(b)
	})

	return slices.CompactFunc(times, func(a, b time.Time) bool {
		return a.Equal(b)
	})
}

func estimateCapacity(rule *Rule, horizonDays int) int {
	if rule.IntervalMinutes <= 0 || rule.EndHour <= rule.StartHour {
		return 0
	}

	perHour := (minutesPerHour + rule.IntervalMinutes - 1) / rule.IntervalMinutes

	return perHour * (rule.EndHour - rule.StartHour) * len(rule.Days) * (horizonDays/7 + 1)
}
