package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// monday is 2026-10-19, a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2026, time.October, 19, hour, minute, 0, 0, time.UTC)
}

// TestExpand_DropsPastInstants checks that instants already in the past are dropped.
func TestExpand_DropsPastInstants(t *testing.T) {
	t.Parallel()

	rule := &Rule{
		Days:            []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday},
		StartHour:       9,
		EndHour:         10,
		IntervalMinutes: 30,
	}

	got := Expand(rule, monday(9, 5), 1)
	require.Equal(t, []time.Time{monday(9, 30)}, got)
}

// TestExpand_NonDivisorInterval checks that the minute cursor restarts every hour.
func TestExpand_NonDivisorInterval(t *testing.T) {
	t.Parallel()

	sunday := time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC)
	rule := &Rule{
		Days:            []time.Weekday{time.Sunday},
		StartHour:       10,
		EndHour:         12,
		IntervalMinutes: 25,
	}

	at := func(h, m int) time.Time {
		return time.Date(2026, time.October, 18, h, m, 0, 0, time.UTC)
	}

	want := []time.Time{at(10, 0), at(10, 25), at(10, 50), at(11, 0), at(11, 25), at(11, 50)}
	require.Equal(t, want, Expand(rule, sunday, 1))
}

// TestExpand_Properties verifies hour bounds, minute alignment, ordering and
// the lower bound for a grid of rules and start times.
func TestExpand_Properties(t *testing.T) {
	t.Parallel()

	starts := []time.Time{
		monday(0, 0),
		monday(9, 59),
		monday(13, 17),
		monday(23, 59),
	}

	for interval := 1; interval < 60; interval += 7 {
		for startHour := 0; startHour < 23; startHour += 5 {
			rule := &Rule{
				Days:            []time.Weekday{time.Sunday, time.Monday, time.Wednesday, time.Saturday},
				StartHour:       startHour,
				EndHour:         min(startHour+3, 23),
				IntervalMinutes: interval,
			}

			for _, now := range starts {
				got := Expand(rule, now, 7)

				for i, instant := range got {
					require.False(t, instant.Before(now), "instant %s before now %s", instant, now)
					require.GreaterOrEqual(t, instant.Hour(), rule.StartHour)
					require.Less(t, instant.Hour(), rule.EndHour)
					require.Zero(t, instant.Minute()%interval, "minute %d not aligned to %d", instant.Minute(), interval)
					require.True(t, rule.HasDay(instant.Weekday()))

					if i > 0 {
						require.True(t, instant.After(got[i-1]), "not strictly increasing at %d", i)
					}
				}
			}
		}
	}
}

// TestExpand_Horizon checks horizon handling and day filtering.
func TestExpand_Horizon(t *testing.T) {
	t.Parallel()

	rule := &Rule{
		Days:            []time.Weekday{time.Tuesday},
		StartHour:       8,
		EndHour:         9,
		IntervalMinutes: 30,
	}

	require.Empty(t, Expand(rule, monday(0, 0), 0))
	require.Empty(t, Expand(rule, monday(0, 0), 1))
	require.Equal(t, []time.Time{
		time.Date(2026, time.October, 20, 8, 0, 0, 0, time.UTC),
		time.Date(2026, time.October, 20, 8, 30, 0, 0, time.UTC),
	}, Expand(rule, monday(12, 0), 2))

	// Eight days end on the next Monday; nine reach the next Tuesday.
	require.Len(t, Expand(rule, monday(0, 0), 8), 2)
	require.Len(t, Expand(rule, monday(0, 0), 9), 4)
	require.Nil(t, Expand(nil, monday(0, 0), 3))
}

// TestExpand_IncludesNow verifies that an instant equal to now is kept.
func TestExpand_IncludesNow(t *testing.T) {
	t.Parallel()

	rule := &Rule{Days: []time.Weekday{time.Monday}, StartHour: 9, EndHour: 10, IntervalMinutes: 30}

	require.Equal(t, []time.Time{monday(9, 30)}, Expand(rule, monday(9, 30), 1))
}

// TestExpand_LocalCalendar verifies expansion happens in the location of now.
func TestExpand_LocalCalendar(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2026, time.October, 19, 0, 30, 0, 0, loc) // Monday locally, Sunday in UTC.
	rule := &Rule{Days: []time.Weekday{time.Monday}, StartHour: 1, EndHour: 2, IntervalMinutes: 60}

	got := Expand(rule, now, 1)
	require.Len(t, got, 1)
	require.Equal(t, time.Monday, got[0].Weekday())
	require.Equal(t, 1, got[0].Hour())
	require.Equal(t, loc, got[0].Location())
}

// TestBetween verifies the closed catch-up window.
func TestBetween(t *testing.T) {
	t.Parallel()

	rule := DefaultRule()
	now := monday(10, 45)

	got := Between(rule, now.Add(-20*time.Minute), now.Add(5*time.Second))
	require.Equal(t, []time.Time{monday(10, 40)}, got)

	// Both ends are inclusive.
	got = Between(rule, monday(10, 0), monday(10, 20))
	require.Equal(t, []time.Time{monday(10, 0), monday(10, 20)}, got)

	// Window spanning midnight picks up both days.
	rule = &Rule{Days: []time.Weekday{time.Sunday, time.Monday}, StartHour: 0, EndHour: 23, IntervalMinutes: 30}
	got = Between(rule, monday(0, 0).Add(-90*time.Minute), monday(0, 10))
	require.Equal(t, []time.Time{monday(0, 0).Add(-90 * time.Minute), monday(0, 0)}, got)

	require.Nil(t, Between(rule, monday(1, 0), monday(0, 0)))
	require.Nil(t, Between(nil, monday(0, 0), monday(1, 0)))
}
