// Package calendar generates the deterministic date sequences behind the
// weekly roster and the statistics grids. Every function takes its anchor
// date explicitly; nothing here reads the wall clock.
package calendar

import "time"

// NextDays returns n contiguous calendar days starting at anchor inclusive.
func NextDays(anchor time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	d := DateOnly(anchor)
	for i := 0; i < n; i++ {
		days = append(days, d.AddDate(0, 0, i))
	}
	return days
}

// WeekStartingMonday returns the Monday on or before the given date.
func WeekStartingMonday(d time.Time) time.Time {
	d = DateOnly(d)
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

// WeekEndSunday returns the Sunday on or after the given date.
func WeekEndSunday(d time.Time) time.Time {
	return WeekStartingMonday(d).AddDate(0, 0, 6)
}

// WeekRange returns the Monday-to-Sunday interval containing the date.
func WeekRange(d time.Time) Interval {
	monday := WeekStartingMonday(d)
	return Interval{Start: monday, End: monday.AddDate(0, 0, 6)}
}

// MonthRange returns the first-to-last-day interval of the date's month.
func MonthRange(d time.Time) Interval {
	y, m, _ := d.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return Interval{Start: start, End: start.AddDate(0, 1, -1)}
}

// YearRange returns the Jan 1 to Dec 31 interval of the date's year.
func YearRange(d time.Time) Interval {
	y := d.Year()
	return Interval{
		Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// LastWeeks returns the week intervals for the n weeks preceding the
// anchor's week plus the anchor's week itself, oldest first. Drives the
// trailing-weeks bar chart on the personal statistics page.
func LastWeeks(anchor time.Time, n int) []Interval {
	ranges := make([]Interval, 0, n+1)
	start := DateOnly(anchor).AddDate(0, 0, -7*n)
	for i := 0; i <= n; i++ {
		ranges = append(ranges, WeekRange(start.AddDate(0, 0, 7*i)))
	}
	return ranges
}
