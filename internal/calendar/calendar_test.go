package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDays(t *testing.T) {
	days := NextDays(date(2025, time.June, 28), 7)
	require.Len(t, days, 7)
	assert.Equal(t, date(2025, time.June, 28), days[0])
	assert.Equal(t, date(2025, time.July, 4), days[6], "runs across the month boundary")

	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].AddDate(0, 0, 1), days[i], "strictly increasing by one day")
	}
}

func TestNextDaysVariants(t *testing.T) {
	assert.Len(t, NextDays(date(2025, time.June, 10), 14), 14)
	assert.Len(t, NextDays(date(2025, time.June, 10), 25), 25)
}

func TestWeekStartingMonday(t *testing.T) {
	testCases := []struct {
		name     string
		in       time.Time
		expected time.Time
	}{
		{"wednesday", date(2025, time.June, 11), date(2025, time.June, 9)},
		{"monday returns itself", date(2025, time.June, 9), date(2025, time.June, 9)},
		{"sunday goes back six days", date(2025, time.June, 15), date(2025, time.June, 9)},
		{"crosses month boundary", date(2025, time.July, 2), date(2025, time.June, 30)},
		{"crosses year boundary", date(2026, time.January, 1), date(2025, time.December, 29)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, WeekStartingMonday(tc.in))
		})
	}
}

func TestWeekEndSunday(t *testing.T) {
	assert.Equal(t, date(2025, time.June, 15), WeekEndSunday(date(2025, time.June, 11)))
	assert.Equal(t, date(2025, time.June, 15), WeekEndSunday(date(2025, time.June, 15)))
}

func TestRangeHelpers(t *testing.T) {
	d := date(2025, time.June, 11)

	assert.Equal(t, Interval{Start: date(2025, time.June, 9), End: date(2025, time.June, 15)}, WeekRange(d))
	assert.Equal(t, Interval{Start: date(2025, time.June, 1), End: date(2025, time.June, 30)}, MonthRange(d))
	assert.Equal(t, Interval{Start: date(2025, time.January, 1), End: date(2025, time.December, 31)}, YearRange(d))

	// Leap February
	assert.Equal(t, date(2024, time.February, 29), MonthRange(date(2024, time.February, 10)).End)
}

func TestLastWeeks(t *testing.T) {
	ranges := LastWeeks(date(2025, time.June, 11), 11)
	require.Len(t, ranges, 12)

	assert.Equal(t, WeekRange(date(2025, time.June, 11)), ranges[len(ranges)-1], "anchor week comes last")
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].Start.AddDate(0, 0, 7), ranges[i].Start, "consecutive weeks")
	}
}

func TestIntervalKeyRoundTrip(t *testing.T) {
	iv := Interval{Start: date(2025, time.June, 9), End: date(2025, time.June, 15)}
	assert.Equal(t, "2025-06-09_2025-06-15", iv.Key())

	parsed, err := ParseKey(iv.Key())
	require.NoError(t, err)
	assert.Equal(t, iv, parsed)

	_, err = ParseKey("2025-06")
	assert.Error(t, err)
	_, err = ParseKey("2025_june")
	assert.Error(t, err)
}

func TestIntervalContains(t *testing.T) {
	iv := Interval{Start: date(2025, time.June, 9), End: date(2025, time.June, 15)}
	assert.True(t, iv.Contains(date(2025, time.June, 9)), "start inclusive")
	assert.True(t, iv.Contains(date(2025, time.June, 15)), "end inclusive")
	assert.False(t, iv.Contains(date(2025, time.June, 16)))
}

func TestIntervalJSONPairShape(t *testing.T) {
	iv := Interval{Start: date(2025, time.January, 1), End: date(2025, time.January, 31)}

	data, err := iv.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["2025-01-01","2025-01-31"]`, string(data))

	var decoded Interval
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, iv, decoded)

	assert.Error(t, decoded.UnmarshalJSON([]byte(`["2025-01-01"]`)))
	assert.Error(t, decoded.UnmarshalJSON([]byte(`["2025-01-01","bad"]`)))
}
