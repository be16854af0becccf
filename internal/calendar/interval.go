package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Interval is a closed calendar date range [Start, End], both inclusive.
// It doubles as a statistics query key and a grid column identifier.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an interval from two date-only instants.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: DateOnly(start), End: DateOnly(end)}
}

// Key returns the canonical "{start}_{end}" column identifier.
func (iv Interval) Key() string {
	return iv.Start.Format(dateLayout) + "_" + iv.End.Format(dateLayout)
}

// Contains reports whether the date d falls within the interval.
func (iv Interval) Contains(d time.Time) bool {
	d = DateOnly(d)
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// ParseKey parses a "{start}_{end}" column identifier back into an interval.
func ParseKey(key string) (Interval, error) {
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("invalid interval key %q", key)
	}
	start, err := time.Parse(dateLayout, parts[0])
	if err != nil {
		return Interval{}, fmt.Errorf("invalid interval key %q: %w", key, err)
	}
	end, err := time.Parse(dateLayout, parts[1])
	if err != nil {
		return Interval{}, fmt.Errorf("invalid interval key %q: %w", key, err)
	}
	return Interval{Start: start, End: end}, nil
}

// MarshalJSON encodes the interval as a ["start", "end"] date pair, the
// wire shape of the stats endpoint's dateRanges argument.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%q,%q]", iv.Start.Format(dateLayout), iv.End.Format(dateLayout))), nil
}

// UnmarshalJSON decodes a ["start", "end"] date pair.
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("interval must be a [start, end] pair, got %d elements", len(pair))
	}
	start, err := time.Parse(dateLayout, pair[0])
	if err != nil {
		return fmt.Errorf("invalid interval start %q: %w", pair[0], err)
	}
	end, err := time.Parse(dateLayout, pair[1])
	if err != nil {
		return fmt.Errorf("invalid interval end %q: %w", pair[1], err)
	}
	iv.Start, iv.End = start, end
	return nil
}

// DateOnly strips the time-of-day component, normalizing to UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
