package rota

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// HourLabel returns the canonical label of an hour slot, e.g. "09:00 - 10:00".
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d:00 - %02d:00", hour, hour+1)
}

// DayLabels returns the slot labels for the hour window [startHour, endHour).
func DayLabels(startHour, endHour int) []string {
	labels := make([]string, 0, endHour-startHour)
	for h := startHour; h < endHour; h++ {
		labels = append(labels, HourLabel(h))
	}
	return labels
}

// ParseHourLabel extracts the starting hour from a slot label. It accepts
// both "09:00 - 10:00" and the condensed "09:00-10:00" form.
func ParseHourLabel(label string) (int, error) {
	s := strings.TrimSpace(label)
	dash := strings.IndexByte(s, '-')
	if dash > 0 {
		s = strings.TrimSpace(s[:dash])
	}
	s = strings.TrimSuffix(s, ":00")
	hour, err := strconv.Atoi(s)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour label %q", label)
	}
	return hour, nil
}

// FormatHourRuns collapses a set of duty hours into human-readable ranges:
// [9, 10, 11, 14] becomes "09:00-12:00; 14:00-15:00". Consecutive hours
// merge into a single range. Returns "" for an empty set.
func FormatHourRuns(hours []int) string {
	if len(hours) == 0 {
		return ""
	}
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)

	var runs []string
	start, end := sorted[0], sorted[0]
	for _, h := range sorted[1:] {
		if h == end+1 {
			end = h
			continue
		}
		if h == end {
			continue
		}
		runs = append(runs, fmt.Sprintf("%02d:00-%02d:00", start, end+1))
		start, end = h, h
	}
	runs = append(runs, fmt.Sprintf("%02d:00-%02d:00", start, end+1))

	return strings.Join(runs, "; ")
}
