package calendar

import (
	"encoding/json"
	"sort"
)

// StatEntry is one per-interval duty count in a stats response.
type StatEntry struct {
	DateRange Interval `json:"dateRange"`
	Count     int      `json:"count"`
}

// UserStats is the stats response shape for one user.
type UserStats struct {
	User    string      `json:"user"`
	Entries []StatEntry `json:"data"`
}

// Row is one grid row: a user plus cells keyed by interval key. Intervals
// the server did not report stay absent from Cells — a missing cell is not
// a zero count.
type Row struct {
	User  string
	Cells map[string]int
}

// MarshalJSON flattens the row into a single object so a grid can bind
// cells to columns by matching field names.
func (r Row) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Cells)+1)
	flat["user"] = r.User
	for key, count := range r.Cells {
		flat[key] = count
	}
	return json.Marshal(flat)
}

// BuildRows reshapes per-user stats entries into grid rows, one per user,
// sorted by user for stable output.
func BuildRows(stats []UserStats) []Row {
	rows := make([]Row, 0, len(stats))
	for _, s := range stats {
		row := Row{User: s.User, Cells: make(map[string]int, len(s.Entries))}
		for _, e := range s.Entries {
			row.Cells[e.DateRange.Key()] = e.Count
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].User < rows[j].User })
	return rows
}

// MergeRows folds an incremental fetch into an existing row set. Rows
// match by user; incoming cells overwrite same-keyed cells and existing
// columns are left untouched. Users appearing only in the update are
// appended, so two expansions resolving in either order converge on the
// same row set.
func MergeRows(existing, update []Row) []Row {
	index := make(map[string]int, len(existing))
	merged := make([]Row, len(existing))
	for i, row := range existing {
		copied := Row{User: row.User, Cells: make(map[string]int, len(row.Cells))}
		for k, v := range row.Cells {
			copied.Cells[k] = v
		}
		merged[i] = copied
		index[row.User] = i
	}

	for _, row := range update {
		i, ok := index[row.User]
		if !ok {
			copied := Row{User: row.User, Cells: make(map[string]int, len(row.Cells))}
			for k, v := range row.Cells {
				copied.Cells[k] = v
			}
			index[row.User] = len(merged)
			merged = append(merged, copied)
			continue
		}
		for k, v := range row.Cells {
			merged[i].Cells[k] = v
		}
	}

	return merged
}
