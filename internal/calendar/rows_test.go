package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interval(startDay, endDay int) Interval {
	return Interval{Start: date(2025, time.June, startDay), End: date(2025, time.June, endDay)}
}

func TestBuildRows(t *testing.T) {
	stats := []UserStats{
		{User: "Сова", Entries: []StatEntry{
			{DateRange: interval(2, 8), Count: 3},
			{DateRange: interval(9, 15), Count: 1},
		}},
		{User: "Барсук", Entries: []StatEntry{
			{DateRange: interval(2, 8), Count: 2},
		}},
	}

	rows := BuildRows(stats)
	require.Len(t, rows, 2)

	assert.Equal(t, "Барсук", rows[0].User, "rows sorted by user")
	assert.Equal(t, map[string]int{"2025-06-02_2025-06-08": 2}, rows[0].Cells)
	assert.Equal(t, map[string]int{
		"2025-06-02_2025-06-08": 3,
		"2025-06-09_2025-06-15": 1,
	}, rows[1].Cells)
}

func TestRowJSONFlattens(t *testing.T) {
	row := Row{User: "Сова", Cells: map[string]int{"2025-06-02_2025-06-08": 3}}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":"Сова","2025-06-02_2025-06-08":3}`, string(data))
}

func TestMergeRowsKeepsExistingColumns(t *testing.T) {
	existing := []Row{
		{User: "Сова", Cells: map[string]int{"A_A": 1, "B_B": 2}},
		{User: "Барсук", Cells: map[string]int{"A_A": 4}},
	}
	update := []Row{
		{User: "Сова", Cells: map[string]int{"C_C": 9}},
		{User: "Барсук", Cells: map[string]int{"C_C": 5}},
	}

	merged := MergeRows(existing, update)
	require.Len(t, merged, 2)
	assert.Equal(t, map[string]int{"A_A": 1, "B_B": 2, "C_C": 9}, merged[0].Cells)
	assert.Equal(t, map[string]int{"A_A": 4, "C_C": 5}, merged[1].Cells)

	// The input row set is not mutated.
	assert.Equal(t, map[string]int{"A_A": 1, "B_B": 2}, existing[0].Cells)
}

func TestMergeRowsLastWritePerColumnWins(t *testing.T) {
	existing := []Row{{User: "Сова", Cells: map[string]int{"A_A": 1}}}
	update := []Row{{User: "Сова", Cells: map[string]int{"A_A": 7}}}

	merged := MergeRows(existing, update)
	assert.Equal(t, 7, merged[0].Cells["A_A"])
}

func TestMergeRowsIndependentExpansions(t *testing.T) {
	// Two expansions write disjoint column sets; applying them in either
	// order converges on the same row set.
	base := []Row{{User: "Сова", Cells: map[string]int{"A_A": 1}}}
	first := []Row{{User: "Сова", Cells: map[string]int{"B_B": 2}}}
	second := []Row{{User: "Сова", Cells: map[string]int{"C_C": 3}}}

	ab := MergeRows(MergeRows(base, first), second)
	ba := MergeRows(MergeRows(base, second), first)
	assert.Equal(t, ab, ba)
}

func TestMergeRowsAppendsNewUsers(t *testing.T) {
	existing := []Row{{User: "Сова", Cells: map[string]int{"A_A": 1}}}
	update := []Row{{User: "Ёж", Cells: map[string]int{"A_A": 2}}}

	merged := MergeRows(existing, update)
	require.Len(t, merged, 2)
	assert.Equal(t, "Ёж", merged[1].User)
}
