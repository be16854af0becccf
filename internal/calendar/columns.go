package calendar

import (
	"fmt"
	"time"
)

// ColumnNode is one node of the hierarchical statistics grid: the year
// node contains month groups, each month group contains week leaves plus
// a month total, and the year node carries a year total. Leaf nodes hold
// an interval key in Field; group nodes hold a year or year-month field.
type ColumnNode struct {
	Field     string       `json:"field"`
	Header    string       `json:"headerName,omitempty"`
	GroupShow string       `json:"columnGroupShow,omitempty"`
	Children  []ColumnNode `json:"children,omitempty"`
}

// Group show modes mirror the grid widget contract: week and month nodes
// appear when their parent group is expanded, totals when it is collapsed.
const (
	showOpen   = "open"
	showClosed = "closed"
)

const totalHeader = "Итого"

var monthHeaders = [12]string{
	"январь", "февраль", "март", "апрель", "май", "июнь",
	"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
}

// YearColumnTree builds the grid column hierarchy for one calendar year.
// Week leaves start on Mondays; when the Monday alignment pulls a week's
// start into the previous month the cursor advances one week so that
// every emitted week starts inside its month. Week ends are the natural
// Sundays, not clipped to the month. Pure function of the year.
func YearColumnTree(year int) ColumnNode {
	root := ColumnNode{Field: fmt.Sprintf("%d", year)}

	for m := time.January; m <= time.December; m++ {
		monthStart := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, -1)

		group := ColumnNode{
			Field:     monthStart.Format("2006-01"),
			Header:    monthHeaders[m-1],
			GroupShow: showOpen,
		}

		cursor := WeekStartingMonday(monthStart)
		for !cursor.After(monthEnd) {
			if cursor.Month() != m {
				cursor = cursor.AddDate(0, 0, 7)
			}
			weekEnd := cursor.AddDate(0, 0, 6)
			group.Children = append(group.Children, ColumnNode{
				Field:     Interval{Start: cursor, End: weekEnd}.Key(),
				Header:    cursor.Format("02.01") + " - " + weekEnd.Format("02.01"),
				GroupShow: showOpen,
			})
			cursor = cursor.AddDate(0, 0, 7)
		}

		group.Children = append(group.Children, ColumnNode{
			Field:     Interval{Start: monthStart, End: monthEnd}.Key(),
			Header:    totalHeader,
			GroupShow: showClosed,
		})
		root.Children = append(root.Children, group)
	}

	root.Children = append(root.Children, ColumnNode{
		Field:     YearRange(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)).Key(),
		Header:    totalHeader,
		GroupShow: showClosed,
	})

	return root
}

// FlattenIntervals collects every leaf interval of the tree in document
// order, deduplicated. The result is the batch query key set sent to the
// stats endpoint in one request.
func FlattenIntervals(tree ColumnNode) []Interval {
	var out []Interval
	seen := make(map[string]bool)

	var walk func(node ColumnNode)
	walk = func(node ColumnNode) {
		if len(node.Children) == 0 {
			iv, err := ParseKey(node.Field)
			if err != nil {
				return // group-level field, not an interval leaf
			}
			if !seen[node.Field] {
				seen[node.Field] = true
				out = append(out, iv)
			}
			return
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(tree)

	return out
}

// ExpandedIntervals returns the leaf intervals of one column group, the
// incremental fetch set issued when the user expands that group. Decoupled
// from any particular grid widget's expand callback.
func ExpandedIntervals(group ColumnNode) []Interval {
	return FlattenIntervals(group)
}
